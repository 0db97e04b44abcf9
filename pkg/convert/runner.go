package convert

import (
	"fmt"

	"github.com/stgreenb/FSF/pkg/compendium"
	"github.com/stgreenb/FSF/pkg/forgesteel"
	"github.com/stgreenb/FSF/pkg/foundry"
)

// Event is one progress message from a background conversion. After an
// event with Done set, the channel is closed. Err is set on the final event
// when the run failed.
type Event struct {
	Message string
	Report  *Report
	Err     error
	Done    bool
}

// Job describes one end-to-end conversion: load, convert, write.
type Job struct {
	InputPath  string
	OutputPath string
	Catalog    *compendium.Catalog
	Options    Options
}

// Start runs the job on its own goroutine and streams progress events. The
// channel is the only thing crossing the boundary; no state is shared with
// the caller. There is no cancellation — a started job runs to completion
// or failure.
func Start(job Job) <-chan Event {
	events := make(chan Event, 8)
	go func() {
		defer close(events)

		events <- Event{Message: "loading character document"}
		char, err := forgesteel.LoadCharacter(job.InputPath)
		if err != nil {
			events <- Event{Err: err, Done: true}
			return
		}

		events <- Event{Message: fmt.Sprintf("converting %s", char.Name)}
		actor, report, err := NewConverter(job.Catalog, job.Options).Convert(char)
		if err != nil {
			events <- Event{Err: err, Done: true}
			return
		}

		events <- Event{Message: "writing actor document"}
		if err := foundry.WriteFile(job.OutputPath, actor); err != nil {
			events <- Event{Report: report, Err: err, Done: true}
			return
		}

		events <- Event{Message: report.Summary(), Report: report, Done: true}
	}()
	return events
}
