package convert

import (
	"fmt"
	"strings"

	"github.com/stgreenb/FSF/internal/utils"
	"github.com/stgreenb/FSF/pkg/description"
)

// EntityError records one per-entity conversion failure. Entity failures
// never stop the run.
type EntityError struct {
	Kind string
	Name string
	Err  error
}

func (e EntityError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.Name, e.Err)
}

// Report summarizes one conversion so a human can judge whether a count
// mismatch is level filtering or a real defect.
type Report struct {
	CharacterName string
	Level         int
	Items         int
	Errors        []EntityError
	Abilities     AbilityValidation
	Transfers     []description.TransferRecord
}

// entityFailed logs and records a per-entity error. It reports whether err
// was non-nil, so callers can use it as a skip guard.
func (r *Report) entityFailed(kind, name string, err error) bool {
	if err == nil {
		return false
	}
	utils.Log.Warnf("skipping %s %q: %v", kind, name, err)
	r.Errors = append(r.Errors, EntityError{Kind: kind, Name: name, Err: err})
	return true
}

// recordTransfer keeps the original/transferred pair for the end-of-run
// audit and warns when the transfer degraded the text.
func (r *Report) recordTransfer(name, original, transferred string) {
	r.Transfers = append(r.Transfers, description.TransferRecord{
		Name:        name,
		Original:    original,
		Transferred: transferred,
	})
	if !description.ValidateTransfer(original, transferred) {
		utils.Log.Warnf("degraded description transfer for %q", name)
	}
}

// TransferAudit tallies description-transfer validation over every item
// this conversion produced.
func (r *Report) TransferAudit() description.AuditReport {
	return description.Audit(r.Transfers)
}

// Summary is the one-line human-readable result.
func (r *Report) Summary() string {
	s := fmt.Sprintf("%s (level %d): %d items", r.CharacterName, r.Level, r.Items)
	if len(r.Errors) > 0 {
		s += fmt.Sprintf(", %d entity errors", len(r.Errors))
	}
	if audit := r.TransferAudit(); audit.Failed > 0 {
		s += fmt.Sprintf(", %d degraded descriptions", audit.Failed)
	}
	if r.Abilities.Original > 0 {
		s += " | " + r.Abilities.Summary()
	}
	return s
}

// AbilityValidation compares converted class abilities against the
// level-eligible set.
type AbilityValidation struct {
	Original  int
	Converted int
	Expected  int
	Level     int
	Missing   []string
	Extra     []string
}

// Valid reports whether every level-eligible ability converted.
func (v AbilityValidation) Valid() bool {
	return v.Converted == v.Expected
}

func (v AbilityValidation) Summary() string {
	parts := []string{
		fmt.Sprintf("converted %d/%d abilities (level %d)", v.Converted, v.Expected, v.Level),
	}
	switch {
	case v.Valid():
		parts = append(parts, "complete")
	case len(v.Missing) > 0 && len(v.Extra) == 0 && v.Converted > 0:
		// Unselected abilities dropping out is the normal case.
		parts = append(parts, "level-appropriate subset")
	default:
		parts = append(parts, "incomplete")
	}
	if len(v.Missing) > 0 {
		shown := v.Missing
		if len(shown) > 3 {
			shown = shown[:3]
		}
		parts = append(parts, "missing: "+strings.Join(shown, ", "))
		if len(v.Missing) > 3 {
			parts = append(parts, fmt.Sprintf("and %d more", len(v.Missing)-3))
		}
	}
	return strings.Join(parts, " | ")
}
