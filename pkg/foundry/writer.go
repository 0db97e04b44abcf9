package foundry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/stgreenb/FSF/internal/utils"
)

// Write serializes the actor as indented JSON, the format Foundry's import
// dialog expects.
func Write(w io.Writer, a *Actor) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encoding actor %q: %w", a.Name, err)
	}
	return nil
}

// WriteFile writes the actor document to disk.
func WriteFile(path string, a *Actor) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := Write(f, a); err != nil {
		return err
	}
	utils.Log.Infof("wrote actor %q with %d items to %s", a.Name, len(a.Items), path)
	return nil
}
