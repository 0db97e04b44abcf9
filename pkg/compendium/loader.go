package compendium

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/stgreenb/FSF/internal/utils"
)

// LoadDir walks a local checkout of the Draw Steel packs directory and adds
// every item document to a new catalog.
func LoadDir(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("compendium path %s is not a directory", path)
	}

	catalog := NewCatalog()
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			utils.Log.Warnf("could not read %s: %v", p, err)
			return nil
		}
		if e := NewEntry(raw); e != nil {
			catalog.Add(e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.Log.Debugf("loaded %d compendium items from %s", catalog.Len(), path)
	return catalog, nil
}
