// Package compendium loads and indexes the Draw Steel reference items that
// conversions are matched against. Entries keep their original Foundry JSON;
// callers probe them with gjson paths and patch copies with sjson.
package compendium

import (
	"strings"

	"github.com/stgreenb/FSF/pkg/textnorm"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Entry is one canonical compendium item. The raw document is the source of
// truth; the exported fields are extracted once at load time for indexing.
type Entry struct {
	ID       string // Foundry _id
	DSID     string // system._dsid, the stable cross-release identifier
	Name     string
	Type     string
	Category string // e.g. "heroic", empty for standard
	Raw      []byte

	// Sanitized lookup keys, computed once here so the matcher's last tier
	// does not rerun the normalization regexes over the whole catalog on
	// every miss.
	nameKey string
	dsidKey string
}

// NewEntry parses a raw Foundry item document. Returns nil when the document
// carries no system._dsid, since those items cannot be referenced.
func NewEntry(raw []byte) *Entry {
	dsid := gjson.GetBytes(raw, "system._dsid").Str
	if dsid == "" {
		return nil
	}

	// Ability action types are stored with inconsistent casing upstream;
	// Foundry expects lowercase.
	if gjson.GetBytes(raw, "type").Str == "ability" {
		if t := gjson.GetBytes(raw, "system.type"); t.Type == gjson.String && t.Str != strings.ToLower(t.Str) {
			raw, _ = sjson.SetBytes(raw, "system.type", strings.ToLower(t.Str))
		}
	}

	name := gjson.GetBytes(raw, "name").Str
	return &Entry{
		ID:       gjson.GetBytes(raw, "_id").Str,
		DSID:     dsid,
		Name:     name,
		Type:     gjson.GetBytes(raw, "type").Str,
		Category: gjson.GetBytes(raw, "system.category").Str,
		Raw:      raw,
		nameKey:  textnorm.SanitizeForLookup(name),
		dsidKey:  textnorm.SanitizeForLookup(dsid),
	}
}

// Get probes the raw document.
func (e *Entry) Get(path string) gjson.Result {
	return gjson.GetBytes(e.Raw, path)
}

// SourceID returns the flags.draw-steel.sourceId reverse-lookup key, if any.
func (e *Entry) SourceID() string {
	return e.Get("flags.draw-steel.sourceId").Str
}

// Clone returns an independent copy. The catalog is shared and read-only, so
// every consumer that wants to customize an entry must clone it first.
func (e *Entry) Clone() *Entry {
	raw := make([]byte, len(e.Raw))
	copy(raw, e.Raw)
	c := *e
	c.Raw = raw
	return &c
}

// Set patches the raw document in place. Only call on clones.
func (e *Entry) Set(path string, value interface{}) error {
	raw, err := sjson.SetBytes(e.Raw, path, value)
	if err != nil {
		return err
	}
	e.Raw = raw
	return nil
}

// Advancements returns the system.advancements map, keyed by advancement id.
func (e *Entry) Advancements() map[string]gjson.Result {
	adv := e.Get("system.advancements")
	if !adv.IsObject() {
		return nil
	}
	return adv.Map()
}
