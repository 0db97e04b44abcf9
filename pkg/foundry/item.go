package foundry

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Item is one embedded item document, kept as raw JSON. Compendium-sourced
// items carry arbitrary system data the converter must not lose, so the
// document is copied whole and patched in place.
type Item struct {
	raw []byte
}

// NewItem wraps a raw item document. Returns nil if the document is not
// valid JSON.
func NewItem(raw []byte) *Item {
	if !gjson.ValidBytes(raw) {
		return nil
	}
	return &Item{raw: append([]byte(nil), raw...)}
}

func (i *Item) Name() string { return gjson.GetBytes(i.raw, "name").Str }
func (i *Item) Type() string { return gjson.GetBytes(i.raw, "type").Str }

// SystemType is the action type of an ability item (system.type).
func (i *Item) SystemType() string { return gjson.GetBytes(i.raw, "system.type").Str }

// DSID is the Draw Steel identifier (system._dsid), when present.
func (i *Item) DSID() string { return gjson.GetBytes(i.raw, "system._dsid").Str }

// Get reads any path from the document.
func (i *Item) Get(path string) gjson.Result { return gjson.GetBytes(i.raw, path) }

// Set patches one path in the document.
func (i *Item) Set(path string, value interface{}) error {
	raw, err := sjson.SetBytes(i.raw, path, value)
	if err != nil {
		return fmt.Errorf("setting %s on item %q: %w", path, i.Name(), err)
	}
	i.raw = raw
	return nil
}

// Raw returns the underlying document.
func (i *Item) Raw() []byte { return i.raw }

func (i *Item) MarshalJSON() ([]byte, error) {
	if len(i.raw) == 0 {
		return []byte("null"), nil
	}
	return i.raw, nil
}

func (i *Item) UnmarshalJSON(b []byte) error {
	i.raw = append([]byte(nil), b...)
	return nil
}

// stats is the provenance block Foundry stamps on documents.
type stats struct {
	CompendiumSource any    `json:"compendiumSource"`
	DuplicateSource  any    `json:"duplicateSource"`
	ExportSource     any    `json:"exportSource"`
	CoreVersion      string `json:"coreVersion"`
	SystemID         string `json:"systemId"`
	SystemVersion    string `json:"systemVersion"`
	LastModifiedBy   any    `json:"lastModifiedBy"`
}

func newStats() stats {
	return stats{
		CoreVersion:   CoreVersion,
		SystemID:      SystemID,
		SystemVersion: SystemVersion,
	}
}

type itemDoc struct {
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Img       string         `json:"img"`
	System    map[string]any `json:"system"`
	Effects   []any          `json:"effects"`
	Flags     map[string]any `json:"flags"`
	Stats     stats          `json:"_stats"`
	Folder    any            `json:"folder"`
	Sort      int            `json:"sort"`
	Ownership map[string]int `json:"ownership"`
}

func wrapDoc(doc itemDoc) *Item {
	raw, err := json.Marshal(doc)
	if err != nil {
		// Only unmarshalable values in System could trip this, and the
		// constructors below never put any there.
		panic(err)
	}
	return &Item{raw: raw}
}

// NewFeatureItem builds a placeholder item for a source feature with no
// compendium counterpart.
func NewFeatureItem(name, itemType, dsid, description string) *Item {
	return wrapDoc(itemDoc{
		Name: name,
		Type: itemType,
		Img:  DefaultImg,
		System: map[string]any{
			"_dsid":       dsid,
			"description": map[string]any{"value": description, "director": ""},
		},
		Effects:   []any{},
		Flags:     map[string]any{},
		Stats:     newStats(),
		Ownership: map[string]int{"default": 0},
	})
}

// AbilityFields carries everything a placeholder ability document needs.
type AbilityFields struct {
	Name            string
	DSID            string
	Description     string
	EffectBefore    string
	Keywords        []string
	ActionType      string
	Characteristics []string
	SourceLevel     int
	Selected        bool
}

// NewAbilityItem builds a placeholder ability document. The power roll,
// distance and target blocks get conservative melee defaults; a director
// adjusts them in Foundry if the ability needs more.
func NewAbilityItem(f AbilityFields) *Item {
	if f.Keywords == nil {
		f.Keywords = []string{}
	}
	if f.Characteristics == nil {
		f.Characteristics = []string{}
	}
	system := map[string]any{
		"_dsid":       f.DSID,
		"description": map[string]any{"value": f.Description, "director": ""},
		"keywords":    f.Keywords,
		"type":        f.ActionType,
		"distance": map[string]any{
			"type":      "melee",
			"primary":   1,
			"secondary": nil,
			"tertiary":  nil,
		},
		"target": map[string]any{"type": "creature", "value": 1},
		"effect": map[string]any{"before": f.EffectBefore, "after": ""},
		"power": map[string]any{
			"roll": map[string]any{
				"formula":         "@chr",
				"characteristics": f.Characteristics,
			},
			"effects": map[string]any{},
		},
	}
	if f.SourceLevel > 0 {
		system["_source_level"] = f.SourceLevel
		system["_is_selected"] = f.Selected
	}
	return wrapDoc(itemDoc{
		Name:      f.Name,
		Type:      "ability",
		Img:       DefaultImg,
		System:    system,
		Effects:   []any{},
		Flags:     map[string]any{},
		Stats:     newStats(),
		Ownership: map[string]int{"default": 0},
	})
}
