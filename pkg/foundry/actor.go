// Package foundry models the target actor document for the Draw Steel
// system. The actor schema is pinned to the system version named in the
// _stats block of generated items; schema changes upstream require a
// deliberate update here.
package foundry

import "strings"

const (
	// DefaultImg is the stock icon Foundry assigns to new documents.
	DefaultImg = "icons/svg/mystery-man.svg"

	// Version pins for the _stats block of generated documents.
	CoreVersion   = "13.350"
	SystemID      = "draw-steel"
	SystemVersion = "0.8.1"
)

// Actor is a hero actor document.
type Actor struct {
	Name   string      `json:"name"`
	Type   string      `json:"type"`
	Img    string      `json:"img"`
	System ActorSystem `json:"system"`
	Items  []*Item     `json:"items"`
}

type ActorSystem struct {
	Stamina         Stamina         `json:"stamina"`
	Characteristics Characteristics `json:"characteristics"`
	Combat          Combat          `json:"combat"`
	Biography       Biography       `json:"biography"`
	Movement        Movement        `json:"movement"`
	Damage          Damage          `json:"damage"`
	Recoveries      Recoveries      `json:"recoveries"`
	Hero            Hero            `json:"hero"`
}

type Stamina struct {
	Value     int `json:"value"`
	Temporary int `json:"temporary"`
}

type Score struct {
	Value int `json:"value"`
}

type Characteristics struct {
	Might     Score `json:"might"`
	Agility   Score `json:"agility"`
	Reason    Score `json:"reason"`
	Intuition Score `json:"intuition"`
	Presence  Score `json:"presence"`
}

type Combat struct {
	Save      Save `json:"save"`
	Size      Size `json:"size"`
	Stability int  `json:"stability"`
	Turns     int  `json:"turns"`
}

type Save struct {
	Threshold int    `json:"threshold"`
	Bonus     string `json:"bonus"`
}

type Size struct {
	Value  int    `json:"value"`
	Letter string `json:"letter"`
}

type Biography struct {
	Value     string   `json:"value"`
	Director  string   `json:"director"`
	Languages []string `json:"languages"`
	Height    Measure  `json:"height"`
	Weight    Measure  `json:"weight"`
}

type Measure struct {
	Units string   `json:"units"`
	Value *float64 `json:"value"`
}

type Movement struct {
	Value     int      `json:"value"`
	Types     []string `json:"types"`
	Hover     bool     `json:"hover"`
	Disengage int      `json:"disengage"`
}

type Damage struct {
	Immunities DamageTable `json:"immunities"`
	Weaknesses DamageTable `json:"weaknesses"`
}

// DamageTable covers every damage type the system tracks.
type DamageTable struct {
	All        int `json:"all"`
	Acid       int `json:"acid"`
	Cold       int `json:"cold"`
	Corruption int `json:"corruption"`
	Fire       int `json:"fire"`
	Holy       int `json:"holy"`
	Lightning  int `json:"lightning"`
	Poison     int `json:"poison"`
	Psychic    int `json:"psychic"`
	Sonic      int `json:"sonic"`
}

type Recoveries struct {
	Value int `json:"value"`
	Max   int `json:"max"`
}

type Hero struct {
	Primary      Score    `json:"primary"`
	Epic         Score    `json:"epic"`
	Surges       int      `json:"surges"`
	XP           int      `json:"xp"`
	Victories    int      `json:"victories"`
	Renown       int      `json:"renown"`
	Wealth       int      `json:"wealth"`
	Skills       []string `json:"skills"`
	PreferredKit any      `json:"preferredKit"`
}

// NewActor builds a hero actor with the system defaults every fresh sheet
// starts from.
func NewActor(name string) *Actor {
	return &Actor{
		Name: name,
		Type: "hero",
		Img:  DefaultImg,
		System: ActorSystem{
			Stamina: Stamina{Value: 20},
			Combat: Combat{
				Save:  Save{Threshold: 6},
				Size:  Size{Value: 1, Letter: "M"},
				Turns: 1,
			},
			Biography: Biography{
				Languages: []string{},
				Height:    Measure{Units: "in"},
				Weight:    Measure{Units: "lb"},
			},
			Movement:   Movement{Value: 6, Types: []string{"walk"}, Disengage: 1},
			Recoveries: Recoveries{Value: 8},
			Hero:       Hero{Skills: []string{}},
		},
		Items: []*Item{},
	}
}

// SetCharacteristic assigns one of the five scores by name. Unknown names
// are ignored so malformed source data cannot corrupt the schema.
func (a *Actor) SetCharacteristic(name string, value int) {
	switch strings.ToLower(name) {
	case "might":
		a.System.Characteristics.Might.Value = value
	case "agility":
		a.System.Characteristics.Agility.Value = value
	case "reason":
		a.System.Characteristics.Reason.Value = value
	case "intuition":
		a.System.Characteristics.Intuition.Value = value
	case "presence":
		a.System.Characteristics.Presence.Value = value
	}
}

// Characteristic reads one of the five scores by name.
func (a *Actor) Characteristic(name string) int {
	switch strings.ToLower(name) {
	case "might":
		return a.System.Characteristics.Might.Value
	case "agility":
		return a.System.Characteristics.Agility.Value
	case "reason":
		return a.System.Characteristics.Reason.Value
	case "intuition":
		return a.System.Characteristics.Intuition.Value
	case "presence":
		return a.System.Characteristics.Presence.Value
	}
	return 0
}

// AddItem appends an item document unless an equal name+type item is
// already attached; the first occurrence wins. It reports whether the item
// was added.
func (a *Actor) AddItem(it *Item) bool {
	if it == nil || a.HasItem(it.Name(), it.Type()) {
		return false
	}
	a.Items = append(a.Items, it)
	return true
}

// HasItem reports whether an item with the same name and type is already
// attached. Conversion order matters for this check, which is one reason
// the engine stays single threaded.
func (a *Actor) HasItem(name, itemType string) bool {
	for _, it := range a.Items {
		if it.Name() == name && it.Type() == itemType {
			return true
		}
	}
	return false
}

// FilterItems keeps only the items the predicate accepts.
func (a *Actor) FilterItems(keep func(*Item) bool) {
	kept := a.Items[:0]
	for _, it := range a.Items {
		if keep(it) {
			kept = append(kept, it)
		}
	}
	a.Items = kept
}
