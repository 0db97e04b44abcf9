// Package forgesteel models the exported character document (.ds-hero) and
// decodes it into typed structures. Feature payloads stay raw until a caller
// asks for a specific variant, because the export nests wildly different
// shapes under the same "data" key.
package forgesteel

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/stgreenb/FSF/internal/utils"
)

// Character is the root of a source document. It is treated as immutable
// for the duration of a conversion.
type Character struct {
	Name         string    `json:"name"`
	Ancestry     *Ancestry `json:"ancestry"`
	Culture      *Culture  `json:"culture"`
	Career       *Career   `json:"career"`
	Class        *Class    `json:"class"`
	Complication *Feature  `json:"complication"`
	Features     []Feature `json:"features"`
	State        State     `json:"state"`
}

type Ancestry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Features    []Feature `json:"features"`
}

// Culture holds the four themed sections the builder exposes alongside a
// plain feature list. Each section is itself a feature (usually a skill or
// language choice).
type Culture struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Languages    []string  `json:"languages"`
	Language     *Feature  `json:"language"`
	Environment  *Feature  `json:"environment"`
	Organization *Feature  `json:"organization"`
	Upbringing   *Feature  `json:"upbringing"`
	Features     []Feature `json:"features"`
}

// Sections returns the non-nil themed sections in their fixed order.
func (c *Culture) Sections() []*Feature {
	var out []*Feature
	for _, f := range []*Feature{c.Language, c.Environment, c.Organization, c.Upbringing} {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

type Career struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Features    []Feature `json:"features"`
}

type Class struct {
	ID                     string           `json:"id"`
	Name                   string           `json:"name"`
	Description            string           `json:"description"`
	Level                  int              `json:"level"`
	Recoveries             int              `json:"recoveries"`
	PrimaryCharacteristics []string         `json:"primaryCharacteristics"`
	Characteristics        []Characteristic `json:"characteristics"`
	FeaturesByLevel        []LevelFeatures  `json:"featuresByLevel"`
	Subclasses             []Subclass       `json:"subclasses"`
	Abilities              []Ability        `json:"abilities"`
}

// Characteristic is one scored stat in the class block, optionally carrying
// the skills picked alongside it.
type Characteristic struct {
	Characteristic string   `json:"characteristic"`
	Value          int      `json:"value"`
	Skills         []string `json:"skills"`
}

type Subclass struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Selected        bool            `json:"selected"`
	FeaturesByLevel []LevelFeatures `json:"featuresByLevel"`
}

// LevelFeatures is one bucket of the ordered-by-level feature sequence.
type LevelFeatures struct {
	Level    int       `json:"level"`
	Features []Feature `json:"features"`
}

// State is the mutable counter block of the character sheet.
type State struct {
	StaminaDamage int       `json:"staminaDamage"`
	StaminaTemp   int       `json:"staminaTemp"`
	Surges        int       `json:"surges"`
	XP            int       `json:"xp"`
	Victories     int       `json:"victories"`
	Renown        int       `json:"renown"`
	Wealth        int       `json:"wealth"`
	Inventory     []Feature `json:"inventory"`
}

// LoadCharacter reads and decodes a source document. A top-level decode
// failure is fatal for the whole run; feature payload problems surface later,
// per entity.
func LoadCharacter(path string) (*Character, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading character file: %w", err)
	}

	var c Character
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parsing character file %s: %w", path, err)
	}
	if c.Name == "" {
		return nil, fmt.Errorf("character file %s has no name", path)
	}

	utils.Log.Debugf("loaded character %q from %s", c.Name, path)
	return &c, nil
}
