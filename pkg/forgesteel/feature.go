package forgesteel

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Feature type strings as they appear in the export. The converter drives
// its filtering on these values.
const (
	TypeChoice              = "Choice"
	TypeSkillChoice         = "Skill Choice"
	TypeLanguageChoice      = "Language Choice"
	TypeClassAbility        = "Class Ability"
	TypeBonus               = "Bonus"
	TypeAbilityDamage       = "Ability Damage"
	TypeCharacteristicBonus = "Characteristic Bonus"
	TypeHeroicResourceGain  = "Heroic Resource Gain"
	TypeDomainFeature       = "Domain Feature"
	TypePerk                = "Perk"
	TypeProject             = "Project"
	TypeMultipleFeatures    = "Multiple Features"
	TypeAbility             = "Ability"
	TypeKit                 = "Kit"
	TypeSpeed               = "Speed"
)

// Feature is one entry of a feature list. Data holds the variant payload
// undecoded; the typed accessors below decode it on demand.
type Feature struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Data        json.RawMessage `json:"data"`
}

// ChoiceData is the payload of Choice, Domain Feature, Perk and Project
// features: sub-features the player picked from a list.
type ChoiceData struct {
	Selected []Feature `json:"selected"`
}

// SelectedFeatures decodes the chosen sub-features. An absent payload is an
// empty selection, not an error.
func (f *Feature) SelectedFeatures() ([]Feature, error) {
	if len(f.Data) == 0 {
		return nil, nil
	}
	var d ChoiceData
	if err := json.Unmarshal(f.Data, &d); err != nil {
		return nil, fmt.Errorf("decoding %s payload of %q: %w", f.Type, f.Name, err)
	}
	return d.Selected, nil
}

// SelectedStrings decodes the payload of Skill Choice and Language Choice
// features: plain names the player picked.
func (f *Feature) SelectedStrings() []string {
	if len(f.Data) == 0 {
		return nil
	}
	var d struct {
		Selected []string `json:"selected"`
	}
	if err := json.Unmarshal(f.Data, &d); err != nil {
		return nil
	}
	return d.Selected
}

// SelectedAbilityIDs decodes the Class Ability payload: identifiers of the
// class abilities the player selected.
func (f *Feature) SelectedAbilityIDs() []string {
	if len(f.Data) == 0 {
		return nil
	}
	var d struct {
		SelectedIDs []string `json:"selectedIDs"`
	}
	if err := json.Unmarshal(f.Data, &d); err != nil {
		return nil
	}
	return d.SelectedIDs
}

// SelectedKits decodes the Kit payload.
func (f *Feature) SelectedKits() ([]Kit, error) {
	if len(f.Data) == 0 {
		return nil, nil
	}
	var d struct {
		Selected []Kit `json:"selected"`
	}
	if err := json.Unmarshal(f.Data, &d); err != nil {
		return nil, fmt.Errorf("decoding kit payload of %q: %w", f.Name, err)
	}
	return d.Selected, nil
}

// NestedFeatures decodes the Multiple Features payload.
func (f *Feature) NestedFeatures() ([]Feature, error) {
	if len(f.Data) == 0 {
		return nil, nil
	}
	var d struct {
		Features []Feature `json:"features"`
	}
	if err := json.Unmarshal(f.Data, &d); err != nil {
		return nil, fmt.Errorf("decoding nested features of %q: %w", f.Name, err)
	}
	return d.Features, nil
}

// AbilityPayload decodes the Ability payload. Some exports nest the ability
// under data.ability, others inline the ability fields on the feature; the
// nested form wins when present.
func (f *Feature) AbilityPayload() *Ability {
	if len(f.Data) == 0 {
		return nil
	}
	var d struct {
		Ability *Ability `json:"ability"`
	}
	if err := json.Unmarshal(f.Data, &d); err != nil {
		return nil
	}
	return d.Ability
}

// Speed decodes the Speed payload and reports whether one was present.
func (f *Feature) Speed() (int, bool) {
	if len(f.Data) == 0 {
		return 0, false
	}
	var d struct {
		Speed int `json:"speed"`
	}
	if err := json.Unmarshal(f.Data, &d); err != nil || d.Speed == 0 {
		return 0, false
	}
	return d.Speed, true
}

// CharacteristicBonus decodes the Characteristic Bonus payload.
func (f *Feature) CharacteristicBonus() (name string, value int) {
	if len(f.Data) == 0 {
		return "", 0
	}
	var d struct {
		Characteristic string `json:"characteristic"`
		Value          int    `json:"value"`
	}
	if err := json.Unmarshal(f.Data, &d); err != nil {
		return "", 0
	}
	return strings.ToLower(d.Characteristic), d.Value
}

// containerNamePatterns marks framework features that hold no content of
// their own. Substring matching on display names is fragile; keep every use
// of it behind IsContainerFeature so it can be swapped for a structured
// marker if the export ever grows one.
var containerNamePatterns = []string{
	"pt Ability",
	"Signature Ability",
	"Kit",
	"1st-Level",
	"4th-Level",
	"5th-Level",
	"7th-Level",
	"9th-Level",
}

// IsContainerFeature reports whether a feature name identifies a non-content
// container that the converter should skip.
func IsContainerFeature(name string) bool {
	for _, p := range containerNamePatterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}
