package forgesteel

// AbilityType carries how an ability is used ("Main Action", "Maneuver", ...).
type AbilityType struct {
	Usage string `json:"usage"`
}

// Section is one block of an ability's structured text.
type Section struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Kit is a selected equipment kit, only the fields the converter reads.
type Kit struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Speed       int    `json:"speed"`
}

// Ability is a class ability from the class ability list or an Ability
// feature payload.
type Ability struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Type           AbilityType `json:"type"`
	Keywords       []string    `json:"keywords"`
	Characteristic []string    `json:"characteristic"`
	MinLevel       int         `json:"minLevel"`
	Level          int         `json:"level"`
	Sections       []Section   `json:"sections"`
}

// EffectiveLevel is the level gate used for filtering: minLevel if set, then
// level, then 1.
func (a *Ability) EffectiveLevel() int {
	if a.MinLevel > 0 {
		return a.MinLevel
	}
	if a.Level > 0 {
		return a.Level
	}
	return 1
}

// SectionTexts returns the text of every text-typed section, in order.
func (a *Ability) SectionTexts() []string {
	var out []string
	for _, s := range a.Sections {
		if s.Type == "text" && s.Text != "" {
			out = append(out, s.Text)
		}
	}
	return out
}
