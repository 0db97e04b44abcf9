package convert

// Tables bundles the fixed lookup data a conversion needs. A Converter takes
// its own copy at construction and never writes to it, so one Tables value
// can safely back any number of conversions.
type Tables struct {
	// ActionTypes maps source action-type labels to the system's lowercase
	// values. Unlisted labels fall back to plain lowercasing.
	ActionTypes map[string]string

	// SkillGroups maps camelCase skill keys to their skill group.
	SkillGroups map[string]string

	// SkillNames maps multi-word skill labels whose camelCase form is not
	// mechanical (compound words, fixed abbreviations).
	SkillNames map[string]string

	// BasicAbilities are the dsids of the foundational abilities every
	// hero gets regardless of level or selection.
	BasicAbilities map[string]bool
}

// DefaultTables returns the lookup data for the current system version.
func DefaultTables() Tables {
	return Tables{
		ActionTypes: map[string]string{
			"Maneuver":         "maneuver",
			"Main Action":      "main",
			"Move Action":      "move",
			"Triggered Action": "triggered",
			"Free Action":      "free",
			"Reaction":         "reaction",
		},
		SkillGroups: map[string]string{
			"alchemy":            "crafting",
			"alertness":          "intrigue",
			"architecture":       "crafting",
			"blacksmithing":      "crafting",
			"brag":               "interpersonal",
			"carpentry":          "crafting",
			"climb":              "exploration",
			"concealobject":      "intrigue",
			"cooking":            "crafting",
			"criminalunderworld": "lore",
			"culture":            "lore",
			"disguise":           "intrigue",
			"drive":              "exploration",
			"eavesdrop":          "intrigue",
			"empathize":          "interpersonal",
			"endurance":          "exploration",
			"escapeartist":       "intrigue",
			"fletching":          "crafting",
			"flirt":              "interpersonal",
			"forgery":            "crafting",
			"gamble":             "interpersonal",
			"gymnastics":         "exploration",
			"handleanimals":      "interpersonal",
			"heal":               "exploration",
			"hide":               "intrigue",
			"history":            "lore",
			"interrogate":        "interpersonal",
			"intimidate":         "interpersonal",
			"jewelry":            "crafting",
			"jump":               "exploration",
			"lead":               "interpersonal",
			"lie":                "interpersonal",
			"lift":               "exploration",
			"magic":              "lore",
			"mechanics":          "crafting",
			"monsters":           "lore",
			"music":              "interpersonal",
			"nature":             "lore",
			"navigate":           "exploration",
			"perform":            "interpersonal",
			"persuade":           "interpersonal",
			"picklock":           "intrigue",
			"pickpocket":         "intrigue",
			"psionics":           "lore",
			"readperson":         "interpersonal",
			"religion":           "lore",
			"ride":               "exploration",
			"rumors":             "lore",
			"sabotage":           "intrigue",
			"search":             "intrigue",
			"sneak":              "intrigue",
			"society":            "lore",
			"strategy":           "lore",
			"swim":               "exploration",
			"tailoring":          "crafting",
			"timescape":          "lore",
			"track":              "intrigue",
		},
		SkillNames: map[string]string{
			"Read Person":        "readPerson",
			"Aid Attack":         "aidAttack",
			"Catch Breath":       "catchBreath",
			"Escape Grab":        "escapeGrab",
			"Melee Free Strike":  "meleeFreeStrike",
			"Ranged Free Strike": "rangedFreeStrike",
			"Stand Up":           "standUp",
			"Handle Animals":     "handleAnimals",
		},
		BasicAbilities: map[string]bool{
			"aid-attack":         true,
			"catch-breath":       true,
			"charge":             true,
			"defend":             true,
			"escape-grab":        true,
			"grab":               true,
			"heal":               true,
			"knockback":          true,
			"melee-free-strike":  true,
			"ranged-free-strike": true,
			"stand-up":           true,
			"advance":            true,
			"disengage":          true,
			"ride":               true,
		},
	}
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (t Tables) clone() Tables {
	return Tables{
		ActionTypes:    copyStringMap(t.ActionTypes),
		SkillGroups:    copyStringMap(t.SkillGroups),
		SkillNames:     copyStringMap(t.SkillNames),
		BasicAbilities: copyBoolMap(t.BasicAbilities),
	}
}
