package convert

import (
	"sort"
	"strings"

	"github.com/stgreenb/FSF/internal/utils"
	"github.com/stgreenb/FSF/pkg/forgesteel"
	"github.com/stgreenb/FSF/pkg/foundry"
	"github.com/tidwall/gjson"
)

// normalizeSkillName converts a display-form skill label to the camelCase
// key the system uses. Irregular forms come from the lookup table; the rest
// are mechanical.
func (c *Converter) normalizeSkillName(name string) string {
	if name == "" {
		return name
	}
	if mapped, ok := c.tables.SkillNames[name]; ok {
		return mapped
	}
	words := strings.Fields(name)
	if len(words) == 0 {
		return name
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(strings.ToLower(w[1:]))
	}
	return b.String()
}

// skillsFromFeatures pulls the selected skills out of Skill Choice features,
// including ones nested in Multiple Features wrappers.
func (c *Converter) skillsFromFeatures(features []forgesteel.Feature) []string {
	var out []string
	for i := range features {
		f := &features[i]
		switch f.Type {
		case forgesteel.TypeSkillChoice:
			for _, s := range f.SelectedStrings() {
				out = append(out, c.normalizeSkillName(s))
			}
		case forgesteel.TypeMultipleFeatures:
			nested, err := f.NestedFeatures()
			if err != nil {
				continue
			}
			for j := range nested {
				if nested[j].Type == forgesteel.TypeSkillChoice {
					for _, s := range nested[j].SelectedStrings() {
						out = append(out, c.normalizeSkillName(s))
					}
				}
			}
		}
	}
	return out
}

func (c *Converter) skillsFromCultureSections(culture *forgesteel.Culture) []string {
	var out []string
	if culture == nil {
		return out
	}
	for _, section := range culture.Sections() {
		if section.Type == forgesteel.TypeSkillChoice {
			for _, s := range section.SelectedStrings() {
				out = append(out, c.normalizeSkillName(s))
			}
		}
	}
	return out
}

// allSelectedSkills collects every skill the player picked anywhere in the
// document, as a sorted slice for deterministic matching.
func (c *Converter) allSelectedSkills(char *forgesteel.Character) []string {
	set := map[string]bool{}
	add := func(skills []string) {
		for _, s := range skills {
			set[s] = true
		}
	}

	if char.Ancestry != nil {
		add(c.skillsFromFeatures(char.Ancestry.Features))
	}
	add(c.skillsFromCultureSections(char.Culture))
	if char.Career != nil {
		add(c.skillsFromFeatures(char.Career.Features))
	}
	if char.Class != nil {
		for _, bucket := range char.Class.FeaturesByLevel {
			add(c.skillsFromFeatures(bucket.Features))
		}
		for s := range char.Class.Subclasses {
			if !char.Class.Subclasses[s].Selected {
				continue
			}
			for _, bucket := range char.Class.Subclasses[s].FeaturesByLevel {
				add(c.skillsFromFeatures(bucket.Features))
			}
		}
	}

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// languagesForItemType collects the languages selected in the source section
// matching one origin item type. Other item types grant no languages.
func (c *Converter) languagesForItemType(char *forgesteel.Character, itemType string) []string {
	set := map[string]bool{}
	add := func(features []forgesteel.Feature) {
		for i := range features {
			if features[i].Type == forgesteel.TypeLanguageChoice {
				for _, l := range features[i].SelectedStrings() {
					set[c.normalizeSkillName(l)] = true
				}
			}
		}
	}

	switch itemType {
	case "culture":
		if char.Culture != nil {
			for _, section := range char.Culture.Sections() {
				if section.Type == forgesteel.TypeLanguageChoice {
					for _, l := range section.SelectedStrings() {
						set[c.normalizeSkillName(l)] = true
					}
				}
			}
		}
	case "career":
		if char.Career != nil {
			add(char.Career.Features)
		}
	case "class":
		if char.Class != nil {
			for _, bucket := range char.Class.FeaturesByLevel {
				add(bucket.Features)
			}
		}
	}

	out := make([]string, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

var originItemTypes = map[string]bool{
	"ancestry": true,
	"culture":  true,
	"career":   true,
	"class":    true,
	"subclass": true,
}

// populateAdvancementSelections records the player's skill and language
// picks on the origin items' advancement flags. Selections live at the item
// level only; the actor-level flags stay empty so the system does not count
// them twice.
func (c *Converter) populateAdvancementSelections(actor *foundry.Actor, char *forgesteel.Character) {
	allSkills := c.allSelectedSkills(char)

	for _, item := range actor.Items {
		if !originItemTypes[item.Type()] {
			continue
		}
		advancements := item.Get("system.advancements")
		if !advancements.Exists() {
			continue
		}

		advancements.ForEach(func(id, adv gjson.Result) bool {
			switch adv.Get("type").Str {
			case "skill":
				c.recordSkillSelection(item, id.Str, adv, allSkills)
			case "language":
				langs := c.languagesForItemType(char, item.Type())
				if len(langs) > 0 {
					c.setAdvancementSelection(item, id.Str, langs)
				}
			}
			return true
		})
	}
}

func (c *Converter) recordSkillSelection(item *foundry.Item, id string, adv gjson.Result, allSkills []string) {
	var fromChoices []string
	for _, choice := range adv.Get("skills.choices").Array() {
		for _, s := range allSkills {
			if s == choice.Str {
				fromChoices = append(fromChoices, s)
			}
		}
	}
	if len(fromChoices) > 0 {
		c.setAdvancementSelection(item, id, fromChoices)
	}

	groups := adv.Get("skills.groups").Array()
	if len(groups) == 0 {
		return
	}
	allowed := map[string]bool{}
	for _, g := range groups {
		allowed[g.Str] = true
	}
	var fromGroups []string
	for _, s := range allSkills {
		if allowed[c.tables.SkillGroups[strings.ToLower(s)]] {
			fromGroups = append(fromGroups, s)
		}
	}
	if len(fromGroups) > 0 {
		c.setAdvancementSelection(item, id, fromGroups)
	}
}

func (c *Converter) setAdvancementSelection(item *foundry.Item, id string, selected []string) {
	path := "flags.draw-steel.advancement." + id
	if err := item.Set(path, map[string]interface{}{"selected": selected}); err != nil {
		utils.Log.Warnf("could not record advancement selection on %q: %v", item.Name(), err)
	}
}

// collectSkills merges every skill source into hero.skills, first
// occurrence wins.
func (c *Converter) collectSkills(actor *foundry.Actor, char *forgesteel.Character) {
	var collected []string

	collected = append(collected, c.skillsFromFeatures(char.Features)...)
	collected = append(collected, c.skillsFromCultureSections(char.Culture)...)

	if char.Ancestry != nil {
		collected = append(collected, c.skillsFromFeatures(char.Ancestry.Features)...)
	}
	if char.Culture != nil {
		collected = append(collected, c.skillsFromFeatures(char.Culture.Features)...)
	}
	if char.Career != nil {
		collected = append(collected, c.skillsFromFeatures(char.Career.Features)...)
	}
	if char.Class != nil {
		for _, bucket := range char.Class.FeaturesByLevel {
			collected = append(collected, c.skillsFromFeatures(bucket.Features)...)
		}
		classLevel := char.Class.Level
		if classLevel == 0 {
			classLevel = 1
		}
		for s := range char.Class.Subclasses {
			if !char.Class.Subclasses[s].Selected {
				continue
			}
			for _, bucket := range char.Class.Subclasses[s].FeaturesByLevel {
				if bucket.Level <= classLevel {
					collected = append(collected, c.skillsFromFeatures(bucket.Features)...)
				}
			}
		}
		for _, ch := range char.Class.Characteristics {
			for _, s := range ch.Skills {
				collected = append(collected, c.normalizeSkillName(s))
			}
		}
	}

	// Compendium origin items may carry pre-selected skill advancements.
	for _, item := range actor.Items {
		advancements := item.Get("system.advancements")
		if !advancements.Exists() {
			continue
		}
		advancements.ForEach(func(_, adv gjson.Result) bool {
			if adv.Get("type").Str == "skill" {
				for _, s := range adv.Get("selected").Array() {
					collected = append(collected, c.normalizeSkillName(s.Str))
				}
			}
			return true
		})
	}

	merged := dedupe(append(actor.System.Hero.Skills, collected...))
	if merged == nil {
		merged = []string{}
	}
	actor.System.Hero.Skills = merged
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// stripLanguageItems removes generic Language feature items. Languages reach
// the sheet through advancement selections; keeping the items as well would
// double them up. biography.languages stays empty for the same reason.
func (c *Converter) stripLanguageItems(actor *foundry.Actor) {
	actor.System.Biography.Languages = []string{}
	actor.FilterItems(func(it *foundry.Item) bool {
		return !(it.Type() == "feature" && strings.Contains(it.Name(), "Language"))
	})
}

// reclassifyTriggeredFeatures retypes feature items whose action type is
// triggered: the system treats anything with a trigger as an ability.
func (c *Converter) reclassifyTriggeredFeatures(actor *foundry.Actor) {
	for _, item := range actor.Items {
		if item.Type() == "feature" && item.SystemType() == "triggered" {
			if err := item.Set("type", "ability"); err != nil {
				utils.Log.Warnf("could not retype %q: %v", item.Name(), err)
			}
		}
	}
}
