package convert

import (
	"fmt"
	"sort"

	"github.com/stgreenb/FSF/internal/utils"
	"github.com/stgreenb/FSF/pkg/description"
	"github.com/stgreenb/FSF/pkg/forgesteel"
	"github.com/stgreenb/FSF/pkg/foundry"
	"github.com/stgreenb/FSF/pkg/textnorm"
)

// selectedAbilityIDs gathers the ability identifiers picked through Class
// Ability features at or below the character level.
func selectedAbilityIDs(class *forgesteel.Class, level int) map[string]bool {
	ids := map[string]bool{}
	for _, bucket := range class.FeaturesByLevel {
		if bucket.Level > level {
			continue
		}
		for i := range bucket.Features {
			f := &bucket.Features[i]
			if f.Type != forgesteel.TypeClassAbility {
				continue
			}
			for _, id := range f.SelectedAbilityIDs() {
				ids[id] = true
			}
		}
	}
	return ids
}

// convertClassAbilities converts the class ability list, keeping only
// abilities the character both selected and can use at their level. Basic
// abilities are attached elsewhere and never pass through here.
func (c *Converter) convertClassAbilities(actor *foundry.Actor, char *forgesteel.Character, level int, report *Report) {
	class := char.Class
	if class == nil {
		return
	}
	selected := selectedAbilityIDs(class, level)

	var convertedNames []string
	for i := range class.Abilities {
		a := &class.Abilities[i]
		if a.Name == "" {
			utils.Log.Debugf("skipping ability without name: %s", a.ID)
			continue
		}
		if a.EffectiveLevel() > level {
			utils.Log.Debugf("skipping ability %q: level %d above character level %d",
				a.Name, a.EffectiveLevel(), level)
			continue
		}
		if !selected[a.ID] {
			utils.Log.Debugf("skipping ability %q: not selected", a.Name)
			continue
		}

		item, err := c.convertAbility(a, report)
		if report.entityFailed("ability", a.Name, err) {
			continue
		}
		actor.AddItem(item)
		convertedNames = append(convertedNames, item.Name())
	}

	report.Abilities = validateAbilities(class.Abilities, convertedNames, level)
	utils.Log.Infof("ability conversion: %s", report.Abilities.Summary())
}

// convertAbility converts one selected class ability, carrying provenance
// fields (_dsid, _source_level, _is_selected) so the result can be traced
// back to the source document. The description transfer is validated and
// recorded on the report.
func (c *Converter) convertAbility(a *forgesteel.Ability, report *Report) (*foundry.Item, error) {
	name := textnorm.Normalize(a.Name)
	normalizedDesc := textnorm.Normalize(a.Description)

	entry := c.catalog.Find(name, "ability")
	if entry == nil {
		if c.strict {
			return nil, fmt.Errorf("%w for ability %q", ErrNoMatch, name)
		}
		desc := normalizedDesc
		if desc == "" {
			desc = description.Fallback
		}
		desc = description.Enhance(desc, "ability")
		report.recordTransfer(name, a.Description, desc)
		usage := a.Type.Usage
		if usage == "" {
			usage = "main"
		}
		return foundry.NewAbilityItem(foundry.AbilityFields{
			Name:            name,
			DSID:            a.ID,
			Description:     desc,
			EffectBefore:    normalizedDesc,
			Keywords:        a.Keywords,
			ActionType:      c.mapActionType(usage),
			Characteristics: a.Characteristic,
			SourceLevel:     a.EffectiveLevel(),
			Selected:        true,
		}), nil
	}

	item := foundry.NewItem(entry.Raw)
	for path, value := range map[string]interface{}{
		"type":                 "ability",
		"system._dsid":         a.ID,
		"system._source_level": a.EffectiveLevel(),
		"system._is_selected":  true,
	} {
		if err := item.Set(path, value); err != nil {
			return nil, err
		}
	}

	usage := a.Type.Usage
	if usage == "" {
		usage = "main"
	}
	if err := item.Set("system.type", c.mapActionType(usage)); err != nil {
		return nil, err
	}

	if item.Get("system.description.value").Str == "" && normalizedDesc != "" {
		if err := item.Set("system.description", map[string]interface{}{
			"value":    description.Enhance(normalizedDesc, "ability"),
			"director": "",
		}); err != nil {
			return nil, err
		}
	}
	report.recordTransfer(name, a.Description, item.Get("system.description.value").Str)
	return item, nil
}

// validateAbilities compares the converted list against what level filtering
// alone would allow, so a human can tell expected drops from real defects.
func validateAbilities(all []forgesteel.Ability, convertedNames []string, level int) AbilityValidation {
	v := AbilityValidation{
		Original:  len(all),
		Converted: len(convertedNames),
		Level:     level,
	}

	eligible := map[string]bool{}
	for i := range all {
		if all[i].EffectiveLevel() <= level {
			v.Expected++
			eligible[textnorm.Normalize(all[i].Name)] = true
		}
	}

	converted := map[string]bool{}
	for _, n := range convertedNames {
		converted[n] = true
	}

	for n := range eligible {
		if !converted[n] {
			v.Missing = append(v.Missing, n)
		}
	}
	for n := range converted {
		if !eligible[n] {
			v.Extra = append(v.Extra, n)
		}
	}
	sort.Strings(v.Missing)
	sort.Strings(v.Extra)
	return v
}
