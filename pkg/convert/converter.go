// Package convert turns a source character document into a Foundry actor.
// The engine is single threaded and synchronous: items are appended in a
// fixed walk order because duplicate suppression depends on what is already
// attached, and the catalog is read-only throughout.
package convert

import (
	"fmt"
	"strings"

	"github.com/stgreenb/FSF/internal/utils"
	"github.com/stgreenb/FSF/pkg/compendium"
	"github.com/stgreenb/FSF/pkg/forgesteel"
	"github.com/stgreenb/FSF/pkg/foundry"
	"github.com/stgreenb/FSF/pkg/textnorm"
)

// Options controls one conversion run.
type Options struct {
	// Strict escalates a failed catalog lookup from placeholder synthesis
	// to a per-entity error. Other entities still convert.
	Strict bool

	// Tables overrides the default lookup data. Nil means DefaultTables.
	Tables *Tables
}

// Converter drives conversions against one catalog. It holds no per-run
// state and may be reused across documents.
type Converter struct {
	catalog *compendium.Catalog
	strict  bool
	tables  Tables
}

func NewConverter(catalog *compendium.Catalog, opts Options) *Converter {
	tables := DefaultTables()
	if opts.Tables != nil {
		tables = *opts.Tables
	}
	return &Converter{
		catalog: catalog,
		strict:  opts.Strict,
		tables:  tables.clone(),
	}
}

// Convert builds the actor document for one character. Per-entity failures
// are collected in the report; only a structurally unusable document returns
// an error.
func (c *Converter) Convert(char *forgesteel.Character) (*foundry.Actor, *Report, error) {
	if char == nil || char.Name == "" {
		return nil, nil, fmt.Errorf("character document has no name")
	}

	level := DetectLevel(char)
	report := &Report{CharacterName: char.Name, Level: level}
	actor := foundry.NewActor(textnorm.Normalize(char.Name))

	utils.Log.Infof("converting %q at level %d", char.Name, level)

	c.applyState(actor, char)
	c.applyStability(actor, char)
	c.applyMovement(actor, char)
	c.applyCharacteristics(actor, char, level)

	c.convertAncestry(actor, char, report)
	c.convertCulture(actor, char, report)
	c.convertClass(actor, char, level, report)
	c.convertCareer(actor, char, report)
	c.convertSubclasses(actor, char, level, report)
	c.applyClassSkills(actor, char)
	c.convertComplication(actor, char, report)
	c.convertTopLevelFeatures(actor, char, report)
	c.convertKits(actor, char, level, report)
	c.addBasicAbilities(actor)
	c.convertClassAbilities(actor, char, level, report)
	c.convertInventory(actor, char, report)

	c.populateAdvancementSelections(actor, char)
	c.collectSkills(actor, char)
	c.stripLanguageItems(actor)
	c.reclassifyTriggeredFeatures(actor)

	report.Items = len(actor.Items)
	if audit := report.TransferAudit(); audit.Failed > 0 {
		utils.Log.Warnf("description audit: %d of %d transfers degraded (%d truncated, %d encoding)",
			audit.Failed, audit.Total, audit.Truncated, audit.EncodingIssues)
	}
	utils.Log.Infof("conversion finished: %d items, %d entity errors", report.Items, len(report.Errors))
	return actor, report, nil
}

func (c *Converter) mapActionType(usage string) string {
	if mapped, ok := c.tables.ActionTypes[usage]; ok {
		return mapped
	}
	return strings.ToLower(usage)
}

// applyState carries the sheet counters over. Base stamina for heroes is 20;
// kit bonuses are applied by the system at actor preparation, not here.
func (c *Converter) applyState(actor *foundry.Actor, char *forgesteel.Character) {
	st := char.State
	actor.System.Stamina.Value = 20 - st.StaminaDamage
	actor.System.Stamina.Temporary = st.StaminaTemp
	actor.System.Hero.Surges = st.Surges
	actor.System.Hero.XP = st.XP
	actor.System.Hero.Victories = st.Victories
	actor.System.Hero.Renown = st.Renown
	actor.System.Hero.Wealth = st.Wealth

	if char.Class != nil && char.Class.Recoveries > 0 {
		actor.System.Recoveries.Value = char.Class.Recoveries
	}
}

// applyStability adds +1 stability per Grounded ancestry trait, whether
// taken directly or through a choice.
func (c *Converter) applyStability(actor *foundry.Actor, char *forgesteel.Character) {
	if char.Ancestry == nil {
		return
	}
	stability := 0
	for i := range char.Ancestry.Features {
		f := &char.Ancestry.Features[i]
		if f.Type == forgesteel.TypeChoice {
			selected, err := f.SelectedFeatures()
			if err != nil {
				continue
			}
			for _, sf := range selected {
				if sf.Name == "Grounded" {
					stability++
				}
			}
		} else if f.Name == "Grounded" {
			stability++
		}
	}
	actor.System.Combat.Stability = stability
}

// applyMovement computes speed as the ancestry speed (base 5 when the
// ancestry declares none) plus the best kit bonus.
func (c *Converter) applyMovement(actor *foundry.Actor, char *forgesteel.Character) {
	speed := 5
	if char.Ancestry != nil {
		for i := range char.Ancestry.Features {
			f := &char.Ancestry.Features[i]
			if f.Type == forgesteel.TypeChoice {
				selected, err := f.SelectedFeatures()
				if err != nil {
					continue
				}
				for j := range selected {
					if selected[j].Type == forgesteel.TypeSpeed {
						if v, ok := selected[j].Speed(); ok {
							speed = v
						}
					}
				}
			} else if f.Type == forgesteel.TypeSpeed {
				if v, ok := f.Speed(); ok {
					speed = v
				}
			}
		}
	}

	kitBonus := 0
	if char.Class != nil {
		for _, bucket := range char.Class.FeaturesByLevel {
			for i := range bucket.Features {
				f := &bucket.Features[i]
				if f.Type != forgesteel.TypeKit {
					continue
				}
				kits, err := f.SelectedKits()
				if err != nil {
					continue
				}
				for _, k := range kits {
					if k.Speed > kitBonus {
						kitBonus = k.Speed
					}
				}
			}
		}
	}

	actor.System.Movement.Value = speed + kitBonus
	utils.Log.Debugf("movement speed %d (ancestry %d + kit bonus %d)", speed+kitBonus, speed, kitBonus)
}

// applyCharacteristics prefers the explicit scored block; older exports only
// carry primary characteristics (which start at 2) plus per-level bonuses.
func (c *Converter) applyCharacteristics(actor *foundry.Actor, char *forgesteel.Character, level int) {
	class := char.Class
	if class == nil {
		return
	}

	if len(class.Characteristics) > 0 {
		for _, ch := range class.Characteristics {
			actor.SetCharacteristic(ch.Characteristic, ch.Value)
		}
		return
	}

	for _, name := range class.PrimaryCharacteristics {
		actor.SetCharacteristic(name, 2)
	}
	for _, bucket := range class.FeaturesByLevel {
		if bucket.Level > level {
			continue
		}
		for i := range bucket.Features {
			f := &bucket.Features[i]
			if f.Type != forgesteel.TypeCharacteristicBonus {
				continue
			}
			name, value := f.CharacteristicBonus()
			if name != "" {
				actor.SetCharacteristic(name, actor.Characteristic(name)+value)
			}
		}
	}
}

// applyClassSkills seeds hero.skills from the scored characteristic block.
func (c *Converter) applyClassSkills(actor *foundry.Actor, char *forgesteel.Character) {
	if char.Class == nil {
		return
	}
	var skills []string
	for _, ch := range char.Class.Characteristics {
		for _, s := range ch.Skills {
			skills = append(skills, c.normalizeSkillName(s))
		}
	}
	if len(skills) > 0 {
		actor.System.Hero.Skills = skills
	}
}

func (c *Converter) convertAncestry(actor *foundry.Actor, char *forgesteel.Character, report *Report) {
	a := char.Ancestry
	if a == nil {
		return
	}

	item, err := c.convertItem(sourceItem{ID: a.ID, Name: a.Name, Description: a.Description}, "ancestry", report)
	if !report.entityFailed("ancestry", a.Name, err) {
		actor.AddItem(item)
		// With no explicit feature list the ancestry's own grants are the
		// only trait source; with one, the features below cover it and
		// expanding both would duplicate items.
		if len(a.Features) == 0 {
			c.expandGrants(actor, item, map[string]bool{})
		}
	}

	for i := range a.Features {
		f := &a.Features[i]
		if f.Type == forgesteel.TypeChoice {
			selected, err := f.SelectedFeatures()
			if report.entityFailed("ancestry choice", f.Name, err) {
				continue
			}
			for j := range selected {
				c.convertAncestryTrait(actor, &selected[j], report)
			}
		} else {
			c.convertAncestryTrait(actor, f, report)
		}
	}
}

func (c *Converter) convertAncestryTrait(actor *foundry.Actor, f *forgesteel.Feature, report *Report) {
	// Traits stay ancestryTrait even when they wrap abilities; the trait's
	// own grants attach the abilities.
	trait, err := c.convertItem(fromFeature(f), "ancestryTrait", report)
	if report.entityFailed("ancestryTrait", f.Name, err) {
		return
	}
	if !actor.AddItem(trait) {
		return
	}
	if f.Type == forgesteel.TypeChoice {
		nested, err := f.SelectedFeatures()
		if err != nil {
			return
		}
		names := map[string]bool{}
		for _, n := range nested {
			names[n.Name] = true
		}
		c.expandChoiceGrants(actor, trait, names)
		return
	}
	c.expandGrants(actor, trait, map[string]bool{})
}

func (c *Converter) convertCulture(actor *foundry.Actor, char *forgesteel.Character, report *Report) {
	cu := char.Culture
	if cu == nil {
		return
	}
	item, err := c.convertItem(sourceItem{ID: cu.ID, Name: cu.Name, Description: cu.Description}, "culture", report)
	if !report.entityFailed("culture", cu.Name, err) {
		actor.AddItem(item)
	}
}

func (c *Converter) convertClass(actor *foundry.Actor, char *forgesteel.Character, level int, report *Report) {
	class := char.Class
	if class == nil {
		return
	}

	item, err := c.convertItem(sourceItem{ID: class.ID, Name: class.Name, Description: class.Description}, "class", report)
	if !report.entityFailed("class", class.Name, err) {
		classLevel := class.Level
		if classLevel == 0 {
			classLevel = 1
		}
		if err := item.Set("system.level", classLevel); err == nil {
			actor.AddItem(item)
		}
	}

	for _, bucket := range class.FeaturesByLevel {
		if bucket.Level > level {
			continue
		}
		for i := range bucket.Features {
			c.convertClassFeature(actor, &bucket.Features[i], report)
		}
	}
}

// convertClassFeature applies the level-bucket filtering rules: placeholder
// containers are skipped, choice-like features unwrap to their selections,
// and everything else converts directly.
func (c *Converter) convertClassFeature(actor *foundry.Actor, f *forgesteel.Feature, report *Report) {
	switch f.Type {
	// Handled by dedicated passes.
	case forgesteel.TypeSkillChoice, forgesteel.TypeLanguageChoice, forgesteel.TypeClassAbility:
		return
	case forgesteel.TypeDomainFeature:
		selected, err := f.SelectedFeatures()
		if report.entityFailed("domain feature", f.Name, err) {
			return
		}
		for i := range selected {
			item, err := c.convertItem(fromFeature(&selected[i]), "ability", report)
			if !report.entityFailed("ability", selected[i].Name, err) {
				actor.AddItem(item)
			}
		}
		return
	}

	if forgesteel.IsContainerFeature(f.Name) {
		utils.Log.Debugf("skipping container feature %q", f.Name)
		return
	}

	switch f.Type {
	case forgesteel.TypePerk, forgesteel.TypeProject:
		selected, err := f.SelectedFeatures()
		if report.entityFailed(strings.ToLower(f.Type), f.Name, err) {
			return
		}
		for i := range selected {
			item, err := c.convertItem(fromFeature(&selected[i]), strings.ToLower(f.Type), report)
			if !report.entityFailed(strings.ToLower(f.Type), selected[i].Name, err) {
				actor.AddItem(item)
			}
		}
	case forgesteel.TypeChoice:
		c.convertChoiceSelections(actor, f, report)
	case forgesteel.TypeMultipleFeatures:
		c.convertNestedAbilities(actor, f, report)
	case forgesteel.TypeBonus, forgesteel.TypeCharacteristicBonus, forgesteel.TypeHeroicResourceGain:
		// Pure modifiers, no item representation.
	default:
		c.convertDirectFeature(actor, f, report)
	}
}

// convertChoiceSelections unwraps a Choice feature, skipping pure-modifier
// sub-types.
func (c *Converter) convertChoiceSelections(actor *foundry.Actor, f *forgesteel.Feature, report *Report) {
	selected, err := f.SelectedFeatures()
	if report.entityFailed("choice", f.Name, err) {
		return
	}
	for i := range selected {
		sf := &selected[i]
		switch sf.Type {
		case forgesteel.TypeBonus, forgesteel.TypeAbilityDamage, forgesteel.TypeCharacteristicBonus:
			continue
		}
		itemType := "feature"
		if sf.Type == forgesteel.TypeAbility {
			itemType = "ability"
		}
		item, err := c.convertItem(fromFeature(sf), itemType, report)
		if !report.entityFailed(itemType, sf.Name, err) {
			actor.AddItem(item)
		}
	}
}

// convertNestedAbilities pulls ability children out of a Multiple Features
// wrapper.
func (c *Converter) convertNestedAbilities(actor *foundry.Actor, f *forgesteel.Feature, report *Report) {
	nested, err := f.NestedFeatures()
	if report.entityFailed("multiple features", f.Name, err) {
		return
	}
	for i := range nested {
		nf := &nested[i]
		if nf.Type != forgesteel.TypeAbility {
			continue
		}
		src := fromFeature(nf)
		if src.Name == "" {
			continue
		}
		item, err := c.convertItem(src, "ability", report)
		if !report.entityFailed("ability", src.Name, err) {
			actor.AddItem(item)
		}
	}
}

func (c *Converter) convertDirectFeature(actor *foundry.Actor, f *forgesteel.Feature, report *Report) {
	itemType := "feature"
	if f.Type == forgesteel.TypeAbility {
		itemType = "ability"
	}
	item, err := c.convertItem(fromFeature(f), itemType, report)
	if !report.entityFailed(itemType, f.Name, err) {
		actor.AddItem(item)
	}
}

func (c *Converter) convertCareer(actor *foundry.Actor, char *forgesteel.Character, report *Report) {
	career := char.Career
	if career == nil {
		return
	}

	item, err := c.convertItem(sourceItem{ID: career.ID, Name: career.Name, Description: career.Description}, "career", report)
	if !report.entityFailed("career", career.Name, err) {
		actor.AddItem(item)
	}

	for i := range career.Features {
		f := &career.Features[i]
		switch f.Type {
		case forgesteel.TypeSkillChoice, forgesteel.TypeBonus, forgesteel.TypeCharacteristicBonus:
			continue
		case forgesteel.TypePerk, forgesteel.TypeProject:
			selected, err := f.SelectedFeatures()
			if report.entityFailed(strings.ToLower(f.Type), f.Name, err) {
				continue
			}
			for j := range selected {
				item, err := c.convertItem(fromFeature(&selected[j]), strings.ToLower(f.Type), report)
				if !report.entityFailed(strings.ToLower(f.Type), selected[j].Name, err) {
					actor.AddItem(item)
				}
			}
			continue
		}
		if strings.Contains(f.Name, "Skill") || strings.Contains(f.Name, "Language") ||
			strings.Contains(f.Name, "Feature") {
			continue
		}
		item, err := c.convertItem(fromFeature(f), "feature", report)
		if !report.entityFailed("feature", f.Name, err) {
			actor.AddItem(item)
		}
	}
}

func (c *Converter) convertSubclasses(actor *foundry.Actor, char *forgesteel.Character, level int, report *Report) {
	if char.Class == nil {
		return
	}
	for s := range char.Class.Subclasses {
		sub := &char.Class.Subclasses[s]
		if !sub.Selected {
			continue
		}

		item, err := c.convertItem(sourceItem{ID: sub.ID, Name: sub.Name, Description: sub.Description}, "subclass", report)
		if !report.entityFailed("subclass", sub.Name, err) {
			actor.AddItem(item)
		}

		for _, bucket := range sub.FeaturesByLevel {
			if bucket.Level > level {
				continue
			}
			for i := range bucket.Features {
				f := &bucket.Features[i]
				switch f.Type {
				case forgesteel.TypeSkillChoice, forgesteel.TypeKit,
					forgesteel.TypePerk, forgesteel.TypeDomainFeature, forgesteel.TypeClassAbility:
					// Kits are collected separately; the rest are meta
					// containers at the subclass level.
					continue
				case forgesteel.TypeMultipleFeatures:
					c.convertNestedAbilities(actor, f, report)
					continue
				case forgesteel.TypeChoice:
					c.convertChoiceSelections(actor, f, report)
					continue
				case forgesteel.TypeBonus, forgesteel.TypeCharacteristicBonus, forgesteel.TypeHeroicResourceGain:
					continue
				}
				c.convertDirectFeature(actor, f, report)
			}
		}
	}
}

func (c *Converter) convertComplication(actor *foundry.Actor, char *forgesteel.Character, report *Report) {
	comp := char.Complication
	if comp == nil || comp.Name == "" {
		return
	}
	item, err := c.convertItem(fromFeature(comp), "complication", report)
	if !report.entityFailed("complication", comp.Name, err) {
		actor.AddItem(item)
	}
}

func (c *Converter) convertTopLevelFeatures(actor *foundry.Actor, char *forgesteel.Character, report *Report) {
	for i := range char.Features {
		f := &char.Features[i]
		if f.Type == forgesteel.TypeLanguageChoice || f.Type == forgesteel.TypeSkillChoice {
			continue
		}
		item, err := c.convertItem(fromFeature(f), "feature", report)
		if !report.entityFailed("feature", f.Name, err) {
			actor.AddItem(item)
		}
	}
}

// collectKits gathers the selected kits from class and selected-subclass
// buckets at or below the character level.
func collectKits(char *forgesteel.Character, level int) []forgesteel.Kit {
	if char.Class == nil {
		return nil
	}
	var kits []forgesteel.Kit

	appendFrom := func(buckets []forgesteel.LevelFeatures) {
		for _, bucket := range buckets {
			if bucket.Level > level {
				continue
			}
			for i := range bucket.Features {
				f := &bucket.Features[i]
				if f.Type != forgesteel.TypeKit {
					continue
				}
				selected, err := f.SelectedKits()
				if err != nil {
					utils.Log.Warnf("unreadable kit selection %q: %v", f.Name, err)
					continue
				}
				kits = append(kits, selected...)
			}
		}
	}

	appendFrom(char.Class.FeaturesByLevel)
	for s := range char.Class.Subclasses {
		if char.Class.Subclasses[s].Selected {
			appendFrom(char.Class.Subclasses[s].FeaturesByLevel)
		}
	}
	return kits
}

func (c *Converter) convertKits(actor *foundry.Actor, char *forgesteel.Character, level int, report *Report) {
	for _, kit := range collectKits(char, level) {
		item, err := c.convertItem(sourceItem{ID: kit.ID, Name: kit.Name, Description: kit.Description}, "kit", report)
		if report.entityFailed("kit", kit.Name, err) {
			continue
		}
		actor.AddItem(item)
		c.expandGrants(actor, item, map[string]bool{})
	}
}

// addBasicAbilities attaches the foundational abilities every hero has.
// Catalog iteration is sorted, so the attachment order is stable.
func (c *Converter) addBasicAbilities(actor *foundry.Actor) {
	for _, entry := range c.catalog.Entries() {
		if !c.tables.BasicAbilities[entry.DSID] || entry.Type != "ability" {
			continue
		}
		actor.AddItem(foundry.NewItem(entry.Raw))
	}
}

func (c *Converter) convertInventory(actor *foundry.Actor, char *forgesteel.Character, report *Report) {
	for i := range char.State.Inventory {
		f := &char.State.Inventory[i]
		item, err := c.convertItem(fromFeature(f), "treasure", report)
		if !report.entityFailed("treasure", f.Name, err) {
			actor.AddItem(item)
		}
	}
}
