package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stgreenb/FSF/pkg/description"
	"github.com/stgreenb/FSF/pkg/forgesteel"
	"github.com/stgreenb/FSF/pkg/foundry"
	"github.com/stgreenb/FSF/pkg/textnorm"
)

// ErrNoMatch marks a failed catalog lookup in strict mode.
var ErrNoMatch = errors.New("no compendium match")

// sourceItem is the common shape convertItem works on, extracted from
// whichever source structure is being converted.
type sourceItem struct {
	ID          string
	Name        string
	Description string
	Sections    []string
	Ability     *forgesteel.Ability
}

// fromFeature extracts the convertible fields of a feature. Ability-typed
// features carry their real payload under data.ability; its fields win over
// the wrapper's when present.
func fromFeature(f *forgesteel.Feature) sourceItem {
	src := sourceItem{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
	}
	if f.Type == forgesteel.TypeAbility {
		if a := f.AbilityPayload(); a != nil {
			return fromAbility(a)
		}
	}
	return src
}

func fromAbility(a *forgesteel.Ability) sourceItem {
	return sourceItem{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Sections:    a.SectionTexts(),
		Ability:     a,
	}
}

// originalText is the source-side text a transfer is judged against: the
// plain description when present, joined sections otherwise.
func (s sourceItem) originalText() string {
	if s.Description != "" {
		return s.Description
	}
	return strings.Join(s.Sections, " ")
}

// convertItem resolves one source item against the catalog. On a match the
// catalog document is copied and overlaid with the source's description and
// (for abilities) action type; on a miss a placeholder is synthesized unless
// strict mode escalates. Every transfer is validated against the source
// text and recorded on the report.
func (c *Converter) convertItem(src sourceItem, itemType string, report *Report) (*foundry.Item, error) {
	name := textnorm.Normalize(src.Name)
	if name == "" {
		return nil, fmt.Errorf("%s item has no name", itemType)
	}

	entry := c.catalog.Find(name, itemType)
	if entry == nil {
		if c.strict {
			return nil, fmt.Errorf("%w for %s %q", ErrNoMatch, itemType, name)
		}
		item, desc := c.placeholderItem(name, src, itemType)
		report.recordTransfer(name, src.originalText(), desc)
		return item, nil
	}

	item := foundry.NewItem(entry.Raw)
	if item.Type() != itemType {
		if err := item.Set("type", itemType); err != nil {
			return nil, err
		}
	}

	desc := description.Resolve(description.Source{
		Description: src.Description,
		Sections:    src.Sections,
	}, entry)
	if err := item.Set("system.description", map[string]interface{}{
		"value":    desc,
		"director": "",
	}); err != nil {
		return nil, err
	}
	report.recordTransfer(name, src.originalText(), desc)

	if itemType == "ability" && src.Ability != nil {
		usage := src.Ability.Type.Usage
		if usage == "" {
			usage = "main"
		}
		if err := item.Set("system.type", c.mapActionType(usage)); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// placeholderItem synthesizes an item for a source entry with no catalog
// counterpart. It also returns the description it settled on, so the caller
// can record the transfer.
func (c *Converter) placeholderItem(name string, src sourceItem, itemType string) (*foundry.Item, string) {
	desc := description.Resolve(description.Source{
		Description: src.Description,
		Sections:    src.Sections,
	}, nil)
	desc = description.Enhance(desc, itemType)

	if itemType == "ability" && src.Ability != nil {
		a := src.Ability
		usage := a.Type.Usage
		if usage == "" {
			usage = "main"
		}
		return foundry.NewAbilityItem(foundry.AbilityFields{
			Name:            name,
			DSID:            src.ID,
			Description:     desc,
			EffectBefore:    textnorm.Normalize(a.Description),
			Keywords:        a.Keywords,
			ActionType:      c.mapActionType(usage),
			Characteristics: a.Characteristic,
		}), desc
	}
	return foundry.NewFeatureItem(name, itemType, src.ID, desc), desc
}
