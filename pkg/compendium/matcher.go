package compendium

import (
	"strings"

	"github.com/stgreenb/FSF/internal/utils"
	"github.com/stgreenb/FSF/pkg/textnorm"
)

// knownAliases maps display names whose compendium dsid cannot be derived
// from the name alone. Checked before any matching tier.
var knownAliases = map[string]string{
	"Clarity":      "clarity-and-strain",
	"Glowing Eyes": "glowing-eyes",
	"Psionic Bolt": "psionic-bolt",
}

// Find resolves a source entity name to a compendium entry. Tiers, first hit
// wins: exact name+type, substring name+type, exact name any type, quoted
// name, sanitized-key equality. declaredType may be empty to skip the typed
// tiers. Returns nil on a total miss; the caller decides whether that means
// a placeholder or an error.
func (c *Catalog) Find(name, declaredType string) *Entry {
	if name == "" {
		return nil
	}

	if dsid, ok := knownAliases[name]; ok {
		if e := c.Get(dsid); e != nil {
			return e
		}
	}

	entries := c.Entries()
	lowerName := strings.ToLower(name)

	if declaredType != "" {
		for _, e := range entries {
			if strings.EqualFold(e.Name, name) && strings.EqualFold(e.Type, declaredType) {
				return e
			}
		}
		for _, e := range entries {
			if strings.Contains(strings.ToLower(e.Name), lowerName) && strings.EqualFold(e.Type, declaredType) {
				return e
			}
		}
	}

	for _, e := range entries {
		if strings.EqualFold(e.Name, name) {
			return e
		}
	}

	// Some compendium names are stored wrapped in quotation marks.
	quoted := `"` + name + `"`
	for _, e := range entries {
		if strings.EqualFold(e.Name, quoted) {
			return e
		}
	}

	sanitized := textnorm.SanitizeForLookup(name)
	for _, e := range entries {
		if e.nameKey == sanitized || e.dsidKey == sanitized {
			return e
		}
	}

	utils.Log.Debugf("no compendium match for %q (type %q)", name, declaredType)
	return nil
}
