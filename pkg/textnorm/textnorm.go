// Package textnorm cleans up character encoding artifacts at the ingestion
// boundary so that names and descriptions survive the trip into Foundry's
// JSON documents.
package textnorm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/stgreenb/FSF/internal/utils"
)

type replacement struct {
	old string
	new string
}

// replacements is the source of truth for typographic cleanup. Smart quotes
// and dashes show up constantly in pasted rulebook text; the combining grave
// accent and Cyrillic A are known-problematic code points from real exports.
var replacements = []replacement{
	{"“", `"`}, // left double quote
	{"”", `"`}, // right double quote
	{"‘", "'"}, // left single quote
	{"’", "'"}, // right single quote
	{"–", "-"}, // en dash
	{"—", "-"}, // em dash
	{"…", "..."}, // ellipsis
	{"�", ""}, // replacement character (encoding artifact)
	{"̀", ""}, // combining grave accent
	{"А", ""}, // Cyrillic capital A
}

// spellingVariants maps British spellings to the American forms used by the
// compendium, for lookup keys only.
var spellingVariants = map[string]string{
	"travelling": "traveling",
	"travelled":  "traveled",
	"traveller":  "traveler",
	"colour":     "color",
	"honour":     "honor",
	"favour":     "favor",
	"armour":     "armor",
	"behaviour":  "behavior",
	"flavour":    "flavor",
	"rumour":     "rumor",
	"savour":     "savor",
	"valour":     "valor",
	"vigour":     "vigor",
}

var (
	spellingPatterns []spellingPattern
	whitespaceRE     = regexp.MustCompile(`\s+`)
)

type spellingPattern struct {
	re       *regexp.Regexp
	american string
}

func init() {
	// Sort for stable application order.
	british := make([]string, 0, len(spellingVariants))
	for b := range spellingVariants {
		british = append(british, b)
	}
	sort.Strings(british)
	for _, b := range british {
		spellingPatterns = append(spellingPatterns, spellingPattern{
			re:       regexp.MustCompile("(?i)" + regexp.QuoteMeta(b)),
			american: spellingVariants[b],
		})
	}
}

// Normalize converts text to clean UTF-8, applies the typographic
// replacement table and strips control characters. Newlines, tabs and
// regular punctuation survive. Running it twice is a no-op.
func Normalize(text string) string {
	if text == "" {
		return text
	}
	original := text

	text = strings.ToValidUTF8(text, "")

	for _, r := range replacements {
		if strings.Contains(text, r.old) {
			text = strings.ReplaceAll(text, r.old, r.new)
			utils.Log.Debugf("replaced %q (U+%04X) with %q", r.old, []rune(r.old)[0], r.new)
		}
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, ch := range text {
		if unicode.IsPrint(ch) || ch == '\n' || ch == '\t' {
			b.WriteRune(ch)
		} else if ch < 32 {
			utils.Log.Debugf("removed control character U+%04X", ch)
		}
	}
	text = strings.TrimSpace(b.String())

	if text != original {
		utils.Log.Debugf("text normalization applied: %q -> %q", utils.Truncate(original, 50), utils.Truncate(text, 50))
	}
	return text
}

// SanitizeForLookup reduces a display name to a matching key: normalized,
// American spelling, no punctuation, collapsed whitespace, lowercase.
// The key is never shown to the user.
func SanitizeForLookup(name string) string {
	if name == "" {
		return name
	}
	sanitized := Normalize(name)

	for _, p := range spellingPatterns {
		sanitized = p.re.ReplaceAllString(sanitized, p.american)
	}

	sanitized = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`,.!?;:"'()[]`, r) {
			return -1
		}
		return r
	}, sanitized)

	sanitized = whitespaceRE.ReplaceAllString(sanitized, " ")
	return strings.ToLower(strings.TrimSpace(sanitized))
}

// ValidateRoundTrip reports whether text survives JSON serialization
// unchanged. A false result means the text would be corrupted on export.
func ValidateRoundTrip(text string) bool {
	encoded, err := json.Marshal(text)
	if err != nil {
		utils.Log.Warnf("JSON round-trip validation failed: %v", err)
		return false
	}
	var decoded string
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		utils.Log.Warnf("JSON round-trip validation failed: %v", err)
		return false
	}
	return text == decoded
}

// DiffSummary describes what Normalize changed, for debugging exports that
// look mangled.
type DiffSummary struct {
	OriginalLength    int
	NormalizedLength  int
	LengthDifference  int
	CharactersRemoved []rune
	HasUnicodeIssues  bool
	JSONSafe          bool
}

// Summarize compares original and normalized text.
func Summarize(original, normalized string) DiffSummary {
	kept := make(map[rune]struct{})
	for _, r := range normalized {
		kept[r] = struct{}{}
	}
	seen := make(map[rune]struct{})
	var removed []rune
	hasUnicode := false
	for _, r := range original {
		if r > 127 {
			hasUnicode = true
		}
		if _, ok := kept[r]; !ok {
			if _, dup := seen[r]; !dup {
				seen[r] = struct{}{}
				removed = append(removed, r)
			}
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })

	return DiffSummary{
		OriginalLength:    len([]rune(original)),
		NormalizedLength:  len([]rune(normalized)),
		LengthDifference:  len([]rune(normalized)) - len([]rune(original)),
		CharactersRemoved: removed,
		HasUnicodeIssues:  hasUnicode,
		JSONSafe:          ValidateRoundTrip(normalized),
	}
}

func (d DiffSummary) String() string {
	return fmt.Sprintf("length %d -> %d, removed %d distinct characters, json safe: %t",
		d.OriginalLength, d.NormalizedLength, len(d.CharactersRemoved), d.JSONSafe)
}
