// Package description moves descriptive text from source characters and
// compendium entries into Foundry item documents, repairing markup on the
// way so the result renders cleanly in the sheet.
package description

import (
	"regexp"
	"strings"

	"github.com/stgreenb/FSF/internal/utils"
	"github.com/stgreenb/FSF/pkg/compendium"
	"github.com/stgreenb/FSF/pkg/textnorm"
	"golang.org/x/net/html"
)

// Fallback is used when neither the compendium entry nor the source item
// carries any text. It must pass through Enhance unchanged.
const Fallback = "No description available"

// Source carries the description-bearing fields of a source item: the plain
// description plus any text sections an ability may hold instead.
type Source struct {
	Description string
	Sections    []string
}

// allowedTags are the container tags Foundry renders. Anything unclosed from
// this list gets a closing tag appended. Void tags (br, img, hr) never need
// one and are deliberately absent.
var allowedTags = []string{"p", "strong", "em", "i", "b", "u", "ul", "ol", "li", "div", "span"}

var allowedTagSet = map[string]bool{}

func init() {
	for _, t := range allowedTags {
		allowedTagSet[t] = true
	}
}

// Resolve picks the best available description. Compendium text wins over
// source text, a populated description wins over joined sections, and the
// fallback sentinel closes the chain. The result is always normalized and
// tag-repaired; Resolve never fails.
func Resolve(src Source, entry *compendium.Entry) string {
	if entry != nil {
		for _, path := range []string{"system.description.value", "system.effect.before"} {
			if v := strings.TrimSpace(entry.Get(path).Str); v != "" {
				utils.Log.Debugf("using compendium description for %s (%s)", entry.Name, path)
				return RepairTags(textnorm.Normalize(v))
			}
		}
		utils.Log.Warnf("compendium entry %s has an empty description", entry.Name)
	}

	if v := strings.TrimSpace(src.Description); v != "" {
		return RepairTags(textnorm.Normalize(v))
	}

	var parts []string
	for _, s := range src.Sections {
		if t := strings.TrimSpace(s); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) > 0 {
		utils.Log.Debug("using section text as description")
		return RepairTags(textnorm.Normalize(strings.Join(parts, " ")))
	}

	utils.Log.Warn("no description found, using fallback")
	return Fallback
}

// RepairTags appends closing tags for any unbalanced container tag from the
// safelist. It never removes or reorders content.
func RepairTags(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}

	unclosed := map[string]int{}
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		name, _ := z.TagName()
		tag := string(name)
		if !allowedTagSet[tag] {
			continue
		}
		switch tt {
		case html.StartTagToken:
			unclosed[tag]++
		case html.EndTagToken:
			if unclosed[tag] > 0 {
				unclosed[tag]--
			}
		}
	}

	repaired := false
	for _, tag := range allowedTags {
		if unclosed[tag] == 0 {
			continue
		}
		if !repaired {
			text = strings.TrimRight(text, " \t\n")
			repaired = true
		}
		utils.Log.Debugf("auto-closed %d unclosed <%s> tags in description", unclosed[tag], tag)
		for i := 0; i < unclosed[tag]; i++ {
			text += "</" + tag + ">"
		}
	}
	return text
}

var (
	boldRE      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRE    = regexp.MustCompile(`\*([^*]+)\*`)
	paraBreakRE = regexp.MustCompile(`\n\s*\n`)
)

// Enhance converts the markdown habits of source text into the HTML Foundry
// expects: bold and italic markers, paragraph wrapping for bare text, blank
// lines into paragraph breaks and newlines into <br>. Already-enhanced text
// passes through unchanged, as does the fallback sentinel.
func Enhance(text, itemKind string) string {
	if text == "" || text == Fallback {
		return text
	}

	enhanced := text
	if !strings.HasPrefix(enhanced, "<p>") && !strings.HasPrefix(enhanced, "<div>") &&
		!strings.Contains(enhanced, "<") {
		utils.Log.Debugf("wrapping plain %s description in paragraph tags", itemKind)
		enhanced = "<p>" + enhanced + "</p>"
	}

	enhanced = boldRE.ReplaceAllString(enhanced, "<strong>$1</strong>")
	enhanced = italicRE.ReplaceAllString(enhanced, "<em>$1</em>")
	enhanced = paraBreakRE.ReplaceAllString(enhanced, "</p><p>")
	enhanced = strings.ReplaceAll(enhanced, "\n", "<br>")
	return enhanced
}

// ValidateTransfer reports whether transferred text faithfully carries the
// original: content must not vanish, shrink below half its length or fail
// JSON round-tripping.
func ValidateTransfer(original, transferred string) bool {
	if original == "" && transferred == "" {
		return true
	}
	if original != "" && transferred == "" {
		return false
	}
	if len(transferred)*2 < len(original) {
		utils.Log.Warn("significant description truncation detected")
		return false
	}
	if !textnorm.ValidateRoundTrip(transferred) {
		utils.Log.Warn("description is not JSON-safe")
		return false
	}
	return true
}
