package description

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/stgreenb/FSF/pkg/textnorm"
)

var (
	htmlTagRE  = regexp.MustCompile(`<[^>]+>`)
	markdownRE = regexp.MustCompile("\\*\\*.*?\\*\\*|_.*?_|`.*?`")
)

// Statistics describes a single description, for auditing exports.
type Statistics struct {
	Length      int
	WordCount   int
	HasHTML     bool
	HasMarkdown bool
	Tags        []string
	Empty       bool
}

// Stats analyzes a description. The tag inventory comes from a real HTML
// parse, so malformed fragments report only the tags the parser recognizes.
func Stats(text string) Statistics {
	if text == "" {
		return Statistics{Empty: true}
	}

	s := Statistics{
		Length:      len(text),
		WordCount:   len(strings.Fields(text)),
		HasHTML:     htmlTagRE.MatchString(text),
		HasMarkdown: markdownRE.MatchString(text),
		Empty:       strings.TrimSpace(text) == "",
	}

	if s.HasHTML {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
		if err == nil {
			seen := map[string]struct{}{}
			doc.Find("body *").Each(func(_ int, sel *goquery.Selection) {
				seen[goquery.NodeName(sel)] = struct{}{}
			})
			for tag := range seen {
				s.Tags = append(s.Tags, tag)
			}
			sort.Strings(s.Tags)
		}
	}
	return s
}

// TransferRecord pairs one item's original and transferred descriptions.
type TransferRecord struct {
	Name        string
	Original    string
	Transferred string
}

// AuditIssue names one record that failed validation.
type AuditIssue struct {
	Index   int
	Name    string
	Problem string
}

// AuditReport aggregates transfer validation over a whole conversion.
type AuditReport struct {
	Total          int
	Succeeded      int
	Failed         int
	Empty          int
	Truncated      int
	EncodingIssues int
	Issues         []AuditIssue
}

// Audit validates every record and tallies the failure modes.
func Audit(records []TransferRecord) AuditReport {
	report := AuditReport{Total: len(records)}

	for i, r := range records {
		if r.Original == "" && r.Transferred == "" {
			report.Empty++
			continue
		}

		if ValidateTransfer(r.Original, r.Transferred) {
			report.Succeeded++
		} else {
			report.Failed++
			report.Issues = append(report.Issues, AuditIssue{
				Index:   i,
				Name:    r.Name,
				Problem: "transfer validation failed",
			})
		}

		if r.Original != "" && r.Transferred != "" && len(r.Transferred)*2 < len(r.Original) {
			report.Truncated++
		}
		if !textnorm.ValidateRoundTrip(r.Transferred) {
			report.EncodingIssues++
		}
	}
	return report
}
