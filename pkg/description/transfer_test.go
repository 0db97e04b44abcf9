package description

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stgreenb/FSF/pkg/compendium"
)

func entryWith(t *testing.T, raw string) *compendium.Entry {
	t.Helper()
	e := compendium.NewEntry([]byte(raw))
	if e == nil {
		t.Fatalf("invalid test entry: %s", raw)
	}
	return e
}

func TestResolvePrefersCompendiumDescription(t *testing.T) {
	e := entryWith(t, `{"_id":"a1","name":"Heal","type":"ability","system":{
		"_dsid":"heal",
		"description":{"value":"<p>Compendium text.</p>"},
		"effect":{"before":"Effect text."}}}`)

	got := Resolve(Source{Description: "Source text."}, e)
	if got != "<p>Compendium text.</p>" {
		t.Fatalf("expected compendium description, got %q", got)
	}
}

func TestResolveFallsBackToEffectBefore(t *testing.T) {
	e := entryWith(t, `{"_id":"a1","name":"Heal","type":"ability","system":{
		"_dsid":"heal",
		"description":{"value":"  "},
		"effect":{"before":"Spend a Recovery."}}}`)

	if got := Resolve(Source{}, e); got != "Spend a Recovery." {
		t.Fatalf("expected effect.before text, got %q", got)
	}
}

func TestResolveUsesSourceDescription(t *testing.T) {
	if got := Resolve(Source{Description: "A trusty blade."}, nil); got != "A trusty blade." {
		t.Fatalf("expected source description, got %q", got)
	}
}

func TestResolveJoinsSections(t *testing.T) {
	src := Source{Sections: []string{"First part.", "  ", "Second part."}}
	if got := Resolve(src, nil); got != "First part. Second part." {
		t.Fatalf("expected joined sections, got %q", got)
	}
}

func TestResolveFallbackSentinel(t *testing.T) {
	if got := Resolve(Source{}, nil); got != Fallback {
		t.Fatalf("expected fallback sentinel, got %q", got)
	}
}

func TestResolveNormalizesSmartQuotes(t *testing.T) {
	got := Resolve(Source{Description: "The hero said “Halt”."}, nil)
	if got != `The hero said "Halt".` {
		t.Fatalf("expected normalized quotes, got %q", got)
	}
}

func TestRepairTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"balanced untouched", "<p>fine</p>", "<p>fine</p>"},
		{"unclosed paragraph", "<p>dangling", "<p>dangling</p>"},
		{"nested unclosed", "<p><strong>bold", "<p><strong>bold</p></strong>"},
		{"br needs no closer", "line one<br>line two", "line one<br>line two"},
		{"plain text untouched", "no markup here", "no markup here"},
		{"extra closer tolerated", "text</p>", "text</p>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RepairTags(tc.in); got != tc.want {
				t.Fatalf("RepairTags(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestEnhance(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text wrapped", "Simple text", "<p>Simple text</p>"},
		{"bold converted", "<p>a **bold** word</p>", "<p>a <strong>bold</strong> word</p>"},
		{"italic converted", "<p>an *italic* word</p>", "<p>an <em>italic</em> word</p>"},
		{"blank line to paragraph", "<p>one\n\ntwo</p>", "<p>one</p><p>two</p>"},
		{"newline to br", "<p>one\ntwo</p>", "<p>one<br>two</p>"},
		{"fallback passes through", Fallback, Fallback},
		{"existing html not rewrapped", "<div>kept</div>", "<div>kept</div>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Enhance(tc.in, "feature"); got != tc.want {
				t.Fatalf("Enhance(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestEnhanceIdempotent(t *testing.T) {
	once := Enhance("A **strong** start\n\nand more", "ability")
	twice := Enhance(once, "ability")
	if once != twice {
		t.Fatalf("Enhance is not idempotent: %q vs %q", once, twice)
	}
}

func TestValidateTransfer(t *testing.T) {
	long := strings.Repeat("words and more words ", 20)

	tests := []struct {
		name        string
		original    string
		transferred string
		want        bool
	}{
		{"both empty", "", "", true},
		{"lost content", "something", "", false},
		{"faithful copy", long, long, true},
		{"severe truncation", long, long[:len(long)/4], false},
		{"modest shrink ok", long, long[:len(long)*3/4], true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateTransfer(tc.original, tc.transferred); got != tc.want {
				t.Fatalf("ValidateTransfer = %t, want %t", got, tc.want)
			}
		})
	}
}

func TestStats(t *testing.T) {
	s := Stats("<p>Some **bold** text with <strong>markup</strong></p>")
	if !s.HasHTML || !s.HasMarkdown {
		t.Fatalf("expected html and markdown detection, got %+v", s)
	}
	if want := []string{"p", "strong"}; !reflect.DeepEqual(s.Tags, want) {
		t.Fatalf("tag inventory = %v, want %v", s.Tags, want)
	}
	if s.WordCount != 5 {
		t.Fatalf("word count = %d, want 5", s.WordCount)
	}

	empty := Stats("")
	if !empty.Empty || empty.Length != 0 {
		t.Fatalf("empty stats wrong: %+v", empty)
	}
}

func TestAudit(t *testing.T) {
	long := strings.Repeat("description body ", 10)

	report := Audit([]TransferRecord{
		{Name: "Good", Original: long, Transferred: long},
		{Name: "Empty", Original: "", Transferred: ""},
		{Name: "Truncated", Original: long, Transferred: long[:len(long)/4]},
		{Name: "Lost", Original: "had text", Transferred: ""},
	})

	if report.Total != 4 || report.Succeeded != 1 || report.Empty != 1 {
		t.Fatalf("unexpected tallies: %+v", report)
	}
	if report.Failed != 2 || report.Truncated != 1 {
		t.Fatalf("unexpected failure tallies: %+v", report)
	}
	if len(report.Issues) != 2 || report.Issues[0].Name != "Truncated" {
		t.Fatalf("unexpected issues: %+v", report.Issues)
	}
}
