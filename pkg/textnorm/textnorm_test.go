package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"smart quotes", "“Strike Now!”", `"Strike Now!"`},
		{"em dash and ellipsis", "Em—dash…text", "Em-dash...text"},
		{"en dash", "level 1–3", "level 1-3"},
		{"replacement character", "Text with�artifact", "Text withartifact"},
		{"international characters", "VА̀LM", "VLM"},
		{"control characters stripped", "line\x00one\x07", "lineone"},
		{"newlines and tabs survive", "a\n\tb", "a\n\tb"},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.input); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Em—dash…text",
		"“Strike Now!”",
		"plain text, nothing odd here.",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize is not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestSanitizeForLookup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"punctuation stripped", `"Strike Now!"`, "strike now"},
		{"british spelling", "Armour of Valour", "armor of valor"},
		{"mixed case spelling", "Well-Travelled", "well-traveled"},
		{"whitespace collapsed", "Psionic   Bolt", "psionic bolt"},
		{"smart quotes then strip", "‘Heal’", "heal"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeForLookup(tc.input); got != tc.want {
				t.Fatalf("SanitizeForLookup(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestValidateRoundTrip(t *testing.T) {
	if !ValidateRoundTrip("plain ascii") {
		t.Fatal("plain ascii should round-trip")
	}
	if !ValidateRoundTrip("newlines\nand\ttabs") {
		t.Fatal("whitespace should round-trip")
	}
	if !ValidateRoundTrip(Normalize("Em—dash…text")) {
		t.Fatal("normalized text should round-trip")
	}
}

func TestSummarize(t *testing.T) {
	original := "Em—dash…text"
	normalized := Normalize(original)
	sum := Summarize(original, normalized)

	if !sum.HasUnicodeIssues {
		t.Fatal("expected unicode issues to be flagged")
	}
	if !sum.JSONSafe {
		t.Fatal("normalized output should be JSON safe")
	}
	if len(sum.CharactersRemoved) == 0 {
		t.Fatal("expected the em dash and ellipsis to be reported as removed")
	}
}
