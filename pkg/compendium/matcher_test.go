package compendium

import (
	"fmt"
	"testing"
)

func mkEntry(dsid, id, name, typ, category string) *Entry {
	raw := fmt.Sprintf(`{"_id":%q,"name":%q,"type":%q,"system":{"_dsid":%q,"category":%q}}`,
		id, name, typ, dsid, category)
	return NewEntry([]byte(raw))
}

func mkCatalog(entries ...*Entry) *Catalog {
	c := NewCatalog()
	for _, e := range entries {
		c.Add(e)
	}
	return c
}

func TestFindExactNameAndType(t *testing.T) {
	c := mkCatalog(
		mkEntry("strike-now", "id1", "Strike Now!", "ability", ""),
		mkEntry("strike-now-feature", "id2", "Strike Now!", "feature", ""),
	)

	got := c.Find("Strike Now!", "ability")
	if got == nil || got.DSID != "strike-now" {
		t.Fatalf("expected ability entry, got %+v", got)
	}
}

func TestFindSubstringWithType(t *testing.T) {
	c := mkCatalog(
		mkEntry("greater-heal", "id1", "Greater Heal", "ability", ""),
	)

	got := c.Find("Heal", "ability")
	if got == nil || got.DSID != "greater-heal" {
		t.Fatalf("expected substring match, got %+v", got)
	}
}

func TestFindNameIgnoringType(t *testing.T) {
	c := mkCatalog(
		mkEntry("grounded", "id1", "Grounded", "ancestryTrait", ""),
	)

	got := c.Find("Grounded", "feature")
	if got == nil || got.DSID != "grounded" {
		t.Fatalf("expected cross-type name match, got %+v", got)
	}
}

func TestFindQuotedName(t *testing.T) {
	c := mkCatalog(
		mkEntry("bring-it", "id1", `"Bring It!"`, "ability", ""),
	)

	got := c.Find("Bring It!", "ability")
	if got == nil || got.DSID != "bring-it" {
		t.Fatalf("expected quoted-name match, got %+v", got)
	}
}

func TestFindSanitizedKey(t *testing.T) {
	c := mkCatalog(
		mkEntry("armour-of-valour", "id1", "Armour of Valour", "feature", ""),
	)

	got := c.Find("Armor of Valor", "")
	if got == nil || got.DSID != "armour-of-valour" {
		t.Fatalf("expected sanitized-key match, got %+v", got)
	}
}

func TestFindSanitizedDSIDKey(t *testing.T) {
	// The lookup keys are computed when the entry is built; the match must
	// work against the dsid key as well as the name key.
	c := mkCatalog(
		mkEntry("glowing-eyes", "id1", "Luminous Gaze", "ability", ""),
	)

	got := c.Find("Glowing-Eyes!", "")
	if got == nil || got.DSID != "glowing-eyes" {
		t.Fatalf("expected dsid-key match, got %+v", got)
	}
}

func TestFindKnownAlias(t *testing.T) {
	c := mkCatalog(
		mkEntry("clarity-and-strain", "id1", "Clarity and Strain", "feature", ""),
	)

	got := c.Find("Clarity", "feature")
	if got == nil || got.DSID != "clarity-and-strain" {
		t.Fatalf("expected alias match, got %+v", got)
	}
}

func TestFindMissReturnsNil(t *testing.T) {
	c := mkCatalog(mkEntry("heal", "id1", "Heal", "ability", ""))
	if got := c.Find("Nonexistent Power", "ability"); got != nil {
		t.Fatalf("expected nil on total miss, got %+v", got)
	}
}

func TestFindDeterministicTieBreak(t *testing.T) {
	// Two entries satisfy the same loose tier; the smaller dsid must win
	// every time.
	c := mkCatalog(
		mkEntry("zeta-strike", "id1", "Mighty Strike of Power", "ability", ""),
		mkEntry("alpha-strike", "id2", "Mighty Strike of Glory", "ability", ""),
	)

	first := c.Find("Mighty Strike", "ability")
	for i := 0; i < 10; i++ {
		if got := c.Find("Mighty Strike", "ability"); got != first {
			t.Fatal("Find is not deterministic across repeated calls")
		}
	}
	if first.DSID != "alpha-strike" {
		t.Fatalf("expected sorted tie-break to pick alpha-strike, got %s", first.DSID)
	}
}

func TestHeroicDuplicatePreference(t *testing.T) {
	c := NewCatalog()
	c.Add(mkEntry("heal", "id1", "Heal", "ability", "heroic"))
	c.Add(mkEntry("heal", "id2", "Heal", "ability", ""))

	got := c.Get("heal")
	if got == nil || got.ID != "id2" {
		t.Fatalf("expected standard variant to replace heroic, got %+v", got)
	}

	// Once a standard variant is in, a heroic one must not displace it.
	c.Add(mkEntry("heal", "id3", "Heal", "ability", "heroic"))
	if got := c.Get("heal"); got.ID != "id2" {
		t.Fatalf("heroic variant displaced standard one: %+v", got)
	}
}

func TestResolvePoolRef(t *testing.T) {
	byID := mkEntry("glowing-eyes", "AbCdEf123", "Glowing Eyes", "ability", "")
	bySource := NewEntry([]byte(`{"_id":"zz9","name":"Psionic Bolt","type":"ability",
		"system":{"_dsid":"psionic-bolt"},
		"flags":{"draw-steel":{"sourceId":"Compendium.draw-steel.abilities.Item.OtherId"}}}`))

	c := mkCatalog(byID, bySource)

	if got := c.ResolvePoolRef("Compendium.draw-steel.abilities.Item.AbCdEf123"); got != byID {
		t.Fatalf("uuid tail lookup failed: %+v", got)
	}
	if got := c.ResolvePoolRef("Compendium.draw-steel.abilities.Item.OtherId"); got == nil || got.DSID != "psionic-bolt" {
		t.Fatalf("source-id lookup failed: %+v", got)
	}
	if got := c.ResolvePoolRef("Compendium.draw-steel.abilities.Item.Missing"); got != nil {
		t.Fatalf("expected nil for unknown ref, got %+v", got)
	}
}

func TestEntryLowercasesAbilityActionType(t *testing.T) {
	e := NewEntry([]byte(`{"_id":"a1","name":"Defend","type":"ability","system":{"_dsid":"defend","type":"Maneuver"}}`))
	if got := e.Get("system.type").Str; got != "maneuver" {
		t.Fatalf("expected lowercased action type, got %q", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	e := mkEntry("heal", "id1", "Heal", "ability", "")
	clone := e.Clone()
	if err := clone.Set("type", "feature"); err != nil {
		t.Fatal(err)
	}
	if e.Get("type").Str != "ability" {
		t.Fatal("mutating a clone changed the original entry")
	}
	if clone.Get("type").Str != "feature" {
		t.Fatal("clone mutation did not stick")
	}
}
