package foundry

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestNewActorDefaults(t *testing.T) {
	a := NewActor("Test Hero")

	if a.Type != "hero" || a.Img != DefaultImg {
		t.Fatalf("unexpected actor header: %+v", a)
	}
	if a.System.Stamina.Value != 20 {
		t.Fatalf("stamina default = %d, want 20", a.System.Stamina.Value)
	}
	if a.System.Combat.Save.Threshold != 6 || a.System.Combat.Size.Letter != "M" || a.System.Combat.Turns != 1 {
		t.Fatalf("unexpected combat defaults: %+v", a.System.Combat)
	}
	if a.System.Movement.Value != 6 || a.System.Movement.Types[0] != "walk" || a.System.Movement.Disengage != 1 {
		t.Fatalf("unexpected movement defaults: %+v", a.System.Movement)
	}
	if a.System.Recoveries.Value != 8 {
		t.Fatalf("recoveries default = %d, want 8", a.System.Recoveries.Value)
	}
}

func TestActorSerialization(t *testing.T) {
	a := NewActor("Serialized")
	a.SetCharacteristic("Might", 2)
	a.AddItem(NewFeatureItem("Grounded", "ancestryTrait", "grounded", "<p>Stable.</p>"))

	var buf bytes.Buffer
	if err := Write(&buf, a); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	checks := map[string]string{
		"system.characteristics.might.value": "2",
		"system.combat.size.letter":          "M",
		"system.biography.height.units":      "in",
		"system.biography.height.value":      "",
		"system.hero.preferredKit":           "",
		"items.0.name":                       "Grounded",
		"items.0._stats.systemId":            SystemID,
		"items.0._stats.coreVersion":         CoreVersion,
	}
	for path, want := range checks {
		got := gjson.Get(out, path)
		if want == "" {
			if got.Type != gjson.Null {
				t.Errorf("%s = %v, want null", path, got)
			}
		} else if got.String() != want {
			t.Errorf("%s = %q, want %q", path, got.String(), want)
		}
	}

	// Empty lists must serialize as [] not null.
	if !strings.Contains(out, `"skills": []`) {
		t.Error("hero skills did not serialize as an empty array")
	}
}

func TestActorRoundTrip(t *testing.T) {
	a := NewActor("Round Trip")
	a.AddItem(NewFeatureItem("Feature A", "feature", "feat-a", "text"))

	raw, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	var back Actor
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back.Name != "Round Trip" || len(back.Items) != 1 || back.Items[0].Name() != "Feature A" {
		t.Fatalf("round trip lost data: %+v", back)
	}
}

func TestSetCharacteristicIgnoresUnknown(t *testing.T) {
	a := NewActor("X")
	a.SetCharacteristic("luck", 9)
	if a.System.Characteristics != (Characteristics{}) {
		t.Fatalf("unknown characteristic mutated the block: %+v", a.System.Characteristics)
	}
	a.SetCharacteristic("REASON", 3)
	if a.Characteristic("reason") != 3 {
		t.Fatal("case-insensitive characteristic set failed")
	}
}

func TestAddItemSuppressesDuplicates(t *testing.T) {
	a := NewActor("Dedup")
	first := NewFeatureItem("Grounded", "ancestryTrait", "grounded", "one")
	dup := NewFeatureItem("Grounded", "ancestryTrait", "grounded", "two")
	other := NewFeatureItem("Grounded", "feature", "grounded", "three")

	if !a.AddItem(first) {
		t.Fatal("first add rejected")
	}
	if a.AddItem(dup) {
		t.Fatal("duplicate name+type accepted")
	}
	if !a.AddItem(other) {
		t.Fatal("same name different type rejected")
	}
	if len(a.Items) != 2 {
		t.Fatalf("item count = %d, want 2", len(a.Items))
	}
	// First occurrence wins.
	if a.Items[0].Get("system.description.value").Str != "one" {
		t.Fatal("duplicate replaced the first occurrence")
	}
}

func TestFilterItems(t *testing.T) {
	a := NewActor("Filter")
	a.AddItem(NewFeatureItem("Keep", "feature", "", ""))
	a.AddItem(NewFeatureItem("Language Choice", "feature", "", ""))
	a.FilterItems(func(it *Item) bool { return !strings.Contains(it.Name(), "Language") })
	if len(a.Items) != 1 || a.Items[0].Name() != "Keep" {
		t.Fatalf("unexpected items after filter: %d", len(a.Items))
	}
}

func TestAbilityItemShape(t *testing.T) {
	it := NewAbilityItem(AbilityFields{
		Name:            "Mind Spike",
		DSID:            "ab-1",
		Description:     "<p>Psychic lance.</p>",
		EffectBefore:    "Psychic lance.",
		ActionType:      "main",
		Characteristics: []string{"Reason"},
		SourceLevel:     1,
		Selected:        true,
	})

	checks := map[string]string{
		"type":                             "ability",
		"system.type":                      "main",
		"system.power.roll.formula":        "@chr",
		"system.distance.type":             "melee",
		"system.distance.primary":          "1",
		"system.target.type":               "creature",
		"system.effect.before":             "Psychic lance.",
		"system._source_level":             "1",
		"system._is_selected":              "true",
		"system.power.roll.characteristics": `["Reason"]`,
	}
	for path, want := range checks {
		if got := it.Get(path).String(); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
	if it.Get("system.distance.secondary").Type != gjson.Null {
		t.Error("distance.secondary should be null")
	}
}

func TestItemSetAndAccessors(t *testing.T) {
	it := NewItem([]byte(`{"name":"Heal","type":"feature","system":{"_dsid":"heal","type":"Triggered Action"}}`))
	if it == nil {
		t.Fatal("valid item rejected")
	}
	if it.DSID() != "heal" || it.SystemType() != "Triggered Action" {
		t.Fatalf("accessors wrong: %q %q", it.DSID(), it.SystemType())
	}
	if err := it.Set("type", "ability"); err != nil {
		t.Fatal(err)
	}
	if it.Type() != "ability" {
		t.Fatal("Set did not apply")
	}

	if NewItem([]byte("{broken")) != nil {
		t.Fatal("invalid JSON accepted")
	}
}
