package reconcile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateVariantsOrderAndContents(t *testing.T) {
	rules := &Rules{}
	got := rules.GenerateVariants("The Giving Tree (feat. Rising Appalachia)")
	want := []string{
		"the giving tree (feat. rising appalachia)",
		"feat. rising appalachia",
		"the giving tree",
		"the giving tree (",
		"giving tree",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected variants:\n got %q\nwant %q", got, want)
	}
}

func TestGenerateVariantsAlwaysIncludesLowercasedInput(t *testing.T) {
	rules, err := DefaultRules()
	if err != nil {
		t.Fatalf("DefaultRules: %v", err)
	}
	for _, title := range []string{"Rumi", "!!!", "(Intro)", "Don't", "  Spaced  ", "[Air]"} {
		variants := rules.GenerateVariants(title)
		if len(variants) == 0 || variants[0] != strings.ToLower(title) {
			t.Errorf("expected %q first for %q, got %q", strings.ToLower(title), title, variants)
		}
		seen := map[string]bool{}
		for _, v := range variants {
			if seen[v] {
				t.Errorf("duplicate variant %q for %q", v, title)
			}
			seen[v] = true
		}
	}
	if got := (*Rules)(nil).GenerateVariants(""); len(got) != 1 || got[0] != "" {
		t.Fatalf("expected singleton empty variant, got %q", got)
	}
}

func TestGenerateVariantsAppliesSynonyms(t *testing.T) {
	rules, err := DefaultRules()
	if err != nil {
		t.Fatalf("DefaultRules: %v", err)
	}
	variants := rules.GenerateVariants("Giving Tree/Taking Boy")
	if !contains(variants, "talking boy") {
		t.Fatalf("expected synonym variant, got %q", variants)
	}
	variants = rules.GenerateVariants("Loose Your Mind")
	if !contains(variants, "lose your mind") {
		t.Fatalf("expected corrected spelling variant, got %q", variants)
	}
	variants = rules.GenerateVariants("Captain's Log Intro")
	if !contains(variants, "captains log intro") {
		t.Fatalf("expected apostrophe-free variant, got %q", variants)
	}
}

func TestResolveAlbum(t *testing.T) {
	rules, err := DefaultRules()
	if err != nil {
		t.Fatalf("DefaultRules: %v", err)
	}
	tests := map[string]string{
		"Youre It":     "You're IT!",
		"You're It!":   "You're IT!",
		"Ready or Not": "Ready or Not...",
		"Activate":     "Activate",
		"Unknown":      "Unknown",
	}
	for raw, want := range tests {
		if got := rules.ResolveAlbum(raw); got != want {
			t.Errorf("ResolveAlbum(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestParseRulesNormalizesAndValidates(t *testing.T) {
	data := []byte("\xEF\xBB\xBF" + `{
		"overrides": [{"album": " Activate ", "tracks": {" Let Go ": null, "Rumi": 29}}],
		"synonyms": [{"contains": [" Giving Tree "], "variant": " Talking Boy "}],
		"catalog_variants": [{"title": "AIR", "variants": ["[Air]"]}]
	}`)
	rules, err := ParseRules(data)
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	override := rules.Overrides[0]
	if override.Album != "Activate" {
		t.Fatalf("expected trimmed album, got %q", override.Album)
	}
	if track, ok := override.Tracks["let go"]; !ok || track != nil {
		t.Fatalf("expected explicit no-track entry for let go, got %v (present=%v)", track, ok)
	}
	if track := override.Tracks["rumi"]; track == nil || *track != 29 {
		t.Fatalf("expected rumi=29, got %v", track)
	}
	if rules.Synonyms[0].Variant != "talking boy" || rules.Synonyms[0].Contains[0] != "giving tree" {
		t.Fatalf("expected lowercased synonym, got %+v", rules.Synonyms[0])
	}
	if cv := rules.CatalogVariants[0]; cv.Match != MatchExact || cv.Title != "air" || cv.Variants[0] != "[air]" {
		t.Fatalf("expected defaulted exact match, got %+v", cv)
	}
}

func TestParseRulesRejectsBadEntries(t *testing.T) {
	cases := map[string]string{
		"bad match":      `{"catalog_variants": [{"match": "regex", "title": "x", "variants": ["y"]}]}`,
		"negative track": `{"overrides": [{"album": "A", "tracks": {"x": -1}}]}`,
		"missing album":  `{"overrides": [{"tracks": {"x": 1}}]}`,
		"empty alias":    `{"aliases": {"A": " "}}`,
		"empty synonym":  `{"synonyms": [{"contains": ["x"], "variant": ""}]}`,
		"not json":       `{`,
	}
	for name, doc := range cases {
		if _, err := ParseRules([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadRulesFromFileAndDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	if err := os.WriteFile(path, []byte(`{"aliases": {"Act": "Activate"}}`), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if rules.ResolveAlbum("Act") != "Activate" {
		t.Fatal("expected alias from file")
	}
	if rules.ResolveAlbum("Youre It") != "Youre It" {
		t.Fatal("expected file rules to replace the defaults")
	}

	defaults, err := LoadRules("")
	if err != nil {
		t.Fatalf("LoadRules default: %v", err)
	}
	if len(defaults.Overrides) == 0 {
		t.Fatal("expected embedded overrides")
	}

	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing rules file")
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
