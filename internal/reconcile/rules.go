package reconcile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

//go:embed default_rules.json
var defaultRules []byte

// Match kinds for catalog variant rules.
const (
	MatchExact    = "exact"
	MatchContains = "contains"
)

// Rules holds every hand-authored exception used while building and
// querying a catalog.
type Rules struct {
	// Aliases maps alternate or misspelled album names to the canonical name.
	Aliases map[string]string `json:"aliases"`
	// Overrides pin titles to track numbers (or to "no track number") per album.
	Overrides []AlbumOverride `json:"overrides"`
	// Synonyms add cross-wired variants to any title containing one of the
	// listed fragments, on both the build and the query side.
	Synonyms []Synonym `json:"synonyms"`
	// CatalogVariants register extra keys for ground-truth titles at build time.
	CatalogVariants []CatalogVariant `json:"catalog_variants"`
}

// AlbumOverride lists manual title entries for one album. A nil track means
// the title is known but intentionally has no track number.
type AlbumOverride struct {
	Album string `json:"album"`
	// ParenthesizedVariants also registers "(title)" for entries that carry a
	// concrete track number.
	ParenthesizedVariants bool            `json:"parenthesized_variants"`
	Tracks                map[string]*int `json:"tracks"`
}

// Synonym adds Variant to the variant set of any title containing one of
// Contains.
type Synonym struct {
	Contains []string `json:"contains"`
	Variant  string   `json:"variant"`
}

// CatalogVariant adds Variants under the album of every ground-truth title
// that equals (MatchExact) or contains (MatchContains) Title.
type CatalogVariant struct {
	Match    string   `json:"match"`
	Title    string   `json:"title"`
	Variants []string `json:"variants"`
}

// DefaultRules returns the rules shipped with the binary.
func DefaultRules() (*Rules, error) {
	rules, err := ParseRules(defaultRules)
	if err != nil {
		return nil, fmt.Errorf("parse embedded rules: %w", err)
	}
	return rules, nil
}

// LoadRules reads a rules file. An empty path yields the embedded defaults.
func LoadRules(path string) (*Rules, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRules()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", path, err)
	}
	return rules, nil
}

// ParseRules decodes and normalizes a rules document.
func ParseRules(data []byte) (*Rules, error) {
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	rules := &Rules{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, rules); err != nil {
			return nil, err
		}
	}
	if err := rules.normalize(); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *Rules) normalize() error {
	aliases := make(map[string]string, len(r.Aliases))
	for from, to := range r.Aliases {
		to = strings.TrimSpace(to)
		if to == "" {
			return fmt.Errorf("aliases: %q maps to an empty album", from)
		}
		aliases[from] = to
	}
	r.Aliases = aliases

	for i := range r.Overrides {
		o := &r.Overrides[i]
		o.Album = strings.TrimSpace(o.Album)
		if o.Album == "" {
			return fmt.Errorf("overrides[%d]: album is required", i)
		}
		tracks := make(map[string]*int, len(o.Tracks))
		for title, track := range o.Tracks {
			key := strings.ToLower(strings.TrimSpace(title))
			if key == "" {
				return fmt.Errorf("overrides[%d] (%s): empty title", i, o.Album)
			}
			if track != nil && *track <= 0 {
				return fmt.Errorf("overrides[%d] (%s): %q has non-positive track %d", i, o.Album, title, *track)
			}
			tracks[key] = track
		}
		o.Tracks = tracks
	}

	for i := range r.Synonyms {
		s := &r.Synonyms[i]
		s.Variant = strings.ToLower(strings.TrimSpace(s.Variant))
		if s.Variant == "" {
			return fmt.Errorf("synonyms[%d]: variant is required", i)
		}
		s.Contains = lowerAll(s.Contains)
		if len(s.Contains) == 0 {
			return fmt.Errorf("synonyms[%d] (%s): contains must list at least one fragment", i, s.Variant)
		}
	}

	for i := range r.CatalogVariants {
		v := &r.CatalogVariants[i]
		v.Match = strings.ToLower(strings.TrimSpace(v.Match))
		if v.Match == "" {
			v.Match = MatchExact
		}
		if v.Match != MatchExact && v.Match != MatchContains {
			return fmt.Errorf("catalog_variants[%d]: unsupported match %q", i, v.Match)
		}
		v.Title = strings.ToLower(strings.TrimSpace(v.Title))
		if v.Title == "" {
			return fmt.Errorf("catalog_variants[%d]: title is required", i)
		}
		v.Variants = lowerAll(v.Variants)
	}
	return nil
}

// ResolveAlbum maps raw to its canonical album name, or returns raw unchanged.
func (r *Rules) ResolveAlbum(raw string) string {
	if r == nil {
		return raw
	}
	if canonical, ok := r.Aliases[raw]; ok {
		return canonical
	}
	return raw
}

// GenerateVariants returns the keys considered equivalent to title, in a
// fixed order: the lowercased title, the parenthesized text on its own, the
// title without parentheses, without brackets, without a feature clause,
// without apostrophes, without exclamation marks, Normalize(title), then
// matching synonyms. Duplicates and empty derived keys are dropped; the
// lowercased title is always first.
func (r *Rules) GenerateVariants(title string) []string {
	lower := strings.ToLower(title)
	set := newVariantSet(lower)

	if m := parenInner.FindStringSubmatch(lower); m != nil {
		set.add(m[1])
	}
	set.add(parenGroup.ReplaceAllString(lower, ""))
	set.add(bracketGroup.ReplaceAllString(lower, ""))
	set.add(featClause.ReplaceAllString(lower, ""))
	set.add(apostrophes.Replace(lower))
	set.add(strings.ReplaceAll(lower, "!", ""))
	set.add(Normalize(title))

	if r != nil {
		for _, syn := range r.Synonyms {
			if syn.matches(lower) {
				set.add(syn.Variant)
			}
		}
	}
	return set.items
}

func (s Synonym) matches(lowerTitle string) bool {
	for _, fragment := range s.Contains {
		if strings.Contains(lowerTitle, fragment) {
			return true
		}
	}
	return false
}

func (v CatalogVariant) matches(lowerTitle string) bool {
	if v.Match == MatchContains {
		return strings.Contains(lowerTitle, v.Title)
	}
	return lowerTitle == v.Title
}

// sortedTitles returns the override titles in a stable order.
func (o AlbumOverride) sortedTitles() []string {
	titles := make([]string, 0, len(o.Tracks))
	for title := range o.Tracks {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

type variantSet struct {
	items []string
	seen  map[string]struct{}
}

func newVariantSet(first string) *variantSet {
	return &variantSet{
		items: []string{first},
		seen:  map[string]struct{}{first: {}},
	}
}

func (s *variantSet) add(value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if _, ok := s.seen[value]; ok {
		return
	}
	s.seen[value] = struct{}{}
	s.items = append(s.items, value)
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.ToLower(strings.TrimSpace(value))
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}

var errNoRules = errors.New("rules are required")
