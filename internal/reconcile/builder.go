package reconcile

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Track is one ground-truth row: an album, a title, and its 1-based track
// number. Line is the source line and only used in error messages.
type Track struct {
	Album  string
	Title  string
	Number int
	Line   int
}

// Conflict records a catalog key claimed by two entries of equal priority
// with different track numbers. The first registration is kept.
type Conflict struct {
	Album   string
	Variant string
	Kept    int
	Dropped int
}

// Registration priorities. A higher priority replaces a lower one.
const (
	priorityDerived = iota + 1
	priorityLiteral
	priorityOverride
)

type entry struct {
	number   int
	priority int
}

// ErrDanglingAlias reports rules whose album aliases name an album the
// ground truth does not contain.
var ErrDanglingAlias = errors.New("album aliases point at albums missing from the catalog")

// Builder accumulates ground-truth tracks and produces an immutable Catalog.
type Builder struct {
	rules  *Rules
	tracks []Track
}

// NewBuilder returns a builder applying rules.
func NewBuilder(rules *Rules) *Builder {
	return &Builder{rules: rules}
}

// Add queues ground-truth tracks for the next Build.
func (b *Builder) Add(tracks ...Track) {
	b.tracks = append(b.tracks, tracks...)
}

// Build validates the queued tracks and assembles the catalog. Malformed
// rows, duplicate track numbers within an album, and aliases pointing at an
// album the catalog does not contain are rejected.
func (b *Builder) Build() (*Catalog, error) {
	if b.rules == nil {
		return nil, errNoRules
	}
	st := &buildState{
		albums:  make(map[string]map[string]entry),
		numbers: make(map[string]map[int]Track),
		tracks:  make(map[string][]Track),
	}

	for _, track := range b.tracks {
		if err := st.addTrack(b.rules, track); err != nil {
			return nil, err
		}
	}
	for _, override := range b.rules.Overrides {
		st.addOverride(b.rules.ResolveAlbum(override.Album), override)
	}
	if err := st.checkAliases(b.rules.Aliases); err != nil {
		return nil, err
	}
	return st.snapshot(b.rules), nil
}

type buildState struct {
	albums    map[string]map[string]entry
	numbers   map[string]map[int]Track
	tracks    map[string][]Track
	conflicts []Conflict
}

func (st *buildState) addTrack(rules *Rules, track Track) error {
	album := strings.TrimSpace(track.Album)
	title := strings.TrimSpace(track.Title)
	switch {
	case album == "":
		return fmt.Errorf("line %d: album is empty", track.Line)
	case title == "":
		return fmt.Errorf("line %d: song title is empty", track.Line)
	case track.Number <= 0:
		return fmt.Errorf("line %d: track number %d for %q must be positive", track.Line, track.Number, title)
	}
	album = rules.ResolveAlbum(album)

	if st.numbers[album] == nil {
		st.numbers[album] = make(map[int]Track)
	}
	if prior, dup := st.numbers[album][track.Number]; dup {
		return fmt.Errorf("line %d: album %q track %d already used by %q (line %d)",
			track.Line, album, track.Number, prior.Title, prior.Line)
	}
	track.Album, track.Title = album, title
	st.numbers[album][track.Number] = track
	st.tracks[album] = append(st.tracks[album], track)

	lower := strings.ToLower(title)
	st.set(album, lower, track.Number, priorityLiteral)
	for _, variant := range rules.GenerateVariants(title) {
		st.set(album, variant, track.Number, priorityDerived)
	}
	for _, extra := range rules.CatalogVariants {
		if !extra.matches(lower) {
			continue
		}
		for _, variant := range extra.Variants {
			st.set(album, variant, track.Number, priorityDerived)
		}
	}
	return nil
}

func (st *buildState) addOverride(album string, override AlbumOverride) {
	for _, title := range override.sortedTitles() {
		number := NoTrackNumber
		if track := override.Tracks[title]; track != nil {
			number = *track
		}
		st.set(album, title, number, priorityOverride)
		if override.ParenthesizedVariants && number != NoTrackNumber {
			st.set(album, "("+title+")", number, priorityOverride)
		}
	}
}

func (st *buildState) set(album, variant string, number, priority int) {
	titles := st.albums[album]
	if titles == nil {
		titles = make(map[string]entry)
		st.albums[album] = titles
	}
	existing, ok := titles[variant]
	switch {
	case !ok || priority > existing.priority:
		titles[variant] = entry{number: number, priority: priority}
	case priority == existing.priority && number != existing.number:
		st.conflicts = append(st.conflicts, Conflict{
			Album:   album,
			Variant: variant,
			Kept:    existing.number,
			Dropped: number,
		})
	}
}

func (st *buildState) checkAliases(aliases map[string]string) error {
	var missing []string
	for from, to := range aliases {
		if _, ok := st.albums[to]; !ok {
			missing = append(missing, fmt.Sprintf("%q -> %q", from, to))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s", ErrDanglingAlias, strings.Join(missing, ", "))
}

func (st *buildState) snapshot(rules *Rules) *Catalog {
	catalog := &Catalog{
		rules:     rules,
		albums:    make(map[string]map[string]int, len(st.albums)),
		tracks:    st.tracks,
		conflicts: st.conflicts,
	}
	for album, titles := range st.albums {
		flat := make(map[string]int, len(titles))
		for variant, e := range titles {
			flat[variant] = e.number
		}
		catalog.albums[album] = flat
		catalog.order = append(catalog.order, albumKey{name: album, normalized: Normalize(album)})
	}
	sort.Slice(catalog.order, func(i, j int) bool {
		return catalog.order[i].name < catalog.order[j].name
	})
	for album := range catalog.tracks {
		list := catalog.tracks[album]
		sort.Slice(list, func(i, j int) bool { return list[i].Number < list[j].Number })
	}
	return catalog
}
