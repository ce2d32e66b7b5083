package reconcile

import (
	"lyricindex/internal/textutil"
)

// NoTrackNumber marks a title that is known but has no track number, as
// opposed to a title that is not in the catalog at all.
const NoTrackNumber = 0

type albumKey struct {
	name       string
	normalized string
}

// Catalog maps album -> title variant -> track number. It is read-only once
// built.
type Catalog struct {
	rules     *Rules
	albums    map[string]map[string]int
	order     []albumKey
	tracks    map[string][]Track
	conflicts []Conflict
}

// ResolveAlbum applies the catalog's album aliases.
func (c *Catalog) ResolveAlbum(raw string) string {
	return c.rules.ResolveAlbum(raw)
}

// Variants returns the lookup keys generated for title.
func (c *Catalog) Variants(title string) []string {
	return c.rules.GenerateVariants(title)
}

// TrackNumber resolves the track number of title on album.
//
// The album alias is applied first. When the resolved album is a catalog key
// the title's variants are tried in order under it; otherwise every album
// whose normalized name matches is tried, in name order. The first variant
// present decides the result, so an entry recorded without a track number
// yields ok == false and ends the search.
func (c *Catalog) TrackNumber(album, title string) (int, bool) {
	album = c.ResolveAlbum(album)
	variants := c.Variants(title)

	if titles, ok := c.albums[album]; ok {
		return firstMatch(titles, variants)
	}

	target := Normalize(album)
	for _, key := range c.order {
		if key.normalized != target {
			continue
		}
		if number, found := lookupVariants(c.albums[key.name], variants); found {
			return number, number != NoTrackNumber
		}
	}
	return 0, false
}

func firstMatch(titles map[string]int, variants []string) (int, bool) {
	number, found := lookupVariants(titles, variants)
	if !found || number == NoTrackNumber {
		return 0, false
	}
	return number, true
}

func lookupVariants(titles map[string]int, variants []string) (int, bool) {
	for _, variant := range variants {
		if number, ok := titles[variant]; ok {
			return number, true
		}
	}
	return 0, false
}

// Albums lists the catalog's album names in sorted order.
func (c *Catalog) Albums() []string {
	names := make([]string, len(c.order))
	for i, key := range c.order {
		names[i] = key.name
	}
	return names
}

// Tracks returns the ground-truth tracks of album ordered by track number.
func (c *Catalog) Tracks(album string) []Track {
	list := c.tracks[c.ResolveAlbum(album)]
	out := make([]Track, len(list))
	copy(out, list)
	return out
}

// Conflicts reports equal-priority keys that were claimed twice during Build.
func (c *Catalog) Conflicts() []Conflict {
	out := make([]Conflict, len(c.conflicts))
	copy(out, c.conflicts)
	return out
}

// Suggest returns the ground-truth track whose normalized title is closest to
// title by edit distance. It searches the resolved album when the catalog has
// it and every album otherwise. It is a diagnostic aid and never feeds
// TrackNumber.
func (c *Catalog) Suggest(album, title string) (Track, int, bool) {
	var candidates []Track
	if list, ok := c.tracks[c.ResolveAlbum(album)]; ok {
		candidates = list
	} else {
		for _, key := range c.order {
			candidates = append(candidates, c.tracks[key.name]...)
		}
	}
	if len(candidates) == 0 {
		return Track{}, 0, false
	}

	names := make([]string, len(candidates))
	for i, track := range candidates {
		names[i] = Normalize(track.Title)
	}
	idx, distance := textutil.Closest(Normalize(title), names)
	if idx < 0 {
		return Track{}, 0, false
	}
	return candidates[idx], distance, true
}
