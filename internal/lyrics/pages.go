package lyrics

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page provider names.
const (
	ProviderGenius     = "genius"
	ProviderSongLyrics = "songlyrics"
	ProviderELyrics    = "elyrics"
	ProviderLyricsAZ   = "lyricsaz"
)

var (
	urlUnsafe  = regexp.MustCompile(`[^a-z0-9\-]`)
	dashRuns   = regexp.MustCompile(`-+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// PageProvider scrapes lyrics from an HTML page whose URL is derived from the
// query, or taken from Query.KnownURL when set.
type PageProvider struct {
	name     string
	client   *Client
	buildURL func(Query) string
	extract  func(*goquery.Document) string
}

func (p *PageProvider) Name() string { return p.name }

// URL returns the page fetched for q.
func (p *PageProvider) URL(q Query) string {
	if q.KnownURL != "" {
		return q.KnownURL
	}
	return p.buildURL(q)
}

func (p *PageProvider) Fetch(ctx context.Context, q Query) (Result, error) {
	target := p.URL(q)
	body, err := p.client.Get(ctx, target, "text/html")
	if err != nil {
		return Result{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("parse %s page: %w", p.name, err)
	}
	text := cleanText(p.extract(doc))
	if text == "" {
		return Result{}, ErrNotFound
	}
	return Result{Provider: p.name, URL: target, Lyrics: text}, nil
}

// NewGenius scrapes genius.com style pages: baseURL/Artist-song-title-lyrics.
func NewGenius(client *Client, baseURL string) *PageProvider {
	baseURL = strings.TrimRight(baseURL, "/")
	return &PageProvider{
		name:   ProviderGenius,
		client: client,
		buildURL: func(q Query) string {
			artist := strings.ReplaceAll(q.Artist, " ", "")
			return fmt.Sprintf("%s/%s-%s-lyrics", baseURL, artist, urlSlug(q.Title))
		},
		extract: extractGenius,
	}
}

// NewSongLyrics scrapes songlyrics.com style pages:
// baseURL/artist/song-title-lyrics/.
func NewSongLyrics(client *Client, baseURL string) *PageProvider {
	baseURL = strings.TrimRight(baseURL, "/")
	return &PageProvider{
		name:   ProviderSongLyrics,
		client: client,
		buildURL: func(q Query) string {
			artist := strings.ReplaceAll(strings.ToLower(q.Artist), " ", "-")
			return fmt.Sprintf("%s/%s/%s-lyrics/", baseURL, artist, urlSlug(q.Title))
		},
		extract: extractSongLyrics,
	}
}

// NewELyrics scrapes elyrics.net style pages:
// baseURL/read/a/artist-lyrics/song-title-lyrics.html.
func NewELyrics(client *Client, baseURL string) *PageProvider {
	baseURL = strings.TrimRight(baseURL, "/")
	return &PageProvider{
		name:   ProviderELyrics,
		client: client,
		buildURL: func(q Query) string {
			artist := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(q.Artist)), " ", "-")
			initial := "_"
			if artist != "" {
				initial = artist[:1]
			}
			return fmt.Sprintf("%s/read/%s/%s-lyrics/%s-lyrics.html", baseURL, initial, artist, urlSlug(q.Title))
		},
		extract: extractELyrics,
	}
}

// NewLyricsAZ scrapes lyrics.az style pages, which are grouped by album:
// baseURL/artist/album/song-title.html.
func NewLyricsAZ(client *Client, baseURL string) *PageProvider {
	baseURL = strings.TrimRight(baseURL, "/")
	return &PageProvider{
		name:   ProviderLyricsAZ,
		client: client,
		buildURL: func(q Query) string {
			return fmt.Sprintf("%s/%s/%s/%s.html", baseURL, urlSlug(q.Artist), urlSlug(q.Album), urlSlug(q.Title))
		},
		extract: extractLyricsAZ,
	}
}

func extractGenius(doc *goquery.Document) string {
	var parts []string
	doc.Find(`[data-lyrics-container="true"]`).Each(func(_ int, s *goquery.Selection) {
		s.Find(`[data-exclude-from-selection="true"]`).Remove()
		s.Find("script").Remove()
		s.Find("br").ReplaceWithHtml("\n")
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}

func extractSongLyrics(doc *goquery.Document) string {
	s := doc.Find("p#songLyricsDiv").First()
	s.Find("br").ReplaceWithHtml("\n")
	text := strings.TrimSpace(s.Text())
	// The site renders a placeholder paragraph for songs it does not carry.
	if strings.HasPrefix(strings.ToLower(text), "sorry") {
		return ""
	}
	return text
}

// The lyrics sits in the second div.ly; the first holds the song header.
func extractELyrics(doc *goquery.Document) string {
	s := doc.Find("div.ly").Eq(1)
	s.Find("br").ReplaceWithHtml("\n")
	return rejectPlaceholder(s.Text())
}

func extractLyricsAZ(doc *goquery.Document) string {
	s := doc.Find("div.lyric-body").First()
	s.Find("script").Remove()
	s.Find("br").ReplaceWithHtml("\n")
	return rejectPlaceholder(s.Text())
}

// rejectPlaceholder drops "not found" style notices some sites render in
// place of lyrics.
func rejectPlaceholder(text string) string {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)
	if strings.Contains(lower, "not found") || strings.Contains(lower, "no lyrics") {
		return ""
	}
	return text
}

// urlSlug lowercases title, turns spaces into dashes, and drops anything
// that is not a letter, digit, or dash.
func urlSlug(title string) string {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "-")
	slug = urlUnsafe.ReplaceAllString(slug, "")
	slug = dashRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t ")
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}
