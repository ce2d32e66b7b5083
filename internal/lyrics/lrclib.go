package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"lyricindex/internal/reconcile"
)

// ProviderLRCLib names the lrclib.net API provider.
const ProviderLRCLib = "lrclib"

// LRCLib queries the lrclib.net JSON API.
type LRCLib struct {
	client  *Client
	baseURL string
}

// Record is one lrclib track.
type Record struct {
	ID           int64   `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

func (r Record) usable() bool {
	return !r.Instrumental && strings.TrimSpace(r.PlainLyrics) != ""
}

// NewLRCLib returns a provider rooted at baseURL (for example
// https://lrclib.net).
func NewLRCLib(client *Client, baseURL string) *LRCLib {
	return &LRCLib{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *LRCLib) Name() string { return ProviderLRCLib }

// Fetch tries the exact signature lookup first and falls back to a search,
// accepting the first result whose title normalizes to the query's.
// Instrumental records count as not found.
func (p *LRCLib) Fetch(ctx context.Context, q Query) (Result, error) {
	record, err := p.Get(ctx, q.Artist, q.Title, q.Album)
	if errors.Is(err, ErrNotFound) {
		record, err = p.searchMatch(ctx, q)
	}
	if err != nil {
		return Result{}, err
	}
	if !record.usable() {
		return Result{}, ErrNotFound
	}
	return Result{
		Provider: ProviderLRCLib,
		URL:      p.recordURL(record.ID),
		Lyrics:   strings.TrimSpace(record.PlainLyrics),
	}, nil
}

// Get looks up a track by its artist, title, and album.
func (p *LRCLib) Get(ctx context.Context, artist, title, album string) (Record, error) {
	params := url.Values{}
	params.Set("artist_name", artist)
	params.Set("track_name", title)
	if album != "" {
		params.Set("album_name", album)
	}
	return p.getRecord(ctx, p.baseURL+"/api/get?"+params.Encode())
}

// GetByID looks up a track by its lrclib ID.
func (p *LRCLib) GetByID(ctx context.Context, id int64) (Record, error) {
	return p.getRecord(ctx, p.recordURL(id))
}

// Search runs a free search by title and artist.
func (p *LRCLib) Search(ctx context.Context, artist, title string) ([]Record, error) {
	params := url.Values{}
	params.Set("track_name", title)
	if artist != "" {
		params.Set("artist_name", artist)
	}
	body, err := p.client.Get(ctx, p.baseURL+"/api/search?"+params.Encode(), "application/json")
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode lrclib search: %w", err)
	}
	return records, nil
}

func (p *LRCLib) searchMatch(ctx context.Context, q Query) (Record, error) {
	records, err := p.Search(ctx, q.Artist, q.Title)
	if err != nil {
		return Record{}, err
	}
	want := reconcile.Normalize(q.Title)
	for _, record := range records {
		if record.usable() && reconcile.Normalize(record.TrackName) == want {
			return record, nil
		}
	}
	return Record{}, ErrNotFound
}

func (p *LRCLib) getRecord(ctx context.Context, endpoint string) (Record, error) {
	body, err := p.client.Get(ctx, endpoint, "application/json")
	if err != nil {
		return Record{}, err
	}
	var record Record
	if err := json.Unmarshal(body, &record); err != nil {
		return Record{}, fmt.Errorf("decode lrclib record: %w", err)
	}
	return record, nil
}

func (p *LRCLib) recordURL(id int64) string {
	return p.baseURL + "/api/get/" + strconv.FormatInt(id, 10)
}
