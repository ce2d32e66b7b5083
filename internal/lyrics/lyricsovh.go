package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// ProviderLyricsOVH names the lyrics.ovh API provider.
const ProviderLyricsOVH = "lyricsovh"

// LyricsOVH queries the lyrics.ovh JSON API: baseURL/v1/{artist}/{title}.
type LyricsOVH struct {
	client  *Client
	baseURL string
}

type ovhResponse struct {
	Lyrics string `json:"lyrics"`
	Error  string `json:"error"`
}

// NewLyricsOVH returns a provider rooted at baseURL (for example
// https://api.lyrics.ovh).
func NewLyricsOVH(client *Client, baseURL string) *LyricsOVH {
	return &LyricsOVH{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *LyricsOVH) Name() string { return ProviderLyricsOVH }

// Fetch treats an empty lyrics field or an error payload as not found.
func (p *LyricsOVH) Fetch(ctx context.Context, q Query) (Result, error) {
	target := p.URL(q)
	body, err := p.client.Get(ctx, target, "application/json")
	if err != nil {
		return Result{}, err
	}
	var resp ovhResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Result{}, fmt.Errorf("decode lyrics.ovh response: %w", err)
	}
	text := cleanText(resp.Lyrics)
	if resp.Error != "" || text == "" {
		return Result{}, ErrNotFound
	}
	return Result{Provider: ProviderLyricsOVH, URL: target, Lyrics: text}, nil
}

// URL returns the API endpoint for q, with artist and title path-escaped.
func (p *LyricsOVH) URL(q Query) string {
	return fmt.Sprintf("%s/v1/%s/%s", p.baseURL, url.PathEscape(q.Artist), url.PathEscape(q.Title))
}
