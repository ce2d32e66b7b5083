package lyrics

import (
	"fmt"
	"strings"
)

// Endpoints holds the base URL of each provider.
type Endpoints struct {
	LRCLib     string
	Genius     string
	SongLyrics string
	LyricsOVH  string
	ELyrics    string
	LyricsAZ   string
}

// KnownProviders lists every provider name accepted by NewProviders.
var KnownProviders = []string{
	ProviderLRCLib, ProviderGenius, ProviderSongLyrics, ProviderLyricsOVH, ProviderELyrics, ProviderLyricsAZ,
}

// NewProviders builds providers in the order named, all sharing client.
func NewProviders(names []string, client *Client, endpoints Endpoints) ([]Provider, error) {
	providers := make([]Provider, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if seen[name] {
			return nil, fmt.Errorf("provider %q listed twice", name)
		}
		seen[name] = true
		switch name {
		case ProviderLRCLib:
			providers = append(providers, NewLRCLib(client, endpoints.LRCLib))
		case ProviderGenius:
			providers = append(providers, NewGenius(client, endpoints.Genius))
		case ProviderSongLyrics:
			providers = append(providers, NewSongLyrics(client, endpoints.SongLyrics))
		case ProviderLyricsOVH:
			providers = append(providers, NewLyricsOVH(client, endpoints.LyricsOVH))
		case ProviderELyrics:
			providers = append(providers, NewELyrics(client, endpoints.ELyrics))
		case ProviderLyricsAZ:
			providers = append(providers, NewLyricsAZ(client, endpoints.LyricsAZ))
		default:
			return nil, fmt.Errorf("unknown provider %q (known: %s)", raw, strings.Join(KnownProviders, ", "))
		}
	}
	return providers, nil
}
