package lyrics

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that a provider has no lyrics for a query. It is an
// expected outcome; the chain moves on to the next provider.
var ErrNotFound = errors.New("lyrics not found")

// Query describes the song to look up.
type Query struct {
	Artist string
	Album  string
	Title  string
	// KnownURL is a page previously confirmed to hold the lyrics. Page
	// providers fetch it instead of deriving a URL.
	KnownURL string
}

// Result is a successful lookup.
type Result struct {
	Provider string
	URL      string
	Lyrics   string
}

// Provider fetches lyrics from one source.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, q Query) (Result, error)
}

// Attempt outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Attempt is one provider call, as recorded in the fetch ledger.
type Attempt struct {
	RunID    string
	Provider string
	Album    string
	Title    string
	URL      string
	Outcome  string
	Detail   string
	At       time.Time
}

// URLStore remembers which page served a song's lyrics and records every
// provider attempt.
type URLStore interface {
	KnownURL(ctx context.Context, provider, album, title string) (string, error)
	RememberURL(ctx context.Context, provider, album, title, url string) error
	ForgetURL(ctx context.Context, provider, album, title string) error
	RecordAttempt(ctx context.Context, attempt Attempt) error
}

// Locator is implemented by providers whose request URL can be derived from
// a query without fetching it.
type Locator interface {
	URL(q Query) string
}
