// Package lyrics fetches song lyrics from third-party sources.
//
// Providers share one rate-limited HTTP client. The lrclib and lyricsovh
// providers talk to JSON APIs; the page providers scrape HTML with goquery.
// A Chain tries providers in configured order, consulting and updating a
// URLStore (the SQLite fetch ledger in production) so pages that served
// lyrics once are fetched directly next time, and falling back to the
// derived URL when a remembered page has gone. Runner drives a fetch
// pass over the song index and Verifier checks stored lyrics against lrclib.
//
// Not-found is an expected outcome reported as ErrNotFound, not a failure.
package lyrics
