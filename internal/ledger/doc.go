// Package ledger persists lyrics fetch history in SQLite.
//
// Every provider attempt is appended to the attempts table with its run ID
// and outcome, and the page that last served lyrics for a song is kept in
// known_urls so later runs can fetch it directly. The schema is applied from
// embedded migrations when the database is opened.
package ledger
