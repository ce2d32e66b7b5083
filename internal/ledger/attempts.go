package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"lyricindex/internal/lyrics"
)

// RecordAttempt appends one provider attempt.
func (s *Store) RecordAttempt(ctx context.Context, attempt lyrics.Attempt) error {
	at := attempt.At
	if at.IsZero() {
		at = time.Now()
	}
	err := s.exec(ctx,
		`INSERT INTO attempts (run_id, provider, album, title, url, outcome, detail, attempted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.RunID,
		attempt.Provider,
		strings.TrimSpace(attempt.Album),
		strings.TrimSpace(attempt.Title),
		attempt.URL,
		attempt.Outcome,
		attempt.Detail,
		formatTime(at),
	)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// Attempts returns every attempt for a song, oldest first.
func (s *Store) Attempts(ctx context.Context, album, title string) ([]lyrics.Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, provider, album, title, url, outcome, detail, attempted_at
		 FROM attempts WHERE album = ? AND title = ? ORDER BY id`,
		strings.TrimSpace(album), strings.TrimSpace(title))
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []lyrics.Attempt
	for rows.Next() {
		var (
			a  lyrics.Attempt
			at string
		)
		if err := rows.Scan(&a.RunID, &a.Provider, &a.Album, &a.Title, &a.URL, &a.Outcome, &a.Detail, &at); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.At = parseTime(at)
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// RunSummary aggregates the attempts of one fetch run.
type RunSummary struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Found    int
	NotFound int
	Errors   int
}

// Runs returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT run_id, MIN(attempted_at), MAX(attempted_at),
			SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
			SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
			SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END)
		FROM attempts
		GROUP BY run_id
		ORDER BY MIN(attempted_at) DESC`
	args := []any{lyrics.OutcomeFound, lyrics.OutcomeNotFound, lyrics.OutcomeError}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			run             RunSummary
			started, latest string
		)
		if err := rows.Scan(&run.RunID, &started, &latest, &run.Found, &run.NotFound, &run.Errors); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Started = parseTime(started)
		run.Finished = parseTime(latest)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// KnownURL returns the page that last served lyrics for the song from
// provider, or "" when none is recorded.
func (s *Store) KnownURL(ctx context.Context, provider, album, title string) (string, error) {
	var url string
	err := s.db.QueryRowContext(ctx,
		"SELECT url FROM known_urls WHERE provider = ? AND album = ? AND title = ?",
		provider, strings.TrimSpace(album), strings.TrimSpace(title),
	).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query known url: %w", err)
	}
	return url, nil
}

// RememberURL stores url as the known page for the song, replacing any
// earlier one.
func (s *Store) RememberURL(ctx context.Context, provider, album, title, url string) error {
	err := s.exec(ctx,
		`INSERT INTO known_urls (provider, album, title, url, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(provider, album, title) DO UPDATE SET url = excluded.url, updated_at = excluded.updated_at`,
		provider, strings.TrimSpace(album), strings.TrimSpace(title), url, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("remember url: %w", err)
	}
	return nil
}

// ForgetURL drops the known URL for the song from provider.
func (s *Store) ForgetURL(ctx context.Context, provider, album, title string) error {
	err := s.exec(ctx,
		"DELETE FROM known_urls WHERE provider = ? AND album = ? AND title = ?",
		provider, strings.TrimSpace(album), strings.TrimSpace(title),
	)
	if err != nil {
		return fmt.Errorf("forget url: %w", err)
	}
	return nil
}

// ForgetURLs drops every known URL for the song, forcing the next fetch to
// derive page URLs again. It returns how many entries were removed.
func (s *Store) ForgetURLs(ctx context.Context, album, title string) (int64, error) {
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			"DELETE FROM known_urls WHERE album = ? AND title = ?",
			strings.TrimSpace(album), strings.TrimSpace(title))
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("forget urls: %w", err)
	}
	return removed, nil
}

var _ lyrics.URLStore = (*Store)(nil)
