package lyrics

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"lyricindex/internal/frontmatter"
	"lyricindex/internal/logging"
	"lyricindex/internal/songindex"
)

// RunnerOptions controls a fetch run.
type RunnerOptions struct {
	Artist    string
	LyricsDir string
	// Statuses selects rows by their Has Lyrics value. An empty cell counts
	// as "No".
	Statuses []string
	// SkipKeywords mark instrumental tracks: a title containing one of them
	// (case-insensitive) is set to Skipped without a fetch.
	SkipKeywords []string
	// Limit caps how many songs are fetched; 0 means no limit.
	Limit  int
	DryRun bool
}

// Summary reports the outcome of a run.
type Summary struct {
	Candidates int
	Processed  int
	Succeeded  int
	Failed     int
	Skipped    int
}

// SaveFunc persists the index after each song.
type SaveFunc func(*songindex.Index) error

// Runner walks the index and fetches lyrics for selected rows, one song at a
// time.
type Runner struct {
	fetcher Fetcher
	save    SaveFunc
	opts    RunnerOptions
	logger  *slog.Logger
	now     func() time.Time
}

// NewRunner creates a runner.
func NewRunner(fetcher Fetcher, save SaveFunc, opts RunnerOptions, logger *slog.Logger) *Runner {
	return &Runner{
		fetcher: fetcher,
		save:    save,
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "fetch"),
		now:     time.Now,
	}
}

// Run processes idx in row order. A found song gets a lyrics document and
// status Yes, a miss gets Failed, and a skip-keyword match gets Skipped. The
// index is saved after every status change so an interrupted run loses at
// most the song in flight. Cancellation stops the run between songs and is
// returned as the error.
func (r *Runner) Run(ctx context.Context, idx *songindex.Index) (Summary, error) {
	selected := r.selectRows(idx)
	summary := Summary{Candidates: len(selected)}
	r.logger.Info("fetch run starting",
		logging.Int("candidates", len(selected)),
		logging.String("statuses", strings.Join(r.opts.Statuses, ",")),
		logging.Bool("dry_run", r.opts.DryRun),
	)

	for _, row := range selected {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		album, title := row.Get(songindex.ColumnAlbum), row.Get(songindex.ColumnTitle)
		logger := r.logger.With(logging.String("album", album), logging.String("title", title))

		if r.isInstrumental(title) {
			summary.Skipped++
			logger.Info("skipping instrumental track")
			if err := r.setStatus(idx, row, songindex.StatusSkipped); err != nil {
				return summary, err
			}
			continue
		}
		if r.opts.Limit > 0 && summary.Processed >= r.opts.Limit {
			break
		}
		summary.Processed++

		if r.opts.DryRun {
			logger.Info("would fetch lyrics",
				logging.String("path", frontmatter.LyricsPath(r.opts.LyricsDir, album, title)))
			continue
		}

		status := r.fetchOne(ctx, logger, row)
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if status == songindex.StatusYes {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		if err := r.setStatus(idx, row, status); err != nil {
			return summary, err
		}
	}

	r.logger.Info("fetch run complete",
		logging.Int("processed", summary.Processed),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func (r *Runner) fetchOne(ctx context.Context, logger *slog.Logger, row songindex.Row) string {
	album, title := row.Get(songindex.ColumnAlbum), row.Get(songindex.ColumnTitle)
	result, err := r.fetcher.Fetch(ctx, Query{Artist: r.opts.Artist, Album: album, Title: title})
	if err != nil {
		if !errors.Is(err, ErrNotFound) && ctx.Err() == nil {
			logging.WarnWithContext(logger, "lyrics fetch failed", "fetch_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "song marked Failed; rerun with --status Failed to retry"),
			)
		} else {
			logger.Info("no lyrics found")
		}
		return songindex.StatusFailed
	}

	track, _ := strconv.Atoi(row.Get(songindex.ColumnTrack))
	doc := frontmatter.NewLyricsDocument(frontmatter.Song{
		Artist:    r.opts.Artist,
		Album:     album,
		Title:     title,
		Track:     track,
		CreatedAt: r.now(),
	}, result.Lyrics)
	path := frontmatter.LyricsPath(r.opts.LyricsDir, album, title)
	if err := frontmatter.Write(path, doc); err != nil {
		logging.WarnWithContext(logger, "failed to write lyrics document", "lyrics_write_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check lyrics_dir permissions"),
			logging.String(logging.FieldImpact, "song marked Failed"),
		)
		return songindex.StatusFailed
	}
	logger.Info("lyrics saved",
		logging.String("provider", result.Provider),
		logging.String("path", path),
	)
	return songindex.StatusYes
}

func (r *Runner) setStatus(idx *songindex.Index, row songindex.Row, status string) error {
	if r.opts.DryRun {
		return nil
	}
	row[songindex.ColumnLyrics] = status
	if r.save == nil {
		return nil
	}
	return r.save(idx)
}

func (r *Runner) selectRows(idx *songindex.Index) []songindex.Row {
	idx.EnsureColumn(songindex.ColumnLyrics)
	wanted := make(map[string]struct{}, len(r.opts.Statuses))
	for _, status := range r.opts.Statuses {
		wanted[strings.ToLower(strings.TrimSpace(status))] = struct{}{}
	}
	var rows []songindex.Row
	for _, row := range idx.Rows {
		status := row.Get(songindex.ColumnLyrics)
		if status == "" {
			status = songindex.StatusNo
		}
		if _, ok := wanted[strings.ToLower(status)]; ok {
			rows = append(rows, row)
		}
	}
	return rows
}

func (r *Runner) isInstrumental(title string) bool {
	lower := strings.ToLower(title)
	for _, keyword := range r.opts.SkipKeywords {
		if keyword = strings.ToLower(strings.TrimSpace(keyword)); keyword != "" && strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
