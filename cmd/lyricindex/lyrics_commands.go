package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"lyricindex/internal/config"
	"lyricindex/internal/frontmatter"
	"lyricindex/internal/ledger"
	"lyricindex/internal/logging"
	"lyricindex/internal/lyrics"
	"lyricindex/internal/songindex"
)

func newLyricsCommand(ctx *commandContext) *cobra.Command {
	lyricsCmd := &cobra.Command{
		Use:   "lyrics",
		Short: "Fetch and verify lyrics documents",
	}
	lyricsCmd.AddCommand(newLyricsFetchCommand(ctx))
	lyricsCmd.AddCommand(newLyricsHistoryCommand(ctx))
	lyricsCmd.AddCommand(newLyricsRunsCommand(ctx))
	lyricsCmd.AddCommand(newLyricsVerifyCommand(ctx))
	lyricsCmd.AddCommand(newLyricsStandardizeCommand(ctx))
	return lyricsCmd
}

func newLyricsClient(cfg *config.Config) *lyrics.Client {
	return lyrics.NewClient(lyrics.ClientOptions{
		UserAgent: cfg.Lyrics.UserAgent,
		Interval:  cfg.RequestInterval(),
		Burst:     cfg.Lyrics.Burst,
		Timeout:   cfg.RequestTimeout(),
	})
}

func lyricsEndpoints(cfg *config.Config) lyrics.Endpoints {
	return lyrics.Endpoints{
		LRCLib:     cfg.Lyrics.LRCLibURL,
		Genius:     cfg.Lyrics.GeniusURL,
		SongLyrics: cfg.Lyrics.SongLyricsURL,
		LyricsOVH:  cfg.Lyrics.LyricsOVHURL,
		ELyrics:    cfg.Lyrics.ELyricsURL,
		LyricsAZ:   cfg.Lyrics.LyricsAZURL,
	}
}

func newLyricsFetchCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var limit int
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch missing lyrics and update the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			selected, err := fetchStatuses(statuses, cfg.Lyrics.RetryStatuses)
			if err != nil {
				return err
			}
			if limit < 0 {
				return errors.New("--limit must be zero or positive")
			}

			lock := flock.New(cfg.IndexLockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire index lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another fetch run holds %s", cfg.IndexLockPath())
			}
			defer func() { _ = lock.Unlock() }()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runID := uuid.NewString()
			runCtx = logging.WithRunID(runCtx, runID)
			base, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			logger, runLog, err := logging.OpenRunLog(base, cfg.Logging.Dir, runID, cfg.Logging.RetentionDays, time.Now())
			if err != nil {
				return err
			}
			defer runLog.Close()

			store, err := ledger.Open(cfg.LedgerPath())
			if err != nil {
				return err
			}
			defer store.Close()

			providers, err := lyrics.NewProviders(cfg.Lyrics.Providers, newLyricsClient(cfg), lyricsEndpoints(cfg))
			if err != nil {
				return err
			}

			idx, err := songindex.Read(cfg.Paths.IndexPath)
			if err != nil {
				return err
			}
			chain := lyrics.NewChain(providers, store, logger, runID)
			save := func(idx *songindex.Index) error {
				return songindex.Write(cfg.Paths.IndexPath, idx)
			}
			runner := lyrics.NewRunner(chain, save, lyrics.RunnerOptions{
				Artist:       cfg.Lyrics.Artist,
				LyricsDir:    cfg.Paths.LyricsDir,
				Statuses:     selected,
				SkipKeywords: cfg.Lyrics.SkipKeywords,
				Limit:        limit,
				DryRun:       dryRun,
			}, logger)

			summary, runErr := runner.Run(runCtx, idx)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Candidates", "Processed", "Succeeded", "Failed", "Skipped"},
				[][]string{{
					strconv.Itoa(summary.Candidates),
					strconv.Itoa(summary.Processed),
					strconv.Itoa(summary.Succeeded),
					strconv.Itoa(summary.Failed),
					strconv.Itoa(summary.Skipped),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			fmt.Fprintf(out, "Run ID: %s\n", runID)
			if runLog != nil {
				fmt.Fprintf(out, "Run log: %s\n", runLog.Path)
			}
			if dryRun {
				fmt.Fprintln(out, "Dry run; nothing fetched or written")
			}
			if errors.Is(runErr, context.Canceled) {
				fmt.Fprintln(out, "Interrupted; progress so far is saved")
			}
			return runErr
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Has Lyrics values to select (defaults to lyrics.retry_statuses)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Fetch at most this many songs (0 for no limit)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the songs that would be fetched")
	return cmd
}

// fetchStatuses canonicalizes --status values, falling back to the
// configured retry statuses.
func fetchStatuses(flags, fallback []string) ([]string, error) {
	if len(flags) == 0 {
		return fallback, nil
	}
	known := []string{songindex.StatusYes, songindex.StatusNo, songindex.StatusFailed, songindex.StatusSkipped}
	out := make([]string, 0, len(flags))
	for _, raw := range flags {
		value := strings.TrimSpace(raw)
		matched := ""
		for _, status := range known {
			if strings.EqualFold(status, value) {
				matched = status
				break
			}
		}
		if matched == "" {
			return nil, fmt.Errorf("--status: unknown value %q (known: %s)", raw, strings.Join(known, ", "))
		}
		out = append(out, matched)
	}
	return out, nil
}

func newLyricsHistoryCommand(ctx *commandContext) *cobra.Command {
	var forget bool

	cmd := &cobra.Command{
		Use:   "history ALBUM TITLE",
		Short: "Show recorded fetch attempts for a song",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			store, err := ledger.Open(cfg.LedgerPath())
			if err != nil {
				return err
			}
			defer store.Close()

			album, title := args[0], args[1]
			out := cmd.OutOrStdout()
			if forget {
				removed, err := store.ForgetURLs(cmd.Context(), album, title)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Forgot %d remembered URL(s) for %s / %s\n", removed, album, title)
				return nil
			}

			attempts, err := store.Attempts(cmd.Context(), album, title)
			if err != nil {
				return err
			}
			if len(attempts) == 0 {
				fmt.Fprintf(out, "No fetch attempts recorded for %s / %s\n", album, title)
				return nil
			}
			rows := make([][]string, 0, len(attempts))
			for _, attempt := range attempts {
				rows = append(rows, []string{
					attempt.At.Local().Format("2006-01-02 15:04:05"),
					attempt.Provider,
					attempt.Outcome,
					attempt.URL,
					attempt.Detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Provider", "Outcome", "URL", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&forget, "forget", false, "Drop remembered URLs for the song instead of listing attempts")
	return cmd
}

func newLyricsRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent fetch runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			store, err := ledger.Open(cfg.LedgerPath())
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintf(out, "No fetch runs recorded in %s\n", store.Path())
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.RunID,
					run.Started.Local().Format("2006-01-02 15:04:05"),
					run.Finished.Sub(run.Started).Round(time.Second).String(),
					strconv.Itoa(run.Found),
					strconv.Itoa(run.NotFound),
					strconv.Itoa(run.Errors),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Duration", "Found", "Not Found", "Errors"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			fmt.Fprintf(out, "Ledger: %s\n", store.Path())
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of runs to show (0 for all)")
	return cmd
}

func newLyricsVerifyCommand(ctx *commandContext) *cobra.Command {
	var apply bool
	var lyricsFlag string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare lyrics documents with lrclib records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			dir, err := pathOr(lyricsFlag, cfg.Paths.LyricsDir)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			lrclib := lyrics.NewLRCLib(newLyricsClient(cfg), cfg.Lyrics.LRCLibURL)
			verifier := lyrics.NewVerifier(lrclib, cfg.Lyrics.Artist, cfg.Lyrics.VerifyThreshold, apply, logger)
			results, err := verifier.VerifyDir(runCtx, dir)

			counts := map[string]int{}
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				counts[result.Status]++
				id := ""
				if result.RecordID > 0 {
					id = strconv.FormatInt(result.RecordID, 10)
				}
				rows = append(rows, []string{
					result.Title,
					result.Status,
					id,
					strconv.FormatFloat(result.Confidence*100, 'f', 1, 64) + "%",
				})
			}
			out := cmd.OutOrStdout()
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable(
					[]string{"Title", "Status", "lrclib ID", "Confidence"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
				))
			}
			colorize := shouldColorize(out)
			writeSection(out, "Verify", colorize,
				renderStatusLine("Matched", statusOK, strconv.Itoa(counts[lyrics.VerifyMatched]), colorize),
				renderStatusLine("Mismatch", countStatus(counts[lyrics.VerifyMismatch], statusWarn), strconv.Itoa(counts[lyrics.VerifyMismatch]), colorize),
				renderStatusLine("Not found", countStatus(counts[lyrics.VerifyNotFound], statusWarn), strconv.Itoa(counts[lyrics.VerifyNotFound]), colorize),
			)
			if !apply {
				fmt.Fprintln(out, "Documents not modified; pass --apply to store lrclib IDs")
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Write lrclib IDs and synced lyrics into matched documents")
	cmd.Flags().StringVar(&lyricsFlag, "lyrics", "", "Lyrics document directory (defaults to paths.lyrics_dir)")
	return cmd
}

func newLyricsStandardizeCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var lyricsFlag string

	cmd := &cobra.Command{
		Use:   "standardize",
		Short: "Rewrite lyrics frontmatter into the standard field layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			dir, err := pathOr(lyricsFlag, cfg.Paths.LyricsDir)
			if err != nil {
				return err
			}
			result, err := frontmatter.StandardizeDir(dir, dryRun, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, path := range result.Updated {
				fmt.Fprintln(out, path)
			}
			colorize := shouldColorize(out)
			writeSection(out, "Standardize", colorize,
				renderStatusLine("Documents", statusInfo, strconv.Itoa(result.Documents), colorize),
				renderStatusLine("Updated", statusOK, strconv.Itoa(len(result.Updated)), colorize),
				renderStatusLine("Skipped", countStatus(result.Skipped, statusWarn), strconv.Itoa(result.Skipped), colorize),
			)
			if dryRun {
				fmt.Fprintln(out, "Dry run; documents not modified")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List documents that would change without writing them")
	cmd.Flags().StringVar(&lyricsFlag, "lyrics", "", "Lyrics document directory (defaults to paths.lyrics_dir)")
	return cmd
}
