package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lyricindex/internal/albums"
	"lyricindex/internal/fileutil"
	"lyricindex/internal/frontmatter"
	"lyricindex/internal/logging"
	"lyricindex/internal/reconcile"
	"lyricindex/internal/songindex"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Build and maintain the song index CSV",
	}
	indexCmd.AddCommand(newIndexBuildCommand(ctx))
	indexCmd.AddCommand(newIndexReconcileCommand(ctx))
	indexCmd.AddCommand(newIndexMergeCommand(ctx))
	return indexCmd
}

func newIndexBuildCommand(ctx *commandContext) *cobra.Command {
	var albumsFlag, outputFlag string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Create the song index from album metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			logger = logging.NewComponentLogger(logger, "index")

			albumsDir, err := pathOr(albumsFlag, cfg.Paths.AlbumsDir)
			if err != nil {
				return err
			}
			output, err := pathOr(outputFlag, cfg.Paths.IndexPath)
			if err != nil {
				return err
			}

			scanned, err := albums.Scan(albumsDir)
			if err != nil {
				return err
			}

			var catalog *reconcile.Catalog
			if fileExists(cfg.Paths.GroundTruthPath) {
				catalog, err = ctx.loadCatalog()
				if err != nil {
					return err
				}
			} else {
				logging.WarnWithContext(logger, "ground truth not found", "ground_truth_missing",
					logging.String("path", cfg.Paths.GroundTruthPath),
					logging.String(logging.FieldErrorHint, "set paths.ground_truth_path"),
					logging.String(logging.FieldImpact, "track numbers are left empty"),
				)
			}

			idx := songindex.New()
			for _, album := range scanned {
				for _, track := range album.Tracks {
					has, err := albums.HasLyrics(album.LyricsPath(track.Title))
					if err != nil {
						return err
					}
					if !has {
						has, err = albums.HasLyrics(frontmatter.LyricsPath(cfg.Paths.LyricsDir, album.Name, track.Title))
						if err != nil {
							return err
						}
					}
					number := ""
					if catalog != nil {
						if n, ok := catalog.TrackNumber(album.Name, track.Title); ok {
							number = strconv.Itoa(n)
						}
					}
					status := songindex.StatusNo
					if has {
						status = songindex.StatusYes
					}
					idx.Append(songindex.Row{
						songindex.ColumnAlbum:  album.Name,
						songindex.ColumnYear:   album.Year,
						songindex.ColumnTitle:  track.Title,
						songindex.ColumnTrack:  number,
						songindex.ColumnLyrics: status,
					})
				}
			}
			idx.Sort()
			if err := songindex.Write(output, idx); err != nil {
				return err
			}
			logger.Info("song index written",
				logging.String("path", output),
				logging.Int("albums", len(scanned)),
				logging.Int("songs", len(idx.Rows)),
			)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			missing := idx.Count(songindex.StatusNo)
			writeSection(out, "Song index", colorize,
				renderStatusLine("Path", statusInfo, output, colorize),
				renderStatusLine("Albums", statusInfo, strconv.Itoa(len(scanned)), colorize),
				renderStatusLine("Songs", statusInfo, strconv.Itoa(len(idx.Rows)), colorize),
				renderStatusLine("With lyrics", statusOK, strconv.Itoa(idx.Count(songindex.StatusYes)), colorize),
				renderStatusLine("Missing lyrics", countStatus(missing, statusWarn), strconv.Itoa(missing), colorize),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&albumsFlag, "albums", "", "Album metadata directory (defaults to paths.albums_dir)")
	cmd.Flags().StringVar(&outputFlag, "output", "", "Index CSV to write (defaults to paths.index_path)")
	return cmd
}

func newIndexReconcileCommand(ctx *commandContext) *cobra.Command {
	var indexFlag string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Fill Track Number from the ground truth",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			logger = logging.NewComponentLogger(logger, "reconcile")

			path, err := pathOr(indexFlag, cfg.Paths.IndexPath)
			if err != nil {
				return err
			}
			catalog, err := ctx.loadCatalog()
			if err != nil {
				return err
			}
			for _, conflict := range catalog.Conflicts() {
				logging.WarnWithContext(logger, "conflicting ground truth entry", "catalog_conflict",
					logging.String(logging.FieldAlbum, conflict.Album),
					logging.String("variant", conflict.Variant),
					logging.Int("kept", conflict.Kept),
					logging.Int("dropped", conflict.Dropped),
					logging.String(logging.FieldImpact, "the first track number wins"),
				)
			}

			idx, err := songindex.Read(path)
			if err != nil {
				return err
			}
			result := idx.Reconcile(catalog)
			idx.Sort()
			if !dryRun {
				if err := songindex.Write(path, idx); err != nil {
					return err
				}
			}
			logger.Info("index reconciled",
				logging.String("path", path),
				logging.Int("matched", result.Matched),
				logging.Int("unmatched", result.Unmatched),
				logging.Int("changed", result.Changed),
				logging.Bool("dry_run", dryRun),
			)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			writeSection(out, "Reconcile", colorize,
				renderStatusLine("Matched", statusOK, strconv.Itoa(result.Matched), colorize),
				renderStatusLine("Unmatched", countStatus(result.Unmatched, statusWarn), strconv.Itoa(result.Unmatched), colorize),
				renderStatusLine("Changed", statusInfo, strconv.Itoa(result.Changed), colorize),
			)
			if len(result.Misses) > 0 {
				fmt.Fprintln(out, renderTable(
					[]string{"Album", "Song Title", "Closest", "Distance"},
					missRows(catalog, result.Misses),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				))
			}
			if dryRun {
				fmt.Fprintln(out, "Dry run; index not written")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&indexFlag, "index", "", "Index CSV to reconcile (defaults to paths.index_path)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report changes without writing the index")
	return cmd
}

func missRows(catalog *reconcile.Catalog, misses []songindex.Miss) [][]string {
	rows := make([][]string, 0, len(misses))
	for _, miss := range misses {
		closest, distance := "", ""
		if track, d, ok := catalog.Suggest(miss.Album, miss.Title); ok {
			closest = fmt.Sprintf("%s #%d", track.Title, track.Number)
			distance = strconv.Itoa(d)
		}
		rows = append(rows, []string{miss.Album, miss.Title, closest, distance})
	}
	return rows
}

func newIndexMergeCommand(ctx *commandContext) *cobra.Command {
	var lyricsFlag, indexFlag string
	var backup bool

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Copy lyrics document metadata into the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			logger = logging.NewComponentLogger(logger, "merge")

			lyricsDir, err := pathOr(lyricsFlag, cfg.Paths.LyricsDir)
			if err != nil {
				return err
			}
			path, err := pathOr(indexFlag, cfg.Paths.IndexPath)
			if err != nil {
				return err
			}

			idx, err := songindex.Read(path)
			if err != nil {
				return err
			}
			meta, err := frontmatter.Collect(lyricsDir, logger)
			if err != nil {
				return err
			}
			result := frontmatter.Merge(idx, meta)

			if backup {
				saved, err := fileutil.Backup(path)
				if err != nil {
					return err
				}
				if saved != "" {
					logger.Info("index backed up", logging.String("path", saved))
				}
			}
			if err := songindex.Write(path, idx); err != nil {
				return err
			}
			for _, key := range result.Unclaimed {
				logger.Debug("lyrics document matches no index row",
					logging.String(logging.FieldAlbum, key.Album),
					logging.String(logging.FieldTitle, key.Title),
				)
			}
			logger.Info("metadata merged",
				logging.String("path", path),
				logging.Int("matched", result.Matched),
				logging.Int("unmatched", len(result.Unclaimed)),
			)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			added := "none"
			if len(result.AddedColumns) > 0 {
				added = strings.Join(result.AddedColumns, ", ")
			}
			writeSection(out, "Merge", colorize,
				renderStatusLine("Documents", statusInfo, strconv.Itoa(len(meta)), colorize),
				renderStatusLine("Matched rows", statusOK, strconv.Itoa(result.Matched), colorize),
				renderStatusLine("Unclaimed", countStatus(len(result.Unclaimed), statusWarn), strconv.Itoa(len(result.Unclaimed)), colorize),
				renderStatusLine("Added columns", statusInfo, added, colorize),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&lyricsFlag, "lyrics", "", "Lyrics document directory (defaults to paths.lyrics_dir)")
	cmd.Flags().StringVar(&indexFlag, "index", "", "Index CSV to update (defaults to paths.index_path)")
	cmd.Flags().BoolVar(&backup, "backup", false, "Copy the index to <index>.bak before writing")
	return cmd
}
