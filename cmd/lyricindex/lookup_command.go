package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lyricindex/internal/reconcile"
)

func newLookupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup ALBUM [TITLE]",
		Short: "Show how a title resolves against the ground truth",
		Long:  "With only ALBUM, list the album's ground-truth tracks.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.loadCatalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				return listAlbumTracks(out, catalog, args[0])
			}
			album, title := args[0], args[1]
			colorize := shouldColorize(out)

			lines := []string{
				renderStatusLine("Album", statusInfo, catalog.ResolveAlbum(album), colorize),
				renderStatusLine("Variants", statusInfo, strings.Join(catalog.Variants(title), " | "), colorize),
			}
			if number, ok := catalog.TrackNumber(album, title); ok {
				lines = append(lines, renderStatusLine("Track", statusOK, strconv.Itoa(number), colorize))
			} else {
				lines = append(lines, renderStatusLine("Track", statusWarn, "not found", colorize))
				if track, distance, ok := catalog.Suggest(album, title); ok {
					suggestion := fmt.Sprintf("%s / %s #%d (distance %d)", track.Album, track.Title, track.Number, distance)
					lines = append(lines, renderStatusLine("Closest", statusInfo, suggestion, colorize))
				}
			}
			writeSection(out, title, colorize, lines...)
			return nil
		},
	}
}

func listAlbumTracks(out io.Writer, catalog *reconcile.Catalog, album string) error {
	tracks := catalog.Tracks(album)
	if len(tracks) == 0 {
		return fmt.Errorf("album %q is not in the ground truth (known: %s)", album, strings.Join(catalog.Albums(), ", "))
	}
	rows := make([][]string, 0, len(tracks))
	for _, track := range tracks {
		rows = append(rows, []string{strconv.Itoa(track.Number), track.Title})
	}
	fmt.Fprintln(out, tracks[0].Album)
	fmt.Fprintln(out, renderTable([]string{"#", "Title"}, rows, []columnAlignment{alignRight, alignLeft}))
	return nil
}
