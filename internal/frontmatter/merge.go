package frontmatter

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"lyricindex/internal/logging"
	"lyricindex/internal/songindex"
	"lyricindex/internal/textutil"
)

// Column maps a frontmatter key to the index column it fills.
type Column struct {
	Key    string
	Header string
}

// MergeColumns lists the frontmatter keys copied into the index, in the
// order missing columns are appended.
var MergeColumns = []Column{
	{Key: KeyAlbumID, Header: "Album ID"},
	{Key: KeyContributors, Header: "Contributors"},
	{Key: KeyCreatedAt, Header: "Created At"},
	{Key: KeyDescription, Header: "Description"},
	{Key: KeyID, Header: "ID"},
	{Key: KeySpotifyURL, Header: "Spotify URL"},
	{Key: KeyTags, Header: "Tags"},
	{Key: KeyTitle, Header: "Title"},
	{Key: KeyTrackNumber, Header: songindex.ColumnTrack},
	{Key: KeyYouTubeURL, Header: "YouTube URL"},
}

// SongKey identifies a song across the lyrics tree and the index: the slug of
// the album name and the exact song title.
type SongKey struct {
	Album string
	Title string
}

// Metadata holds the formatted frontmatter values of each collected song,
// keyed by index column header.
type Metadata map[SongKey]map[string]string

// Collect reads every markdown document below dir. The album is
// the name of the containing directory; the title comes from the frontmatter
// or, failing that, from the file name. Documents that fail to parse are
// logged and skipped.
func Collect(dir string, logger *slog.Logger) (Metadata, error) {
	logger = logging.NewComponentLogger(logger, "frontmatter")
	meta := make(Metadata)
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		albumDir := filepath.Dir(path)
		if filepath.Clean(albumDir) == filepath.Clean(dir) {
			return nil
		}
		doc, err := Read(path)
		if err != nil {
			logging.WarnWithContext(logger, "skipping unreadable lyrics document", "frontmatter_parse_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "fix the YAML block between the --- lines"),
				logging.String(logging.FieldImpact, "song metadata is not merged into the index"),
			)
			return nil
		}
		title := doc.String(KeyTitle)
		if strings.TrimSpace(title) == "" {
			title = textutil.TitleFromSlug(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		}
		values := make(map[string]string, len(MergeColumns))
		for _, column := range MergeColumns {
			values[column.Header] = doc.String(column.Key)
		}
		meta[SongKey{Album: textutil.Slug(filepath.Base(albumDir)), Title: title}] = values
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("lyrics dir %s does not exist", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("walk lyrics dir: %w", err)
	}
	logger.Debug("collected lyrics metadata", logging.Int("documents", len(meta)))
	return meta, nil
}

// MergeResult summarizes a metadata merge.
type MergeResult struct {
	Matched      int
	AddedColumns []string
	Unclaimed    []SongKey
}

// Merge copies collected metadata into matching index rows. Missing columns
// are appended when there is any metadata at all. Empty frontmatter values
// leave existing cells untouched.
func Merge(idx *songindex.Index, meta Metadata) MergeResult {
	var result MergeResult
	if len(meta) == 0 {
		return result
	}
	for _, column := range MergeColumns {
		if idx.EnsureColumn(column.Header) {
			result.AddedColumns = append(result.AddedColumns, column.Header)
		}
	}

	claimed := make(map[SongKey]bool, len(meta))
	for _, row := range idx.Rows {
		key := SongKey{Album: textutil.Slug(row.Get(songindex.ColumnAlbum)), Title: row.Get(songindex.ColumnTitle)}
		values, ok := meta[key]
		if !ok {
			continue
		}
		claimed[key] = true
		result.Matched++
		for header, value := range values {
			if value != "" {
				row[header] = value
			}
		}
	}

	for key := range meta {
		if !claimed[key] {
			result.Unclaimed = append(result.Unclaimed, key)
		}
	}
	sort.Slice(result.Unclaimed, func(i, j int) bool {
		a, b := result.Unclaimed[i], result.Unclaimed[j]
		if a.Album != b.Album {
			return a.Album < b.Album
		}
		return a.Title < b.Title
	})
	return result
}
