package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"

	"lyricindex/internal/logging"
	"lyricindex/internal/textutil"
)

// Keys written only by Standardize.
const (
	KeySlug     = "slug"
	KeyDuration = "duration"
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

// standardDefaults lists the fields every standardized document carries, in
// order, with the value used when a field is missing or blank. title,
// albumId, and slug are derived and come first.
var standardDefaults = []yaml.MapItem{
	{Key: KeyDescription, Value: ""},
	{Key: KeyDuration, Value: ""},
	{Key: KeyYouTubeURL, Value: ""},
	{Key: KeySpotifyURL, Value: ""},
	{Key: KeyTags, Value: []string{}},
	{Key: KeyContributors, Value: []string{}},
}

// optionalKeys are kept after the defaults only when present.
var optionalKeys = []string{KeyLrcLibID, KeyVerified, KeySyncedLyrics}

// Standardize returns a copy of d with its fields rewritten into the standard
// layout. album is the album directory name and base the file name without
// extension. Fields outside the standard set follow in their original order.
func Standardize(d *Document, album, base string) *Document {
	out := &Document{Body: d.Body}
	title := d.String(KeyTitle)
	if strings.TrimSpace(title) == "" {
		title = textutil.TitleFromSlug(base)
	}
	out.Set(KeyTitle, title)
	out.Set(KeyAlbumID, album)
	out.Set(KeySlug, whitespaceRuns.ReplaceAllString(strings.ToLower(base), "-"))

	for _, item := range standardDefaults {
		key := fmt.Sprint(item.Key)
		value, ok := d.Get(key)
		if !ok || blank(value) {
			value = item.Value
		}
		out.Set(key, value)
	}
	for _, key := range optionalKeys {
		if value, ok := d.Get(key); ok && value != nil {
			out.Set(key, value)
		}
	}
	for _, item := range d.Fields {
		key := fmt.Sprint(item.Key)
		if _, ok := out.Get(key); !ok {
			out.Set(key, item.Value)
		}
	}
	return out
}

func blank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}

// StandardizeResult summarizes a StandardizeDir pass.
type StandardizeResult struct {
	Documents int
	Skipped   int
	// Updated lists the documents whose rendering changed, relative to dir.
	Updated []string
}

// StandardizeDir standardizes every markdown document in the album
// directories below dir. Documents directly in dir are ignored and documents
// that fail to parse are logged and skipped. With dryRun set nothing is
// written.
func StandardizeDir(dir string, dryRun bool, logger *slog.Logger) (StandardizeResult, error) {
	logger = logging.NewComponentLogger(logger, "frontmatter")
	var result StandardizeResult
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		album, _, nested := strings.Cut(filepath.ToSlash(rel), "/")
		if !nested {
			return nil
		}
		result.Documents++

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}
		doc, err := Parse(raw)
		if err != nil {
			result.Skipped++
			logging.WarnWithContext(logger, "skipping unreadable lyrics document", "frontmatter_parse_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "fix the YAML block between the --- lines"),
				logging.String(logging.FieldImpact, "document keeps its current frontmatter"),
			)
			return nil
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		standard := Standardize(doc, album, base)
		rendered, err := standard.Render()
		if err != nil {
			return fmt.Errorf("render %s: %w", path, err)
		}
		if bytes.Equal(rendered, raw) {
			return nil
		}
		result.Updated = append(result.Updated, filepath.ToSlash(rel))
		if dryRun {
			return nil
		}
		if err := Write(path, standard); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debug("standardized lyrics document", logging.String("path", path))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return result, fmt.Errorf("lyrics dir %s does not exist", dir)
	}
	if err != nil {
		return result, fmt.Errorf("walk lyrics dir: %w", err)
	}
	return result, nil
}
