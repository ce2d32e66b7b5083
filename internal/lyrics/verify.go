package lyrics

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"lyricindex/internal/frontmatter"
	"lyricindex/internal/logging"
	"lyricindex/internal/textutil"
)

// Verification statuses.
const (
	VerifyMatched  = "matched"
	VerifyMismatch = "mismatch"
	VerifyNotFound = "not_found"
)

// Verification is the outcome of comparing one local document with lrclib.
type Verification struct {
	Path       string
	Title      string
	RecordID   int64
	Confidence float64
	Status     string
}

// Verifier compares local lyrics documents with lrclib records and, on a
// match, stores the lrclib ID and synced lyrics in the document.
type Verifier struct {
	lrclib    *LRCLib
	artist    string
	threshold float64
	apply     bool
	logger    *slog.Logger
}

// NewVerifier creates a verifier. Documents are only rewritten when apply is
// set.
func NewVerifier(lrclib *LRCLib, artist string, threshold float64, apply bool, logger *slog.Logger) *Verifier {
	return &Verifier{
		lrclib:    lrclib,
		artist:    artist,
		threshold: threshold,
		apply:     apply,
		logger:    logging.NewComponentLogger(logger, "verify"),
	}
}

// VerifyDir verifies every lyrics document below dir in path order.
func (v *Verifier) VerifyDir(ctx context.Context, dir string) ([]Verification, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(path), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk lyrics dir: %w", err)
	}
	sort.Strings(paths)

	var results []Verification
	for _, path := range paths {
		result, err := v.Verify(ctx, path)
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		if err != nil {
			logging.WarnWithContext(v.logger, "lyrics verification failed", "verify_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "document left unverified"),
			)
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

// Verify compares the document at path with its lrclib record. A stored
// lrclib ID is looked up directly; otherwise the search result closest to
// the local text is used.
func (v *Verifier) Verify(ctx context.Context, path string) (Verification, error) {
	doc, err := frontmatter.Read(path)
	if err != nil {
		return Verification{}, err
	}
	title := doc.String(frontmatter.KeyTitle)
	if title == "" {
		title = textutil.TitleFromSlug(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	result := Verification{Path: path, Title: title}

	record, err := v.lookup(ctx, doc, title)
	if errors.Is(err, ErrNotFound) {
		result.Status = VerifyNotFound
		return result, nil
	}
	if err != nil {
		return Verification{}, err
	}

	result.RecordID = record.ID
	result.Confidence = textutil.EditSimilarity(doc.Body, record.PlainLyrics)
	if result.Confidence <= v.threshold {
		result.Status = VerifyMismatch
		v.logger.Info("lyrics differ from lrclib",
			logging.String("title", title),
			logging.Float64("confidence", result.Confidence))
		return result, nil
	}

	result.Status = VerifyMatched
	if v.apply {
		doc.Set(frontmatter.KeyLrcLibID, record.ID)
		doc.Set(frontmatter.KeyVerified, true)
		if record.SyncedLyrics != "" {
			doc.Set(frontmatter.KeySyncedLyrics, record.SyncedLyrics)
		}
		if err := frontmatter.Write(path, doc); err != nil {
			return Verification{}, err
		}
	}
	v.logger.Info("lyrics verified",
		logging.String("title", title),
		logging.Float64("confidence", result.Confidence),
		logging.Bool("updated", v.apply))
	return result, nil
}

func (v *Verifier) lookup(ctx context.Context, doc *frontmatter.Document, title string) (Record, error) {
	if id, err := strconv.ParseInt(doc.String(frontmatter.KeyLrcLibID), 10, 64); err == nil && id > 0 {
		record, err := v.lrclib.GetByID(ctx, id)
		if err == nil && record.usable() {
			return record, nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return Record{}, err
		}
	}

	records, err := v.lrclib.Search(ctx, v.artist, title)
	if err != nil {
		return Record{}, err
	}
	local := textutil.NewFingerprint(doc.Body)
	best, bestScore := -1, -1.0
	for i, record := range records {
		if !record.usable() {
			continue
		}
		score := textutil.CosineSimilarity(local, textutil.NewFingerprint(record.PlainLyrics))
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return Record{}, ErrNotFound
	}
	return records[best], nil
}
