package songindex

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"lyricindex/internal/reconcile"
)

// TrackResolver resolves the track number of a title on an album.
// *reconcile.Catalog satisfies it.
type TrackResolver interface {
	TrackNumber(album, title string) (int, bool)
}

// Miss is a row whose track number could not be resolved.
type Miss struct {
	Album string
	Title string
}

// ReconcileResult summarizes a reconciliation pass.
type ReconcileResult struct {
	Matched   int
	Unmatched int
	Changed   int
	Misses    []Miss
}

// Reconcile fills the Track Number column from resolver. Rows that do not
// resolve get an empty track number; that is an expected outcome, not an
// error.
func (idx *Index) Reconcile(resolver TrackResolver) ReconcileResult {
	idx.EnsureColumn(ColumnTrack)
	var result ReconcileResult
	for _, row := range idx.Rows {
		album, title := row.Get(ColumnAlbum), row.Get(ColumnTitle)
		value := ""
		if number, ok := resolver.TrackNumber(album, title); ok {
			value = strconv.Itoa(number)
			result.Matched++
		} else {
			result.Unmatched++
			result.Misses = append(result.Misses, Miss{Album: album, Title: title})
		}
		if row.Get(ColumnTrack) != value {
			result.Changed++
		}
		row[ColumnTrack] = value
	}
	return result
}

// ReadGroundTruth loads the canonical (album, title, track) table.
func ReadGroundTruth(path string) ([]reconcile.Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ground truth: %w", err)
	}
	tracks, err := ParseGroundTruth(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse ground truth %s: %w", path, err)
	}
	return tracks, nil
}

// ParseGroundTruth decodes ground-truth rows. Track numbers must be integers;
// emptiness and range checks are left to reconcile.Builder, which reports the
// same line numbers.
func ParseGroundTruth(r io.Reader) ([]reconcile.Track, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("ground truth is empty")
	}
	if err != nil {
		return nil, err
	}
	positions := make(map[string]int, len(header))
	for i, column := range header {
		positions[strings.TrimSpace(column)] = i
	}
	for _, required := range []string{ColumnAlbum, ColumnTitle, ColumnTrack} {
		if _, ok := positions[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	field := func(record []string, column string) string {
		if i := positions[column]; i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	var tracks []reconcile.Track
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		raw := field(record, ColumnTrack)
		number, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: track number %q is not an integer", line, raw)
		}
		tracks = append(tracks, reconcile.Track{
			Album:  field(record, ColumnAlbum),
			Title:  field(record, ColumnTitle),
			Number: number,
			Line:   line,
		})
	}
	return tracks, nil
}
