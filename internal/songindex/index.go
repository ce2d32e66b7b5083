package songindex

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"lyricindex/internal/fileutil"
)

// Known columns.
const (
	ColumnAlbum  = "Album"
	ColumnYear   = "Year"
	ColumnTitle  = "Song Title"
	ColumnTrack  = "Track Number"
	ColumnLyrics = "Has Lyrics"
)

// Has Lyrics values.
const (
	StatusYes     = "Yes"
	StatusNo      = "No"
	StatusFailed  = "Failed"
	StatusSkipped = "Skipped"
)

// DefaultHeader is the column order of a freshly built index.
var DefaultHeader = []string{ColumnAlbum, ColumnYear, ColumnTitle, ColumnTrack, ColumnLyrics}

var utf8BOM = []byte("\xEF\xBB\xBF")

// Row is one index record keyed by column name.
type Row map[string]string

// Get returns the trimmed value of column.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// Index is a row-oriented CSV document. Header preserves the column order of
// the source file, including columns this package does not interpret.
type Index struct {
	Header []string
	Rows   []Row
}

// New returns an empty index with the default header.
func New() *Index {
	header := make([]string, len(DefaultHeader))
	copy(header, DefaultHeader)
	return &Index{Header: header}
}

// Read loads the index at path.
func Read(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	idx, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	return idx, nil
}

// Parse decodes an index. The Album and Song Title columns are required.
func Parse(r io.Reader) (*Index, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("index is empty")
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if err := requireColumns(header, ColumnAlbum, ColumnTitle); err != nil {
		return nil, err
	}

	idx := &Index{Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(Row, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = record[i]
			} else {
				row[column] = ""
			}
		}
		idx.Rows = append(idx.Rows, row)
	}
	return idx, nil
}

// Write rewrites the index at path atomically.
func Write(path string, idx *Index) error {
	if err := fileutil.WriteFileAtomic(path, 0o644, idx.Encode); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// Encode writes the index as CSV.
func (idx *Index) Encode(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(idx.Header); err != nil {
		return err
	}
	record := make([]string, len(idx.Header))
	for _, row := range idx.Rows {
		for i, column := range idx.Header {
			record[i] = row[column]
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// HasColumn reports whether column is part of the header.
func (idx *Index) HasColumn(column string) bool {
	for _, existing := range idx.Header {
		if existing == column {
			return true
		}
	}
	return false
}

// EnsureColumn appends column to the header when missing and reports whether
// it was added. New cells start empty.
func (idx *Index) EnsureColumn(column string) bool {
	if idx.HasColumn(column) {
		return false
	}
	idx.Header = append(idx.Header, column)
	for _, row := range idx.Rows {
		row[column] = ""
	}
	return true
}

// Append adds a row, filling missing header cells with empty strings.
func (idx *Index) Append(row Row) {
	for _, column := range idx.Header {
		if _, ok := row[column]; !ok {
			row[column] = ""
		}
	}
	idx.Rows = append(idx.Rows, row)
}

// Find returns the position of the first row for album and title, or -1.
// Album and title compare exactly after trimming.
func (idx *Index) Find(album, title string) int {
	album, title = strings.TrimSpace(album), strings.TrimSpace(title)
	for i, row := range idx.Rows {
		if row.Get(ColumnAlbum) == album && row.Get(ColumnTitle) == title {
			return i
		}
	}
	return -1
}

// SetStatus records the Has Lyrics value of the matching row and reports
// whether a row was found.
func (idx *Index) SetStatus(album, title, status string) bool {
	i := idx.Find(album, title)
	if i < 0 {
		return false
	}
	idx.EnsureColumn(ColumnLyrics)
	idx.Rows[i][ColumnLyrics] = status
	return true
}

// Sort orders rows by year, then album, then track number. Rows without a
// year or without a track number sort after the ones that have one. The sort
// is stable.
func (idx *Index) Sort() {
	sort.SliceStable(idx.Rows, func(i, j int) bool {
		a, b := idx.Rows[i], idx.Rows[j]
		if c := compareOptionalInt(a.Get(ColumnYear), b.Get(ColumnYear)); c != 0 {
			return c < 0
		}
		if a.Get(ColumnAlbum) != b.Get(ColumnAlbum) {
			return a.Get(ColumnAlbum) < b.Get(ColumnAlbum)
		}
		return compareOptionalInt(a.Get(ColumnTrack), b.Get(ColumnTrack)) < 0
	})
}

// Count returns how many rows carry status.
func (idx *Index) Count(status string) int {
	n := 0
	for _, row := range idx.Rows {
		if row.Get(ColumnLyrics) == status {
			n++
		}
	}
	return n
}

func compareOptionalInt(a, b string) int {
	av, aErr := strconv.Atoi(a)
	bv, bErr := strconv.Atoi(b)
	switch {
	case aErr != nil && bErr != nil:
		return 0
	case aErr != nil:
		return 1
	case bErr != nil:
		return -1
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func requireColumns(header []string, columns ...string) error {
	present := make(map[string]struct{}, len(header))
	for _, column := range header {
		present[column] = struct{}{}
	}
	var missing []string
	for _, column := range columns {
		if _, ok := present[column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
