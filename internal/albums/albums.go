package albums

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"lyricindex/internal/textutil"
)

// MetadataFile is the per-album descriptor looked up in every album directory.
const MetadataFile = "metadata.json"

// minLyricsLines is the line count a lyrics file must exceed to count as
// holding lyrics rather than a title and a few metadata lines.
const minLyricsLines = 3

// Album is one album directory in the source tree.
type Album struct {
	Dir    string
	Name   string
	Year   string
	Tracks []Track
}

// Track is a song listed in an album's metadata.
type Track struct {
	Title string `json:"title"`
}

// LyricsPath returns where the lyrics markdown for title lives.
func (a Album) LyricsPath(title string) string {
	return filepath.Join(a.Dir, textutil.SanitizeFileName(title+".md"))
}

type metadata struct {
	Name   string          `json:"name"`
	Year   json.RawMessage `json:"year"`
	Tracks []Track         `json:"tracks"`
}

// Scan reads every album directory directly under root, in directory name
// order. Directories without a metadata file are skipped.
func Scan(root string) ([]Album, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read albums dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []Album
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		album, err := readAlbum(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, album)
	}
	return out, nil
}

func readAlbum(dir string) (Album, error) {
	path := filepath.Join(dir, MetadataFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return Album{}, err
	}
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))

	var meta metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Album{}, fmt.Errorf("parse %s: %w", path, err)
	}
	name := strings.TrimSpace(meta.Name)
	if name == "" {
		return Album{}, fmt.Errorf("parse %s: name is required", path)
	}
	year, err := parseYear(meta.Year)
	if err != nil {
		return Album{}, fmt.Errorf("parse %s: %w", path, err)
	}
	tracks := make([]Track, 0, len(meta.Tracks))
	for i, track := range meta.Tracks {
		track.Title = strings.TrimSpace(track.Title)
		if track.Title == "" {
			return Album{}, fmt.Errorf("parse %s: tracks[%d] has no title", path, i)
		}
		tracks = append(tracks, track)
	}
	return Album{Dir: dir, Name: name, Year: year, Tracks: tracks}, nil
}

// parseYear accepts the year as a JSON number or string.
func parseYear(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var number int
	if err := json.Unmarshal(raw, &number); err == nil {
		return strconv.Itoa(number), nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", fmt.Errorf("year must be a number or string: %s", raw)
	}
	return strings.TrimSpace(text), nil
}

// HasLyrics reports whether the markdown file at path holds lyrics: it must
// exist and have more than a few lines once surrounding whitespace is
// trimmed.
func HasLyrics(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read lyrics: %w", err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(bytes.TrimSpace(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lines := 0
	for scanner.Scan() {
		lines++
		if lines > minLyricsLines {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("scan lyrics: %w", err)
	}
	return false, nil
}
