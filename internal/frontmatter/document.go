package frontmatter

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"lyricindex/internal/fileutil"
)

const delimiter = "---"

// Document is a markdown file with an optional YAML frontmatter block.
// Fields keep the order in which they were read or set.
type Document struct {
	Fields yaml.MapSlice
	Body   string
}

// Read loads the document at path.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Parse splits data into frontmatter fields and body. A document that does
// not open with a "---" line has no fields.
func Parse(data []byte) (*Document, error) {
	text := strings.ReplaceAll(string(bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))), "\r\n", "\n")
	first, rest, found := strings.Cut(text, "\n")
	if !found || strings.TrimSpace(first) != delimiter {
		return &Document{Body: text}, nil
	}

	var header []string
	lines := strings.Split(rest, "\n")
	closing := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == delimiter {
			closing = i
			break
		}
		header = append(header, line)
	}
	if closing < 0 {
		return nil, fmt.Errorf("frontmatter is not closed")
	}

	doc := &Document{}
	if block := strings.Join(header, "\n"); strings.TrimSpace(block) != "" {
		if err := yaml.UnmarshalWithOptions([]byte(block), &doc.Fields, yaml.UseOrderedMap()); err != nil {
			return nil, fmt.Errorf("decode frontmatter: %w", err)
		}
	}
	doc.Body = strings.TrimLeft(strings.Join(lines[closing+1:], "\n"), "\n")
	return doc, nil
}

// Render encodes the document back to markdown.
func (d *Document) Render() ([]byte, error) {
	var buf bytes.Buffer
	if len(d.Fields) > 0 {
		encoded, err := yaml.Marshal(d.Fields)
		if err != nil {
			return nil, fmt.Errorf("encode frontmatter: %w", err)
		}
		buf.WriteString(delimiter + "\n")
		buf.Write(encoded)
		if !bytes.HasSuffix(encoded, []byte("\n")) {
			buf.WriteByte('\n')
		}
		buf.WriteString(delimiter + "\n\n")
	}
	buf.WriteString(d.Body)
	if d.Body != "" && !strings.HasSuffix(d.Body, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Write renders the document to path atomically, creating parent directories.
func Write(path string, d *Document) error {
	data, err := d.Render()
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// Get returns the raw value of key.
func (d *Document) Get(key string) (any, bool) {
	for _, item := range d.Fields {
		if fmt.Sprint(item.Key) == key {
			return item.Value, true
		}
	}
	return nil, false
}

// Set replaces key in place or appends it.
func (d *Document) Set(key string, value any) {
	for i, item := range d.Fields {
		if fmt.Sprint(item.Key) == key {
			d.Fields[i].Value = value
			return
		}
	}
	d.Fields = append(d.Fields, yaml.MapItem{Key: key, Value: value})
}

// String returns the value of key formatted for a CSV cell; lists are
// joined with ", " and a missing key yields "".
func (d *Document) String(key string) string {
	value, ok := d.Get(key)
	if !ok {
		return ""
	}
	return FormatValue(value)
}

// FormatValue renders a decoded YAML value as plain text.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(time.DateOnly)
		}
		return v.Format(time.RFC3339)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = FormatValue(item)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(v, ", ")
	default:
		return fmt.Sprint(v)
	}
}
