package albums

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestScanSortsAndSkips(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b-activate", MetadataFile),
		`{"name": "Activate", "year": 2010, "tracks": [{"title": "Intro"}, {"title": " Rumi "}]}`)
	writeFile(t, filepath.Join(root, "a-ready", MetadataFile),
		"\xEF\xBB\xBF"+`{"name": "Ready or Not...", "year": "2002", "tracks": [{"title": "Lose Your Mind"}]}`)
	writeFile(t, filepath.Join(root, "c-empty", "notes.txt"), "no metadata here")
	writeFile(t, filepath.Join(root, "stray.json"), "{}")

	got, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected album count: got %d want 2", len(got))
	}
	if got[0].Name != "Ready or Not..." || got[0].Year != "2002" {
		t.Fatalf("unexpected first album: %+v", got[0])
	}
	if got[1].Name != "Activate" || got[1].Year != "2010" || got[1].Tracks[1].Title != "Rumi" {
		t.Fatalf("unexpected second album: %+v", got[1])
	}
}

func TestScanRejectsMalformedMetadata(t *testing.T) {
	cases := map[string]string{
		"bad json":      `{"name": `,
		"missing name":  `{"year": 2000, "tracks": []}`,
		"bad year":      `{"name": "A", "year": true}`,
		"untitled song": `{"name": "A", "tracks": [{"title": ""}]}`,
	}
	for name, content := range cases {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "album", MetadataFile), content)
		if _, err := Scan(root); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLyricsPathSanitizes(t *testing.T) {
	album := Album{Dir: "/albums/activate"}
	got := album.LyricsPath("Giving Tree/Taking Boy")
	if want := filepath.Join("/albums/activate", "Giving Tree_Taking Boy.md"); got != want {
		t.Fatalf("unexpected path: got %q want %q", got, want)
	}
}

func TestHasLyrics(t *testing.T) {
	dir := t.TempDir()
	short := filepath.Join(dir, "short.md")
	writeFile(t, short, "# Title\n\nalbum: x\n\n\n")
	full := filepath.Join(dir, "full.md")
	writeFile(t, full, strings.Repeat("la la la\n", 4))

	if ok, err := HasLyrics(short); err != nil || ok {
		t.Fatalf("expected short file to have no lyrics, got %v, %v", ok, err)
	}
	if ok, err := HasLyrics(full); err != nil || !ok {
		t.Fatalf("expected full file to have lyrics, got %v, %v", ok, err)
	}
	if ok, err := HasLyrics(filepath.Join(dir, "missing.md")); err != nil || ok {
		t.Fatalf("expected missing file to have no lyrics, got %v, %v", ok, err)
	}
}
