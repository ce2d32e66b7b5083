package lyrics

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"lyricindex/internal/frontmatter"
	"lyricindex/internal/logging"
)

const rumiLyrics = "Out beyond ideas of wrongdoing and rightdoing\nthere is a field\nI'll meet you there"

func writeLyricsDoc(t *testing.T, dir, album, title, body string, extra map[string]any) string {
	t.Helper()
	doc := frontmatter.NewLyricsDocument(frontmatter.Song{Artist: "WookieFoot", Album: album, Title: title}, body)
	for key, value := range extra {
		doc.Set(key, value)
	}
	path := frontmatter.LyricsPath(dir, album, title)
	if err := frontmatter.Write(path, doc); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return path
}

func lrclibServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/get/42":
			fmt.Fprintf(w, `{"id": 42, "trackName": "Rumi", "plainLyrics": %q, "syncedLyrics": "[00:01.00] Out beyond ideas"}`, rumiLyrics)
		case "/api/search":
			switch r.URL.Query().Get("track_name") {
			case "Rumi":
				fmt.Fprintf(w, `[{"id": 9, "trackName": "Rumi", "plainLyrics": "totally different words about nothing"}, {"id": 42, "trackName": "Rumi", "plainLyrics": %q}]`, rumiLyrics)
			case "Air":
				fmt.Fprint(w, `[{"id": 5, "trackName": "Air", "plainLyrics": "breathe in breathe out the sky is wide"}]`)
			default:
				fmt.Fprint(w, `[]`)
			}
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestVerifyMatchWritesRecord(t *testing.T) {
	server := lrclibServer(t)
	dir := t.TempDir()
	path := writeLyricsDoc(t, dir, "Activate", "Rumi", rumiLyrics, nil)

	verifier := NewVerifier(NewLRCLib(testClient(), server.URL), "WookieFoot", 0.8, true, logging.NewNop())
	result, err := verifier.Verify(context.Background(), path)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if result.Status != VerifyMatched || result.RecordID != 42 {
		t.Fatalf("unexpected verification: %+v", result)
	}

	doc, err := frontmatter.Read(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got := doc.String(frontmatter.KeyLrcLibID); got != "42" {
		t.Fatalf("unexpected lrcLibId: %q", got)
	}
	if got := doc.String(frontmatter.KeyVerified); got != "true" {
		t.Fatalf("unexpected isVerified: %q", got)
	}
	if got := doc.String(frontmatter.KeySyncedLyrics); got == "" {
		t.Fatal("expected synced lyrics to be stored")
	}
}

func TestVerifyUsesStoredID(t *testing.T) {
	server := lrclibServer(t)
	dir := t.TempDir()
	// The title would find nothing by search; the stored ID must be used.
	path := writeLyricsDoc(t, dir, "Activate", "Unlisted", rumiLyrics, map[string]any{frontmatter.KeyLrcLibID: 42})

	verifier := NewVerifier(NewLRCLib(testClient(), server.URL), "WookieFoot", 0.8, false, logging.NewNop())
	result, err := verifier.Verify(context.Background(), path)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if result.Status != VerifyMatched || result.RecordID != 42 {
		t.Fatalf("unexpected verification: %+v", result)
	}
}

func TestVerifyMismatchLeavesDocument(t *testing.T) {
	server := lrclibServer(t)
	dir := t.TempDir()
	path := writeLyricsDoc(t, dir, "Activate", "Air", "completely unrelated text for this song", nil)
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	verifier := NewVerifier(NewLRCLib(testClient(), server.URL), "WookieFoot", 0.8, true, logging.NewNop())
	result, err := verifier.Verify(context.Background(), path)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if result.Status != VerifyMismatch {
		t.Fatalf("expected mismatch, got %+v", result)
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Fatal("mismatched document must not be rewritten")
	}
}

func TestVerifyDirReportsEveryDocument(t *testing.T) {
	server := lrclibServer(t)
	dir := t.TempDir()
	writeLyricsDoc(t, dir, "Activate", "Rumi", rumiLyrics, nil)
	writeLyricsDoc(t, dir, "Activate", "Nowhere", "nothing here", nil)
	broken := filepath.Join(dir, "activate", "broken.md")
	if err := os.WriteFile(broken, []byte("---\ntitle: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	verifier := NewVerifier(NewLRCLib(testClient(), server.URL), "WookieFoot", 0.8, false, logging.NewNop())
	results, err := verifier.VerifyDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("VerifyDir: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}
	statuses := map[string]string{}
	for _, r := range results {
		statuses[r.Title] = r.Status
	}
	if statuses["Rumi"] != VerifyMatched || statuses["Nowhere"] != VerifyNotFound {
		t.Fatalf("unexpected statuses: %v", statuses)
	}
}
