package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"lyricindex/internal/frontmatter"
	"lyricindex/internal/songindex"
	"lyricindex/internal/testsupport"
)

const loseYourMind = "lose your mind\nfind it again\nround and round\nwe go"

func lrclibStub(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/get" && r.URL.Query().Get("track_name") == "Lose Your Mind":
			fmt.Fprintf(w, `{"id": 6, "trackName": "Lose Your Mind", "plainLyrics": %q}`, loseYourMind)
		case r.URL.Path == "/api/search" && r.URL.Query().Get("track_name") == "Lose Your Mind":
			fmt.Fprintf(w, `[{"id": 6, "trackName": "Lose Your Mind", "plainLyrics": %q, "syncedLyrics": "[00:01.00] lose your mind"}]`, loseYourMind)
		case r.URL.Path == "/api/search":
			fmt.Fprint(w, `[]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func setupFetchEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	env := setupCLITestEnv(t,
		testsupport.WithProviders("lrclib"),
		testsupport.WithLRCLibURL(lrclibStub(t).URL),
	)
	writeFile(t, env.cfg.Paths.IndexPath, "Album,Year,Song Title,Track Number,Has Lyrics\n"+
		"Ready or Not...,2002,Lose Your Mind,6,No\n"+
		"Activate,2010,Intro (Shock),,No\n"+
		"Activate,2010,Let Go,,No\n")
	return env
}

func TestLyricsFetchUpdatesIndexAndLedger(t *testing.T) {
	env := setupFetchEnv(t)

	out, _, err := runCLI(t, []string{"lyrics", "fetch"}, env.configPath)
	if err != nil {
		t.Fatalf("lyrics fetch: %v", err)
	}
	requireContains(t, out, "Run ID: ")
	requireContains(t, out, "Run log: "+env.cfg.Logging.Dir)
	runID := strings.TrimSpace(strings.SplitN(strings.SplitN(out, "Run ID: ", 2)[1], "\n", 2)[0])

	idx, err := songindex.Read(env.cfg.Paths.IndexPath)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"Lose Your Mind": songindex.StatusYes,
		"Intro (Shock)":  songindex.StatusSkipped,
		"Let Go":         songindex.StatusFailed,
	}
	for _, row := range idx.Rows {
		title := row.Get(songindex.ColumnTitle)
		if got := row.Get(songindex.ColumnLyrics); got != want[title] {
			t.Fatalf("unexpected status for %s: got %q want %q", title, got, want[title])
		}
	}

	doc, err := frontmatter.Read(frontmatter.LyricsPath(env.cfg.Paths.LyricsDir, "Ready or Not...", "Lose Your Mind"))
	if err != nil {
		t.Fatalf("read lyrics document: %v", err)
	}
	if !strings.Contains(doc.Body, "find it again") {
		t.Fatalf("unexpected document body: %q", doc.Body)
	}

	out, _, err = runCLI(t, []string{"lyrics", "history", "Activate", "Let Go"}, env.configPath)
	if err != nil {
		t.Fatalf("lyrics history: %v", err)
	}
	requireContains(t, out, "lrclib")
	requireContains(t, out, "not_found")

	out, _, err = runCLI(t, []string{"lyrics", "runs"}, env.configPath)
	if err != nil {
		t.Fatalf("lyrics runs: %v", err)
	}
	requireContains(t, out, runID)
	requireContains(t, out, "Ledger: "+filepath.Join(env.cfg.Paths.StateDir, "ledger.db"))

	out, _, err = runCLI(t, []string{"lyrics", "history", "Ready or Not...", "Lose Your Mind", "--forget"}, env.configPath)
	if err != nil {
		t.Fatalf("lyrics history --forget: %v", err)
	}
	requireContains(t, out, "Forgot 1 remembered URL(s)")
}

func TestLyricsFetchDryRunLeavesIndex(t *testing.T) {
	env := setupFetchEnv(t)
	before, err := os.ReadFile(env.cfg.Paths.IndexPath)
	if err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"lyrics", "fetch", "--dry-run", "--status", "no"}, env.configPath)
	if err != nil {
		t.Fatalf("lyrics fetch --dry-run: %v", err)
	}
	requireContains(t, out, "Dry run; nothing fetched or written")

	after, err := os.ReadFile(env.cfg.Paths.IndexPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != string(before) {
		t.Fatalf("dry run changed the index: before %q after %q", before, after)
	}
	if _, err := os.Stat(env.cfg.Paths.LyricsDir); !os.IsNotExist(err) {
		t.Fatalf("dry run wrote lyrics, stat err=%v", err)
	}
}

func TestLyricsFetchRejectsUnknownStatus(t *testing.T) {
	env := setupFetchEnv(t)
	_, _, err := runCLI(t, []string{"lyrics", "fetch", "--status", "Maybe"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "unknown value") {
		t.Fatalf("expected unknown status error, got %v", err)
	}
}

func TestLyricsFetchRefusesConcurrentRun(t *testing.T) {
	env := setupFetchEnv(t)
	lock := flock.New(env.cfg.IndexLockPath())
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = lock.Unlock() })

	_, _, err = runCLI(t, []string{"lyrics", "fetch"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "another fetch run") {
		t.Fatalf("expected lock error, got %v", err)
	}
}

func TestLyricsHistoryEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"lyrics", "history", "Activate", "Rumi"}, env.configPath)
	if err != nil {
		t.Fatalf("lyrics history: %v", err)
	}
	requireContains(t, out, "No fetch attempts recorded for Activate / Rumi")
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.StateDir, "ledger.db")); err != nil {
		t.Fatalf("expected ledger database: %v", err)
	}
}

func TestLyricsRunsEmptyNamesLedger(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"lyrics", "runs"}, env.configPath)
	if err != nil {
		t.Fatalf("lyrics runs: %v", err)
	}
	requireContains(t, out, "No fetch runs recorded in "+filepath.Join(env.cfg.Paths.StateDir, "ledger.db"))
}

func TestLyricsStandardizeRewritesFrontmatter(t *testing.T) {
	env := setupCLITestEnv(t)
	doc := filepath.Join(env.cfg.Paths.LyricsDir, "activate", "let-go.md")
	writeFile(t, doc, "---\nlrcLibId: 12\ntitle: Let Go\n---\n\nhold on\n")

	out, _, err := runCLI(t, []string{"lyrics", "standardize", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("lyrics standardize --dry-run: %v", err)
	}
	requireContains(t, out, "activate/let-go.md")
	requireContains(t, out, "Dry run; documents not modified")
	if data, _ := os.ReadFile(doc); strings.Contains(string(data), "slug") {
		t.Fatal("dry run rewrote the document")
	}

	out, _, err = runCLI(t, []string{"lyrics", "standardize"}, env.configPath)
	if err != nil {
		t.Fatalf("lyrics standardize: %v", err)
	}
	requireContains(t, out, "Updated")
	parsed, err := frontmatter.Read(doc)
	if err != nil {
		t.Fatalf("read standardized document: %v", err)
	}
	if parsed.String(frontmatter.KeySlug) != "let-go" || parsed.String(frontmatter.KeyAlbumID) != "activate" || parsed.String(frontmatter.KeyLrcLibID) != "12" {
		t.Fatalf("unexpected fields: %v", parsed.Fields)
	}
	if parsed.Body != "hold on\n" {
		t.Fatalf("unexpected body: %q", parsed.Body)
	}
}

func TestLyricsFetchRecordsRunInLedger(t *testing.T) {
	env := setupFetchEnv(t)
	if _, _, err := runCLI(t, []string{"lyrics", "fetch", "--limit", "1"}, env.configPath); err != nil {
		t.Fatalf("lyrics fetch: %v", err)
	}

	store := testsupport.MustOpenLedger(t, env.cfg)
	runs, err := store.Runs(context.Background(), 0)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Found != 1 || runs[0].NotFound != 0 {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	url, err := store.KnownURL(context.Background(), "lrclib", "Ready or Not...", "Lose Your Mind")
	if err != nil {
		t.Fatalf("KnownURL: %v", err)
	}
	if !strings.HasSuffix(url, "/api/get/6") {
		t.Fatalf("unexpected remembered url: %q", url)
	}
}

func TestLyricsVerifyApplyStoresRecord(t *testing.T) {
	env := setupFetchEnv(t)
	matched := frontmatter.LyricsPath(env.cfg.Paths.LyricsDir, "Ready or Not...", "Lose Your Mind")
	doc := frontmatter.NewLyricsDocument(frontmatter.Song{Album: "Ready or Not...", Title: "Lose Your Mind", Track: 6}, loseYourMind)
	if err := frontmatter.Write(matched, doc); err != nil {
		t.Fatal(err)
	}
	missing := frontmatter.LyricsPath(env.cfg.Paths.LyricsDir, "Activate", "Let Go")
	if err := frontmatter.Write(missing, frontmatter.NewLyricsDocument(frontmatter.Song{Album: "Activate", Title: "Let Go"}, "let it go")); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"lyrics", "verify"}, env.configPath)
	if err != nil {
		t.Fatalf("lyrics verify: %v", err)
	}
	requireContains(t, out, "pass --apply")
	if reread, err := frontmatter.Read(matched); err != nil || reread.String(frontmatter.KeyLrcLibID) != "" {
		t.Fatalf("verify without --apply modified the document: %v", err)
	}

	out, _, err = runCLI(t, []string{"lyrics", "verify", "--apply"}, env.configPath)
	if err != nil {
		t.Fatalf("lyrics verify --apply: %v", err)
	}
	requireContains(t, out, "matched")
	requireContains(t, out, "not_found")

	reread, err := frontmatter.Read(matched)
	if err != nil {
		t.Fatal(err)
	}
	if got := reread.String(frontmatter.KeyLrcLibID); got != "6" {
		t.Fatalf("unexpected lrcLibId: got %q want %q", got, "6")
	}
	if got := reread.String(frontmatter.KeyVerified); got != "true" {
		t.Fatalf("unexpected isVerified: got %q want %q", got, "true")
	}
}
