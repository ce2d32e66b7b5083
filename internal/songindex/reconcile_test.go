package songindex_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lyricindex/internal/reconcile"
	"lyricindex/internal/songindex"
)

const groundTruth = "Album,Song Title,Track Number\n" +
	"Activate,Intro,1\n" +
	"Ready or Not,Lose Your Mind,6\n" +
	"You're It!,The Road,3\n" +
	"Domesticated,Ticket to Ride,4\n"

func buildCatalog(t *testing.T) *reconcile.Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "albums.csv")
	if err := os.WriteFile(path, []byte(groundTruth), 0o644); err != nil {
		t.Fatalf("write ground truth: %v", err)
	}
	tracks, err := songindex.ReadGroundTruth(path)
	if err != nil {
		t.Fatalf("ReadGroundTruth: %v", err)
	}
	rules, err := reconcile.DefaultRules()
	if err != nil {
		t.Fatalf("DefaultRules: %v", err)
	}
	b := reconcile.NewBuilder(rules)
	b.Add(tracks...)
	catalog, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return catalog
}

func TestReconcileFillsTrackNumbers(t *testing.T) {
	catalog := buildCatalog(t)
	idx, err := songindex.Parse(strings.NewReader("Album,Song Title,Has Lyrics\n" +
		"Ready or Not,Loose Your Mind,No\n" +
		"Activate,Captain's Log Intro,Yes\n" +
		"Activate,Let Go,No\n" +
		"Youre It,Bonus Track,No\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	result := idx.Reconcile(catalog)
	if result.Matched != 2 || result.Unmatched != 2 || result.Changed != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	got := []string{}
	for _, row := range idx.Rows {
		got = append(got, row.Get(songindex.ColumnTrack))
	}
	if strings.Join(got, ",") != "6,1,," {
		t.Fatalf("unexpected track numbers: %q", got)
	}
	if want := "Track Number"; idx.Header[len(idx.Header)-1] != want {
		t.Fatalf("expected appended track column, got %q", idx.Header)
	}
	if len(result.Misses) != 2 || result.Misses[0].Title != "Let Go" {
		t.Fatalf("unexpected misses: %+v", result.Misses)
	}
}

func TestReconcileClearsStaleNumbers(t *testing.T) {
	catalog := buildCatalog(t)
	idx, err := songindex.Parse(strings.NewReader("Album,Song Title,Track Number\nActivate,Let Go,30\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	result := idx.Reconcile(catalog)
	if result.Changed != 1 || idx.Rows[0].Get(songindex.ColumnTrack) != "" {
		t.Fatalf("expected stale number to be cleared, got %+v / %q", result, idx.Rows[0].Get(songindex.ColumnTrack))
	}
}

func TestParseGroundTruthReportsLineNumbers(t *testing.T) {
	_, err := songindex.ParseGroundTruth(strings.NewReader("Album,Song Title,Track Number\nA,B,1\nA,C,three\n"))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected line 3 error, got %v", err)
	}

	tracks, err := songindex.ParseGroundTruth(strings.NewReader("Song Title,Track Number,Album\nB,2,A\n"))
	if err != nil {
		t.Fatalf("ParseGroundTruth: %v", err)
	}
	if len(tracks) != 1 || tracks[0].Album != "A" || tracks[0].Number != 2 || tracks[0].Line != 2 {
		t.Fatalf("unexpected tracks: %+v", tracks)
	}

	if _, err := songindex.ParseGroundTruth(strings.NewReader("Album,Song Title\nA,B\n")); err == nil {
		t.Fatal("expected missing Track Number column error")
	}
}
