package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"lyricindex/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("LYRICINDEX_ARTIST", "")
	t.Setenv("LYRICINDEX_USER_AGENT", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "lyricindex", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if want := filepath.Join(tempHome, "lyricindex", "song_index.csv"); cfg.Paths.IndexPath != want {
		t.Fatalf("unexpected index path: got %q want %q", cfg.Paths.IndexPath, want)
	}
	if want := filepath.Join(tempHome, ".local", "share", "lyricindex"); cfg.Paths.StateDir != want {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, want)
	}
	if cfg.Paths.RulesPath != "" {
		t.Fatalf("expected built-in rules by default, got %q", cfg.Paths.RulesPath)
	}
	if cfg.LedgerPath() != filepath.Join(cfg.Paths.StateDir, "ledger.db") {
		t.Fatalf("unexpected ledger path: %q", cfg.LedgerPath())
	}
	if cfg.IndexLockPath() != cfg.Paths.IndexPath+".lock" {
		t.Fatalf("unexpected lock path: %q", cfg.IndexLockPath())
	}
	if cfg.Lyrics.Artist != "WookieFoot" {
		t.Fatalf("unexpected default artist: %q", cfg.Lyrics.Artist)
	}
	if strings.Join(cfg.Lyrics.Providers, ",") != "lrclib,genius,songlyrics" {
		t.Fatalf("unexpected providers: %v", cfg.Lyrics.Providers)
	}
	if len(cfg.Lyrics.RetryStatuses) != 1 || cfg.Lyrics.RetryStatuses[0] != "No" {
		t.Fatalf("unexpected retry statuses: %v", cfg.Lyrics.RetryStatuses)
	}
	if len(cfg.Lyrics.SkipKeywords) != 10 {
		t.Fatalf("expected 10 skip keywords, got %v", cfg.Lyrics.SkipKeywords)
	}
	if cfg.RequestInterval() != 1500*time.Millisecond {
		t.Fatalf("unexpected request interval: %s", cfg.RequestInterval())
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Fatalf("unexpected request timeout: %s", cfg.RequestTimeout())
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("LYRICINDEX_ARTIST", "")
	configPath := filepath.Join(tempDir, "lyricindex.toml")
	contents := `
[paths]
index_path = "` + filepath.ToSlash(filepath.Join(tempDir, "index.csv")) + `"
lyrics_dir = "` + filepath.ToSlash(filepath.Join(tempDir, "lyrics")) + `"

[lyrics]
artist = "Rising Appalachia"
providers = [" Genius ", "lrclib", "genius"]
retry_statuses = ["failed", "NO"]
skip_keywords = [" (Intro) ", ""]
lrclib_url = "http://localhost:9999/"

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q (exists=%v)", resolved, exists)
	}
	if cfg.Paths.IndexPath != filepath.Join(tempDir, "index.csv") {
		t.Fatalf("unexpected index path: %q", cfg.Paths.IndexPath)
	}
	if cfg.Lyrics.Artist != "Rising Appalachia" {
		t.Fatalf("unexpected artist: %q", cfg.Lyrics.Artist)
	}
	if strings.Join(cfg.Lyrics.Providers, ",") != "genius,lrclib" {
		t.Fatalf("expected providers to be cleaned, got %v", cfg.Lyrics.Providers)
	}
	if strings.Join(cfg.Lyrics.RetryStatuses, ",") != "Failed,No" {
		t.Fatalf("expected canonical statuses, got %v", cfg.Lyrics.RetryStatuses)
	}
	if len(cfg.Lyrics.SkipKeywords) != 1 || cfg.Lyrics.SkipKeywords[0] != "(intro)" {
		t.Fatalf("unexpected skip keywords: %v", cfg.Lyrics.SkipKeywords)
	}
	if cfg.Lyrics.LRCLibURL != "http://localhost:9999" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Lyrics.LRCLibURL)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(configPath, []byte("[lyrics]\nartsit = \"typo\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "lyricindex.toml")

	type payload struct {
		Lyrics struct {
			Artist    string `toml:"artist"`
			UserAgent string `toml:"user_agent"`
		} `toml:"lyrics"`
	}
	custom := payload{}
	custom.Lyrics.Artist = "file-artist"
	custom.Lyrics.UserAgent = "file-agent"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("LYRICINDEX_ARTIST", "env-artist")
	t.Setenv("LYRICINDEX_USER_AGENT", "env-agent")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Lyrics.Artist != "env-artist" {
		t.Errorf("expected artist from env, got %q", cfg.Lyrics.Artist)
	}
	if cfg.Lyrics.UserAgent != "env-agent" {
		t.Errorf("expected user agent from env, got %q", cfg.Lyrics.UserAgent)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	defaults := config.Default()
	if strings.Join(cfg.Lyrics.SkipKeywords, ",") != strings.Join(defaults.Lyrics.SkipKeywords, ",") {
		t.Fatalf("sample skip keywords drifted from defaults: %v", cfg.Lyrics.SkipKeywords)
	}
	if cfg.Lyrics.RequestInterval != defaults.Lyrics.RequestInterval {
		t.Fatalf("sample request interval drifted from defaults: %d", cfg.Lyrics.RequestInterval)
	}
	if cfg.Paths.IndexPath != defaults.Paths.IndexPath {
		t.Fatalf("sample index path drifted from defaults: %q", cfg.Paths.IndexPath)
	}
	endpoints := map[string][2]string{
		"lyricsovh_url": {cfg.Lyrics.LyricsOVHURL, defaults.Lyrics.LyricsOVHURL},
		"elyrics_url":   {cfg.Lyrics.ELyricsURL, defaults.Lyrics.ELyricsURL},
		"lyricsaz_url":  {cfg.Lyrics.LyricsAZURL, defaults.Lyrics.LyricsAZURL},
	}
	for key, pair := range endpoints {
		if pair[0] != pair[1] {
			t.Fatalf("sample %s drifted from defaults: %q", key, pair[0])
		}
	}
}

func TestValidateAcceptsEveryProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Lyrics.Providers = []string{"lrclib", "genius", "songlyrics", "lyricsovh", "elyrics", "lyricsaz"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"missing artist", func(c *config.Config) { c.Lyrics.Artist = "" }, "lyrics.artist"},
		{"no providers", func(c *config.Config) { c.Lyrics.Providers = nil }, "lyrics.providers"},
		{"unknown provider", func(c *config.Config) { c.Lyrics.Providers = []string{"azlyrics"} }, "azlyrics"},
		{"unknown status", func(c *config.Config) { c.Lyrics.RetryStatuses = []string{"Maybe"} }, "lyrics.retry_statuses"},
		{"negative interval", func(c *config.Config) { c.Lyrics.RequestInterval = -1 }, "lyrics.request_interval"},
		{"zero timeout", func(c *config.Config) { c.Lyrics.RequestTimeout = 0 }, "lyrics.request_timeout"},
		{"threshold too high", func(c *config.Config) { c.Lyrics.VerifyThreshold = 1.5 }, "lyrics.verify_threshold"},
		{"missing index", func(c *config.Config) { c.Paths.IndexPath = "" }, "paths.index_path"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("unexpected error: got %q want mention of %q", err, tc.want)
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
