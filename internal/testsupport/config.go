// Package testsupport builds throwaway configurations and state for tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"lyricindex/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose paths all live in a fresh temp
// directory. Requests are not rate limited.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.AlbumsDir = filepath.Join(base, "albums")
	cfgVal.Paths.LyricsDir = filepath.Join(base, "lyrics")
	cfgVal.Paths.IndexPath = filepath.Join(base, "song_index.csv")
	cfgVal.Paths.GroundTruthPath = filepath.Join(base, "ground_truth.csv")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	cfgVal.Lyrics.RequestInterval = 0
	cfgVal.Lyrics.RequestTimeout = 5

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithProviders replaces the provider order.
func WithProviders(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Lyrics.Providers = names
	}
}

// WithLRCLibURL points the lrclib provider at url, typically an httptest
// server.
func WithLRCLibURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Lyrics.LRCLibURL = url
	}
}

// WithGroundTruth writes csv to the configured ground truth path.
func WithGroundTruth(csv string) ConfigOption {
	return func(b *configBuilder) {
		WriteFile(b.t, b.cfg.Paths.GroundTruthPath, csv)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.IndexPath)
}

// WriteConfig encodes cfg as TOML at path.
func WriteConfig(t testing.TB, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	WriteFile(t, path, string(data))
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
