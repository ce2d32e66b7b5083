package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths locates the files and directories lyricindex works on.
type Paths struct {
	AlbumsDir       string `toml:"albums_dir"`
	LyricsDir       string `toml:"lyrics_dir"`
	IndexPath       string `toml:"index_path"`
	GroundTruthPath string `toml:"ground_truth_path"`
	// RulesPath points at a reconciliation rules JSON file. Empty uses the
	// built-in rules.
	RulesPath string `toml:"rules_path"`
	StateDir  string `toml:"state_dir"`
}

// Lyrics configures the lyrics fetch run and its providers.
type Lyrics struct {
	Artist    string   `toml:"artist"`
	Providers []string `toml:"providers"`
	UserAgent string   `toml:"user_agent"`
	// RequestInterval is the minimum spacing between HTTP requests in
	// milliseconds, shared by every provider.
	RequestInterval int `toml:"request_interval"`
	Burst           int `toml:"burst"`
	// RequestTimeout is the per-request timeout in seconds.
	RequestTimeout  int      `toml:"request_timeout"`
	RetryStatuses   []string `toml:"retry_statuses"`
	SkipKeywords    []string `toml:"skip_keywords"`
	VerifyThreshold float64  `toml:"verify_threshold"`
	LRCLibURL       string   `toml:"lrclib_url"`
	GeniusURL       string   `toml:"genius_url"`
	SongLyricsURL   string   `toml:"songlyrics_url"`
	LyricsOVHURL    string   `toml:"lyricsovh_url"`
	ELyricsURL      string   `toml:"elyrics_url"`
	LyricsAZURL     string   `toml:"lyricsaz_url"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// Dir receives one JSON log file per fetch run. Empty disables run logs.
	Dir           string `toml:"dir"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for lyricindex.
//
// Configuration sections:
//   - Paths: album metadata, lyrics documents, CSV files, and state
//   - Lyrics: artist, providers, rate limits, and fetch selection
//   - Logging: log format, level, and run log retention
type Config struct {
	Paths   Paths   `toml:"paths"`
	Lyrics  Lyrics  `toml:"lyrics"`
	Logging Logging `toml:"logging"`
}

const (
	configDirPath   = "~/.config/lyricindex/config.toml"
	projectFileName = "lyricindex.toml"
	ledgerFileName  = "ledger.db"
)

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(configDirPath)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded. When path is empty the default
// location is tried, then ./lyricindex.toml.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(configDirPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectFileName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory, plus the log directory when
// run logs are enabled.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir}
	if c.Logging.Dir != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LedgerPath returns the fetch ledger database path.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.StateDir, ledgerFileName)
}

// IndexLockPath returns the lock file guarding the song index during a fetch
// run.
func (c *Config) IndexLockPath() string {
	return c.Paths.IndexPath + ".lock"
}

// RequestInterval returns the configured spacing between HTTP requests.
func (c *Config) RequestInterval() time.Duration {
	return time.Duration(c.Lyrics.RequestInterval) * time.Millisecond
}

// RequestTimeout returns the configured per-request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Lyrics.RequestTimeout) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for flags that override
// configured paths.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
