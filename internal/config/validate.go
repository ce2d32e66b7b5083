package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	knownProviders = []string{"lrclib", "genius", "songlyrics", "lyricsovh", "elyrics", "lyricsaz"}
	knownStatuses  = []string{"Yes", "No", "Failed", "Skipped"}
	knownLevels    = []string{"debug", "info", "warn", "error"}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLyrics(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.IndexPath == "" {
		return errors.New("paths.index_path must be set")
	}
	if c.Paths.LyricsDir == "" {
		return errors.New("paths.lyrics_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateLyrics() error {
	if c.Lyrics.Artist == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = configDirPath
		}
		return fmt.Errorf("lyrics.artist is required. Set LYRICINDEX_ARTIST or edit %s (create with 'lyricindex config init')", defaultPath)
	}
	if len(c.Lyrics.Providers) == 0 {
		return errors.New("lyrics.providers must list at least one provider")
	}
	for _, provider := range c.Lyrics.Providers {
		if !slices.Contains(knownProviders, provider) {
			return fmt.Errorf("lyrics.providers: unknown provider %q (known: %s)", provider, strings.Join(knownProviders, ", "))
		}
	}
	for _, status := range c.Lyrics.RetryStatuses {
		if !slices.Contains(knownStatuses, status) {
			return fmt.Errorf("lyrics.retry_statuses: unknown status %q (known: %s)", status, strings.Join(knownStatuses, ", "))
		}
	}
	if c.Lyrics.RequestInterval < 0 {
		return errors.New("lyrics.request_interval must be zero or positive")
	}
	if c.Lyrics.RequestTimeout <= 0 {
		return errors.New("lyrics.request_timeout must be positive")
	}
	if c.Lyrics.VerifyThreshold <= 0 || c.Lyrics.VerifyThreshold > 1 {
		return errors.New("lyrics.verify_threshold must be in (0, 1]")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !slices.Contains(knownLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level: unsupported value %q (known: %s)", c.Logging.Level, strings.Join(knownLevels, ", "))
	}
	return nil
}
