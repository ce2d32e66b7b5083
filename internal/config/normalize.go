package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLyrics()
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key   string
		value *string
	}{
		{"paths.albums_dir", &c.Paths.AlbumsDir},
		{"paths.lyrics_dir", &c.Paths.LyricsDir},
		{"paths.index_path", &c.Paths.IndexPath},
		{"paths.ground_truth_path", &c.Paths.GroundTruthPath},
		{"paths.rules_path", &c.Paths.RulesPath},
		{"paths.state_dir", &c.Paths.StateDir},
	}
	for _, field := range fields {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	if c.Paths.StateDir == "" {
		expanded, err := expandPath(defaultStateDir)
		if err != nil {
			return fmt.Errorf("paths.state_dir: %w", err)
		}
		c.Paths.StateDir = expanded
	}
	return nil
}

func (c *Config) normalizeLyrics() {
	if value, ok := os.LookupEnv("LYRICINDEX_ARTIST"); ok && strings.TrimSpace(value) != "" {
		c.Lyrics.Artist = value
	}
	if value, ok := os.LookupEnv("LYRICINDEX_USER_AGENT"); ok && strings.TrimSpace(value) != "" {
		c.Lyrics.UserAgent = value
	}
	c.Lyrics.Artist = strings.TrimSpace(c.Lyrics.Artist)
	c.Lyrics.UserAgent = strings.TrimSpace(c.Lyrics.UserAgent)
	if c.Lyrics.UserAgent == "" {
		c.Lyrics.UserAgent = defaultUserAgent
	}

	c.Lyrics.Providers = cleanList(c.Lyrics.Providers, strings.ToLower)
	c.Lyrics.RetryStatuses = cleanList(c.Lyrics.RetryStatuses, canonicalStatus)
	if len(c.Lyrics.RetryStatuses) == 0 {
		c.Lyrics.RetryStatuses = append([]string(nil), defaultRetryStatuses...)
	}
	c.Lyrics.SkipKeywords = cleanList(c.Lyrics.SkipKeywords, strings.ToLower)

	if c.Lyrics.Burst <= 0 {
		c.Lyrics.Burst = defaultBurst
	}
	endpoints := []struct {
		value    *string
		fallback string
	}{
		{&c.Lyrics.LRCLibURL, defaultLRCLibURL},
		{&c.Lyrics.GeniusURL, defaultGeniusURL},
		{&c.Lyrics.SongLyricsURL, defaultSongLyricsURL},
		{&c.Lyrics.LyricsOVHURL, defaultLyricsOVHURL},
		{&c.Lyrics.ELyricsURL, defaultELyricsURL},
		{&c.Lyrics.LyricsAZURL, defaultLyricsAZURL},
	}
	for _, endpoint := range endpoints {
		*endpoint.value = strings.TrimRight(strings.TrimSpace(*endpoint.value), "/")
		if *endpoint.value == "" {
			*endpoint.value = endpoint.fallback
		}
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
	dir, err := expandPath(strings.TrimSpace(c.Logging.Dir))
	if err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	c.Logging.Dir = dir
	return nil
}

// cleanList trims entries, applies canon, and drops empties and duplicates
// while keeping order.
func cleanList(values []string, canon func(string) string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = canon(strings.TrimSpace(value))
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

// canonicalStatus maps a Has Lyrics value to its canonical capitalization.
// Unknown values are returned unchanged so validation can report them.
func canonicalStatus(value string) string {
	for _, status := range knownStatuses {
		if strings.EqualFold(value, status) {
			return status
		}
	}
	return value
}
