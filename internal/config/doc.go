// Package config loads, normalizes, and validates lyricindex configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and applies environment overrides such as LYRICINDEX_ARTIST.
// Commands obtain every path, provider setting, and log option through the
// Config type so they see expanded paths and canonical values.
package config
