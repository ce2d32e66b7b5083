// Package albums scans the album source tree: one directory per album, each
// holding a metadata.json descriptor and optional per-track lyrics markdown.
package albums
