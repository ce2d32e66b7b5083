// Package logging builds the slog loggers used by lyricindex commands.
//
// Console output goes through a readable multi-line handler; JSON output and
// per-run log files use slog's JSON handler with short keys. Helpers here keep
// attribute names consistent (component, run_id, album, title) and enforce
// that warnings carry an event type, a hint, and their impact.
package logging
