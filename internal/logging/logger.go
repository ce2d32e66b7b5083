package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lyricindex/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Writer receives log output; nil means stderr.
	Writer      io.Writer
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	handler, err := newHandler(opts)
	if err != nil {
		return nil, err
	}
	return slog.New(handler), nil
}

func newHandler(opts Options) (slog.Handler, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	addSource := opts.Development || level <= slog.LevelDebug

	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "json":
		return newJSONHandler(writer, levelVar, addSource), nil
	case "", "console":
		return newPrettyHandler(writer, levelVar, addSource), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig creates the command logger from the [logging] section.
func NewFromConfig(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Writer: w})
	}
	return New(Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Writer: w})
}

// RunLog is a JSON log file capturing one fetch run.
type RunLog struct {
	Path string
	file *os.File
}

// Close flushes and closes the run log file.
func (r *RunLog) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return r.file.Close()
}

// runLogPattern matches the files written by OpenRunLog.
const runLogPattern = "fetch-*.log"

// OpenRunLog tees base into a JSON file under dir named after the run, and
// prunes run logs older than retentionDays. An empty dir returns base
// unchanged and a nil RunLog.
func OpenRunLog(base *slog.Logger, dir, runID string, retentionDays int, now time.Time) (*slog.Logger, *RunLog, error) {
	if strings.TrimSpace(dir) == "" {
		return base, nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	name := fmt.Sprintf("fetch-%s-%s.log", now.UTC().Format("20060102T150405"), shortRunID(runID))
	path := filepath.Join(dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open run log: %w", err)
	}
	fileHandler, err := newHandler(Options{Level: "debug", Format: "json", Writer: file})
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}
	logger := TeeLogger(base, fileHandler).With(String(FieldRunID, runID))
	pruneRunLogs(logger, dir, runLogPattern, path, retentionDays, now)
	return logger, &RunLog{Path: path, file: file}, nil
}

func shortRunID(runID string) string {
	runID = strings.ReplaceAll(strings.TrimSpace(runID), "-", "")
	if len(runID) > 8 {
		runID = runID[:8]
	}
	if runID == "" {
		return "run"
	}
	return runID
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
