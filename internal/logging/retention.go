package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// pruneRunLogs deletes files in dir matching pattern whose modification time
// is more than retentionDays before now. keep is never removed. Zero or
// negative retention keeps everything.
func pruneRunLogs(logger *slog.Logger, dir, pattern, keep string, retentionDays int, now time.Time) {
	if retentionDays <= 0 {
		return
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	for _, path := range matches {
		if path == keep {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "could not remove old run log", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check permissions on logging.dir"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		logger.Debug("old run log removed", String("path", path))
	}
}
