package logging

import (
	"context"
	"log/slog"
	"slices"
)

// Attr aliases slog.Attr so callers only import this package.
type Attr = slog.Attr

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key, value string) Attr { return slog.String(key, value) }

// Error wraps err under the "error" key. A nil error is logged as "<nil>".
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(discardHandler{})
}

// NewComponentLogger tags logger with a component name. A nil logger yields
// a no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// warnDefaults fill the fields every warning must carry: what happened, what
// to do about it, and what it costs the user.
var warnDefaults = []struct {
	key   string
	value func(eventType string) string
}{
	{FieldEventType, func(eventType string) string { return eventType }},
	{FieldErrorHint, func(string) string { return "rerun with logging.level = \"debug\" for details" }},
	{FieldImpact, func(string) string { return "the operation continued" }},
}

// WarnWithContext logs a warning, adding event_type, error_hint and impact
// when attrs does not already set them.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	for _, def := range warnDefaults {
		if !slices.ContainsFunc(attrs, func(a Attr) bool { return a.Key == def.key }) {
			attrs = append(attrs, String(def.key, def.value(eventType)))
		}
	}
	logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}

func toArgs(attrs []Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}
