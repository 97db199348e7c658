// Package alog provides the structured logger used around command
// compilation, parsing, and shortcut rewriting. Styled after the
// teacher's cli/internal/parser debug logger: a text handler, timestamps
// stripped, gated behind an environment variable rather than a flag so
// library callers never have to thread a verbosity option through.
package alog

import (
	"log/slog"
	"os"
)

// DebugEnv is the environment variable that raises the default logger to
// slog.LevelDebug when set to any non-empty value.
const DebugEnv = "ALCONNA_DEBUG"

// New builds a text-handler logger writing to stderr, level gated by
// DebugEnv and with the timestamp attribute stripped for compact output.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv(DebugEnv) != "" {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return slog.New(handler)
}

// Default is the package-wide logger every component falls back to when
// it isn't given one explicitly (e.g. a Command built without its own
// *slog.Logger).
var Default = New()
