package logging

import (
	"io"
	"log/slog"
	"os"
)

// LogLevel selects how much of the lex/compile/run pipeline gets traced
// to stderr, set once from the CLI's --loglevel flag.
type LogLevel string

const (
	LogLevelNone  LogLevel = "none"
	LogLevelInfo  LogLevel = "info"
	LogLevelDebug LogLevel = "debug"
)

var logger *slog.Logger

// Setup installs the package-level logger. LogLevelNone discards
// everything; LogLevelInfo shows pipeline phases (lex/compile/run);
// LogLevelDebug adds per-Verse call tracing.
func Setup(level LogLevel) {
	sink := io.Discard
	if level != LogLevelNone {
		sink = os.Stderr
	}

	slogLevel := slog.LevelDebug
	if level == LogLevelInfo {
		slogLevel = slog.LevelInfo
	}
	handler := slog.NewTextHandler(sink, &slog.HandlerOptions{
		Level: slogLevel,
	})
	logger = slog.New(handler)
}
