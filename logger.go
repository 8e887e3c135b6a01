package neardup

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with neardup-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSeed adds the projection seed to the logger.
func (l *Logger) WithSeed(seed int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("seed", seed),
	}
}

// WithBands adds the band layout to the logger.
func (l *Logger) WithBands(bands, rows int) *Logger {
	return &Logger{
		Logger: l.Logger.With("bands", bands, "rows", rows),
	}
}

// LogSignatures logs the signature generation stage.
func (l *Logger) LogSignatures(ctx context.Context, items, bands, rows int, duration time.Duration) {
	l.DebugContext(ctx, "signatures generated",
		"items", items,
		"bands", bands,
		"rows", rows,
		"duration", duration,
	)
}

// LogCandidates logs the bucketing stage. raw counts generation events
// across bands before deduplication.
func (l *Logger) LogCandidates(ctx context.Context, candidates int, raw int64, duration time.Duration) {
	l.DebugContext(ctx, "candidates generated",
		"candidates", candidates,
		"raw", raw,
		"duration", duration,
	)
}

// LogRefinement logs the refinement stage.
func (l *Logger) LogRefinement(ctx context.Context, candidates, duplicates int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "refinement failed",
			"candidates", candidates,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "refinement completed",
			"candidates", candidates,
			"duplicates", duplicates,
			"duration", duration,
		)
	}
}
