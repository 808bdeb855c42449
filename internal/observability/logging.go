package observability

import (
	"context"
	"log/slog"
	"os"

	"github.com/polarorbit/sounder-data-etl/internal/config"
)

// NewLogger builds the process logger from configuration. The console
// handler honors LOG_LEVEL and LOG_FORMAT; when LOG_FILE is set a second
// always-debug JSON handler is fanned in so the log file keeps everything
// regardless of console verbosity.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.LogLevel)

	var console slog.Handler
	if cfg.LogFormat == "json" {
		console = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		console = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	if cfg.LogFile == "" {
		return slog.New(console)
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger := slog.New(console)
		logger.Warn("cannot open log file, console only", "path", cfg.LogFile, "error", err)
		return logger
	}
	file := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(fanoutHandler{console, file})
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fanoutHandler duplicates records to every wrapped handler that wants them.
type fanoutHandler []slog.Handler

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, sub := range h {
		if sub.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, sub := range h {
		if !sub.Enabled(ctx, r.Level) {
			continue
		}
		if err := sub.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanoutHandler, len(h))
	for i, sub := range h {
		out[i] = sub.WithAttrs(attrs)
	}
	return out
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	out := make(fanoutHandler, len(h))
	for i, sub := range h {
		out[i] = sub.WithGroup(name)
	}
	return out
}
