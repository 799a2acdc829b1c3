package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// newLogger builds the application logger: structured JSON to stdout at the
// configured level, plus, when file logging is enabled, an info log with the
// full stream and an error log carrying warnings and errors only. The
// returned closer flushes and closes the log files.
func newLogger(cfg *Config) (*slog.Logger, io.Closer, error) {
	handlers := []slog.Handler{
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.App.Level()}),
	}

	var files closers
	if cfg.Logs.Enabled() {
		infoFile, err := openLogFile(cfg.Logs.InfoPath)
		if err != nil {
			return nil, nil, err
		}
		errFile, err := openLogFile(cfg.Logs.ErrorPath)
		if err != nil {
			infoFile.Close()
			return nil, nil, err
		}
		files = closers{infoFile, errFile}
		handlers = append(handlers,
			slog.NewJSONHandler(infoFile, &slog.HandlerOptions{Level: cfg.App.Level()}),
			slog.NewJSONHandler(errFile, &slog.HandlerOptions{Level: slog.LevelWarn}),
		)
	}

	return slog.New(&teeHandler{handlers: handlers}), files, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

type closers []io.Closer

func (c closers) Close() error {
	var first error
	for _, cl := range c {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// teeHandler fans every record out to each handler that accepts its level.
type teeHandler struct {
	handlers []slog.Handler
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range t.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &teeHandler{handlers: next}
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithGroup(name)
	}
	return &teeHandler{handlers: next}
}
