package logger

import (
	"io"
	"log/slog"
	"os"
)

// New creates a JSON logger writing to stdout.
// Message id and preset extractors are always installed; extra extractors run after them.
func New(extractors ...ContextExtractor) *slog.Logger {
	return NewWithWriter(os.Stdout, slog.LevelInfo, extractors...)
}

// NewWithWriter creates a JSON logger writing to w at the given minimum level.
func NewWithWriter(w io.Writer, level slog.Level, extractors ...ContextExtractor) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewContextHandler(h, withDefaults(extractors)...))
}

func withDefaults(extractors []ContextExtractor) []ContextExtractor {
	return append([]ContextExtractor{MessageIDExtractor(), PresetExtractor()}, extractors...)
}
