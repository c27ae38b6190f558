package logger

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
)

// ContextExtractor pulls one attribute out of a context, reporting false when
// the context carries nothing for it.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// ContextHandler adds context-derived attributes to every record it handles.
// Extractors run per record, so per-message values never leak between calls.
type ContextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

// NewContextHandler wraps next. Nil extractors are dropped.
func NewContextHandler(next slog.Handler, extractors ...ContextExtractor) *ContextHandler {
	return &ContextHandler{
		next:       next,
		extractors: lo.Filter(extractors, func(ex ContextExtractor, _ int) bool { return ex != nil }),
	}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}
