package logger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/lo"
)

// fanoutHandler copies each record to every handler enabled for its level.
// A failing handler does not stop the others; their errors are joined.
type fanoutHandler []slog.Handler

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return lo.SomeBy(f, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

func (f fanoutHandler) Handle(ctx context.Context, rec slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, rec.Level) {
			errs = append(errs, h.Handle(ctx, rec.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return fanoutHandler(lo.Map(f, func(h slog.Handler, _ int) slog.Handler { return h.WithAttrs(attrs) }))
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	return fanoutHandler(lo.Map(f, func(h slog.Handler, _ int) slog.Handler { return h.WithGroup(name) }))
}
