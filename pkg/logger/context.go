package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{ name string }

var (
	messageIDKey = contextKey{"message_id"}
	presetKey    = contextKey{"preset"}
)

// WithMessageID stores the outgoing message identifier in ctx.
func WithMessageID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, messageIDKey, id)
}

// MessageID returns the message identifier stored in ctx, if any.
func MessageID(ctx context.Context) string {
	id, _ := ctx.Value(messageIDKey).(string)
	return id
}

// WithPreset stores the active preset (message type) name in ctx.
func WithPreset(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, presetKey, name)
}

// Preset returns the preset name stored in ctx, if any.
func Preset(ctx context.Context) string {
	name, _ := ctx.Value(presetKey).(string)
	return name
}

// MessageIDExtractor adds a message_id attribute when ctx carries one.
func MessageIDExtractor() ContextExtractor {
	return stringExtractor("message_id", MessageID)
}

// PresetExtractor adds a preset attribute when ctx carries one.
func PresetExtractor() ContextExtractor {
	return stringExtractor("preset", Preset)
}

func stringExtractor(key string, get func(context.Context) string) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := get(ctx); v != "" {
			return slog.String(key, v), true
		}
		return slog.Attr{}, false
	}
}
