// Package logger provides the structured logging used across pigeon.
//
// Loggers are plain *slog.Logger values. Handlers are wrapped in a ContextHandler
// that pulls attributes out of the context on every call, so a delivery
// failure logged deep inside the mailer still carries the message id and the
// preset that produced it:
//
//	ctx = logger.WithPreset(ctx, "user_welcome")
//	ctx = logger.WithMessageID(ctx, id)
//	log.ErrorContext(ctx, "transport failure", slog.Any("error", err))
//	// {"level":"ERROR","msg":"transport failure","error":"...","message_id":"...","preset":"user_welcome"}
//
// # Sentry
//
// NewWithSentry fans records out to stdout and Sentry. Errors become Sentry
// issues; warnings are stored as logs. With an empty DSN it falls back to
// stdout only, so the same wiring works in development.
//
// Libraries default to NewNope when no logger is supplied.
package logger
