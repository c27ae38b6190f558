package internal

import (
	"context"

	"github.com/dmitrymomot/pigeon/pkg/config"
	"github.com/dmitrymomot/pigeon/pkg/mailer"
)

// Transport delivers composed messages. *mailer.Mailer implements it.
//
// Errors wrapping mailer.ErrSendFailed are treated as transport failures;
// any other error means the message could not be assembled.
type Transport interface {
	Deliver(ctx context.Context, msg *mailer.Message) error
	DeliverRaw(ctx context.Context, text string, msg *mailer.Message) error
}

// DryRunner is implemented by transports that can log instead of sending.
// SetDryRun returns the previous value.
type DryRunner interface {
	SetDryRun(enabled bool) bool
	DryRun() bool
}

// ConfigSource provides preset configuration by dotted path.
type ConfigSource = config.Source
