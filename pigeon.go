package pigeon

import (
	"log/slog"

	"github.com/dmitrymomot/pigeon/internal"
	"github.com/dmitrymomot/pigeon/pkg/config"
	"github.com/dmitrymomot/pigeon/pkg/mailer"
)

// Type aliases - public API
type (
	// Pigeon composes an email and hands it to a Transport.
	Pigeon = internal.Pigeon

	// Draft is a snapshot of the message being composed.
	Draft = internal.Draft

	// Layout holds the layout, template and template variables of a message.
	Layout = internal.Layout

	// Option configures a Pigeon.
	Option = internal.Option

	// Transport delivers composed messages. *mailer.Mailer implements it.
	Transport = internal.Transport

	// DryRunner is implemented by transports that can log instead of sending.
	DryRunner = internal.DryRunner

	// ConfigSource provides preset configuration by dotted path.
	ConfigSource = internal.ConfigSource

	// AddressKind selects an address collection for Pigeon.Add.
	AddressKind = internal.AddressKind

	// Address is a mailbox with an optional display name.
	Address = mailer.Address

	// Attachment is a file path plus options such as "as" and "mime".
	Attachment = mailer.AttachmentRef
)

// Address collections.
const (
	KindTo      = internal.KindTo
	KindCc      = internal.KindCc
	KindBcc     = internal.KindBcc
	KindReplyTo = internal.KindReplyTo
	KindFrom    = internal.KindFrom
	KindSender  = internal.KindSender
)

// DefaultPreset is applied on construction and after every send.
const DefaultPreset = internal.DefaultPreset

// Errors
var (
	ErrUnknownPreset   = internal.ErrUnknownPreset
	ErrMalformedPreset = internal.ErrMalformedPreset
	ErrNoConfig        = internal.ErrNoConfig
	ErrNoTransport     = internal.ErrNoTransport
	ErrTransportPanic  = internal.ErrTransportPanic
)

// Constructors

// New creates a Pigeon and applies the default preset.
//
// Example:
//
//	cfg, err := config.LoadFile("pigeon.yaml")
//	if err != nil {
//	    return err
//	}
//	p, err := pigeon.New(cfg, m, pigeon.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//
//	ok := p.To("john@example.com", "John").
//	    Subject("Hi").
//	    Pass(map[string]any{"name": "John"}).
//	    Send(ctx)
func New(cfg ConfigSource, transport Transport, opts ...Option) (*Pigeon, error) {
	return internal.New(cfg, transport, opts...)
}

// NewFromFile loads presets from a YAML file and creates a Pigeon.
func NewFromFile(path string, transport Transport, opts ...Option) (*Pigeon, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return internal.New(cfg, transport, opts...)
}

// NewLayout creates a Layout with the given view paths.
func NewLayout(layout, template string) *Layout {
	return internal.NewLayout(layout, template)
}

// Options

// WithLogger sets the logger used for delivery failures and preset diagnostics.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithRecipientOverride sends every message to address instead of its To recipients.
func WithRecipientOverride(address string) Option {
	return internal.WithRecipientOverride(address)
}

// WithDefaultLayout sets the layout used until a preset or caller changes it.
func WithDefaultLayout(path string) Option {
	return internal.WithDefaultLayout(path)
}

// WithDefaultTemplate sets the content template used until a preset or caller changes it.
func WithDefaultTemplate(path string) Option {
	return internal.WithDefaultTemplate(path)
}
