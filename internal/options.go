package internal

import "log/slog"

// Option configures a Pigeon.
type Option func(*Pigeon)

// WithLogger sets the logger used for delivery failures and preset diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pigeon) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecipientOverride sends every message to address instead of its To
// recipients. Useful in development. An empty address disables the override,
// including one configured under pigeon.dev.
func WithRecipientOverride(address string) Option {
	return func(p *Pigeon) {
		p.override = address
	}
}

// WithDefaultLayout sets the layout used until a preset or caller changes it.
func WithDefaultLayout(path string) Option {
	return func(p *Pigeon) {
		p.defaultLayout = path
	}
}

// WithDefaultTemplate sets the content template used until a preset or caller changes it.
func WithDefaultTemplate(path string) Option {
	return func(p *Pigeon) {
		p.defaultTemplate = path
	}
}
