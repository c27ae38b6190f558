package smtp

import (
	"crypto"
	"time"
)

// Config holds SMTP provider configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Host     string        `env:"SMTP_HOST"`
	Username string        `env:"SMTP_USERNAME"`
	Password string        `env:"SMTP_PASSWORD"`
	Port     int           `env:"SMTP_PORT" envDefault:"587"`
	Timeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"10s"`

	// FromEmail and FromName are used when an email carries no From address.
	FromEmail string `env:"SMTP_FROM_EMAIL"`
	FromName  string `env:"SMTP_FROM_NAME"`

	// DKIM signing is enabled when Domain, Selector and Key are all set.
	DKIMDomain   string `env:"SMTP_DKIM_DOMAIN"`
	DKIMSelector string `env:"SMTP_DKIM_SELECTOR"`
	DKIMKey      crypto.Signer
}

func (c Config) dkimEnabled() bool {
	return c.DKIMDomain != "" && c.DKIMSelector != "" && c.DKIMKey != nil
}
