package mailer

// Config holds mailer configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	FallbackSubject string `env:"MAILER_FALLBACK_SUBJECT" envDefault:"Pigeon Delivery"`
	// DryRun starts the mailer in log-only mode.
	DryRun bool `env:"MAILER_DRY_RUN" envDefault:"false"`
}
