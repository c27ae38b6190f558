package main

import (
	"context"
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/pigeon"
	"github.com/dmitrymomot/pigeon/pkg/config"
	"github.com/dmitrymomot/pigeon/pkg/logger"
	"github.com/dmitrymomot/pigeon/pkg/mailer"
	"github.com/dmitrymomot/pigeon/pkg/mailer/resend"
	"github.com/dmitrymomot/pigeon/pkg/mailer/smtp"
	"github.com/dmitrymomot/pigeon/pkg/storage"
)

var (
	errUnknownLibrary = errors.New("unknown mail library")
	errMissingSetting = errors.New("missing setting")
	errInvalidDKIMKey = errors.New("invalid DKIM key")
)

// app carries what every subcommand needs: settings (with environment
// overrides), presets (case preserved) and the logger.
type app struct {
	settings   *config.Viper
	presets    *config.Map
	logger     *slog.Logger
	out        io.Writer
	configPath string
}

func loadApp(cmd *cobra.Command, watch bool) (*app, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}

	a := &app{out: cmd.OutOrStdout(), configPath: path}
	a.logger = newLogger(cmd.ErrOrStderr(), verbose)

	opts := []config.ViperOption{config.WithEnv(""), config.WithViperLogger(a.logger)}
	if watch {
		opts = append(opts, config.WithWatch())
	}
	if a.settings, err = config.NewViper(path, opts...); err != nil {
		return nil, err
	}
	if a.presets, err = config.LoadFile(path); err != nil {
		return nil, err
	}

	if dsn := config.String(a.settings, "pigeon.sentry.dsn", ""); dsn != "" {
		a.logger = logger.NewWithSentry(logger.SentryConfig{
			DSN:         dsn,
			Environment: config.String(a.settings, "pigeon.sentry.environment", "production"),
		})
	}
	return a, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return logger.NewWithWriter(w, level)
}

func (a *app) setting(path string) string {
	return config.String(a.settings, path, "")
}

func (a *app) newSender() (mailer.Sender, error) {
	lib := strings.ToLower(config.String(a.settings, "pigeon.library", "log"))
	switch lib {
	case "smtp":
		return a.newSMTPSender()
	case "resend":
		key := a.setting("pigeon.resend.api_key")
		if key == "" {
			return nil, fmt.Errorf("%w: pigeon.resend.api_key", errMissingSetting)
		}
		return resend.New(resend.Config{
			APIKey:      key,
			SenderEmail: a.setting("pigeon.resend.from_email"),
			SenderName:  a.setting("pigeon.resend.from_name"),
		}), nil
	case "log":
		return &printSender{out: a.out}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownLibrary, lib)
	}
}

func (a *app) newSMTPSender() (*smtp.Sender, error) {
	cfg := smtp.Config{
		Host:         a.setting("pigeon.smtp.host"),
		Port:         config.Int(a.settings, "pigeon.smtp.port", 587),
		Username:     a.setting("pigeon.smtp.username"),
		Password:     a.setting("pigeon.smtp.password"),
		Timeout:      config.Duration(a.settings, "pigeon.smtp.timeout", 10*time.Second),
		FromEmail:    a.setting("pigeon.smtp.from_email"),
		FromName:     a.setting("pigeon.smtp.from_name"),
		DKIMDomain:   a.setting("pigeon.smtp.dkim.domain"),
		DKIMSelector: a.setting("pigeon.smtp.dkim.selector"),
	}
	if keyFile := a.setting("pigeon.smtp.dkim.key_file"); keyFile != "" {
		key, err := loadDKIMKey(keyFile)
		if err != nil {
			return nil, err
		}
		cfg.DKIMKey = key
	}
	return smtp.New(cfg)
}

// loadDKIMKey reads a PEM encoded PKCS#8 or PKCS#1 private key.
func loadDKIMKey(path string) (crypto.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidDKIMKey, err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block in %s", errInvalidDKIMKey, path)
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, fmt.Errorf("%w: %T cannot sign", errInvalidDKIMKey, key)
		}
		return signer, nil
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidDKIMKey, err)
	}
	return key, nil
}

// templatesDir resolves pigeon.templates relative to the config file.
func (a *app) templatesDir() string {
	dir := config.String(a.settings, "pigeon.templates", "emails")
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(filepath.Dir(a.configPath), dir)
}

func (a *app) newMailer(sender mailer.Sender) (*mailer.Mailer, error) {
	opts := []mailer.Option{
		mailer.WithLogger(a.logger),
		mailer.WithAttachmentSource("", storage.NewLocal(config.String(a.settings, "pigeon.attachments", "/"))),
	}

	if bucket := a.setting("pigeon.s3.bucket"); bucket != "" {
		s3, err := storage.NewS3(storage.Config{
			Bucket:    bucket,
			AccessKey: a.setting("pigeon.s3.access_key"),
			SecretKey: a.setting("pigeon.s3.secret_key"),
			Endpoint:  a.setting("pigeon.s3.endpoint"),
			Region:    a.setting("pigeon.s3.region"),
			PathStyle: config.Bool(a.settings, "pigeon.s3.path_style", false),
			MaxSize:   int64(config.Int(a.settings, "pigeon.s3.max_size", 0)),
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, mailer.WithAttachmentSource("s3", s3))
	}

	renderer := mailer.NewRendererWithConfig(os.DirFS(a.templatesDir()), mailer.RendererConfig{
		AllowHTML: config.Bool(a.settings, "pigeon.allow_html", false),
	})
	cfg := mailer.Config{
		FallbackSubject: config.String(a.settings, "pigeon.fallback_subject", "Pigeon Delivery"),
		DryRun:          config.Bool(a.settings, "pigeon.pretend", false),
	}
	return mailer.New(sender, renderer, cfg, opts...), nil
}

func (a *app) newPigeon(transport pigeon.Transport, presets pigeon.ConfigSource) (*pigeon.Pigeon, error) {
	override := ""
	if config.Bool(a.settings, "pigeon.dev.override", false) {
		override = a.setting("pigeon.dev.override_email")
	}
	return pigeon.New(presets, transport,
		pigeon.WithLogger(a.logger),
		pigeon.WithRecipientOverride(override),
	)
}

// printSender writes emails to the terminal instead of delivering them.
type printSender struct {
	out io.Writer
}

func (s *printSender) Send(_ context.Context, email *mailer.Email) error {
	cyanBold.Fprintf(s.out, "Message %s\n", email.ID)
	s.field("From", email.From)
	s.field("Sender", email.Sender)
	s.field("To", strings.Join(email.To, ", "))
	s.field("Cc", strings.Join(email.CC, ", "))
	s.field("Bcc", strings.Join(email.BCC, ", "))
	s.field("Reply-To", strings.Join(email.ReplyTo, ", "))
	s.field("Subject", email.Subject)
	for _, att := range email.Attachments {
		s.field("Attachment", fmt.Sprintf("%s (%s, %d bytes)", att.Filename, att.ContentType, len(att.Content)))
	}
	fmt.Fprintf(s.out, "\n%s\n", email.Text)
	return nil
}

func (s *printSender) field(name, value string) {
	if value == "" {
		return
	}
	cyan.Fprintf(s.out, "%-11s", name+":")
	fmt.Fprintln(s.out, value)
}

// recordingTransport keeps the last delivery error, which Pigeon only logs.
type recordingTransport struct {
	pigeon.Transport
	err error
}

func (t *recordingTransport) Deliver(ctx context.Context, msg *mailer.Message) error {
	t.err = t.Transport.Deliver(ctx, msg)
	return t.err
}

func (t *recordingTransport) DeliverRaw(ctx context.Context, text string, msg *mailer.Message) error {
	t.err = t.Transport.DeliverRaw(ctx, text, msg)
	return t.err
}

func (t *recordingTransport) SetDryRun(enabled bool) bool {
	if dr, ok := t.Transport.(pigeon.DryRunner); ok {
		return dr.SetDryRun(enabled)
	}
	return false
}

func (t *recordingTransport) DryRun() bool {
	if dr, ok := t.Transport.(pigeon.DryRunner); ok {
		return dr.DryRun()
	}
	return false
}
