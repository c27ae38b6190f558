package smtp

import (
	"bytes"
	"context"
	"crypto"
	"errors"
	"fmt"
	"io"
	netmail "net/mail"

	"github.com/emersion/go-msgauth/dkim"
	gomail "gopkg.in/mail.v2"

	"github.com/dmitrymomot/pigeon/pkg/mailer"
)

var (
	// ErrHostRequired is returned when Host or Port is missing.
	ErrHostRequired = errors.New("smtp: host and port are required")
	// ErrNoSender is returned when neither the email nor the config has a From address.
	ErrNoSender = errors.New("smtp: no sender address")
)

// dialer opens an SMTP session. *gomail.Dialer satisfies it.
type dialer interface {
	Dial() (gomail.SendCloser, error)
}

// Sender implements mailer.Sender over SMTP.
type Sender struct {
	dialer dialer
	dkim   *dkim.SignOptions
	config Config
}

// New creates an SMTP sender.
func New(cfg Config) (*Sender, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrHostRequired
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.Timeout > 0 {
		d.Timeout = cfg.Timeout
	}

	s := &Sender{dialer: d, config: cfg}
	if cfg.dkimEnabled() {
		s.dkim = &dkim.SignOptions{
			Domain:   cfg.DKIMDomain,
			Selector: cfg.DKIMSelector,
			Signer:   cfg.DKIMKey,
			Hash:     crypto.SHA256,
		}
	}
	return s, nil
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := s.buildMessage(email)
	if err != nil {
		return err
	}

	from, recipients, err := s.envelope(email)
	if err != nil {
		return err
	}

	body, err := s.encode(msg)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	sc, err := s.dialer.Dial()
	if err != nil {
		return fmt.Errorf("smtp: dial: %w", err)
	}
	defer sc.Close()

	if err := sc.Send(from, recipients, body); err != nil {
		return fmt.Errorf("smtp: send: %w", err)
	}
	return nil
}

func (s *Sender) from(email *mailer.Email) string {
	if email.From != "" {
		return email.From
	}
	return mailer.Recipient(s.config.FromName, s.config.FromEmail)
}

func (s *Sender) buildMessage(email *mailer.Email) (*gomail.Message, error) {
	from := s.from(email)
	if from == "" {
		return nil, ErrNoSender
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)
	if len(email.CC) > 0 {
		msg.SetHeader("Cc", email.CC...)
	}
	if len(email.ReplyTo) > 0 {
		msg.SetHeader("Reply-To", email.ReplyTo...)
	}
	if email.Sender != "" {
		msg.SetHeader("Sender", email.Sender)
	}
	for k, v := range email.Headers {
		msg.SetHeader(k, v)
	}

	switch {
	case email.Text != "" && email.HTML != "":
		msg.SetBody("text/plain", email.Text)
		msg.AddAlternative("text/html", email.HTML)
	case email.HTML != "":
		msg.SetBody("text/html", email.HTML)
	default:
		msg.SetBody("text/plain", email.Text)
	}

	for _, a := range email.Attachments {
		content := a.Content
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
		}
		if a.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {a.ContentType},
			}))
		}
		msg.Attach(a.Filename, settings...)
	}

	return msg, nil
}

// envelope returns the bare SMTP envelope addresses. Bcc recipients only
// appear here; they are never written into the message headers.
func (s *Sender) envelope(email *mailer.Email) (string, []string, error) {
	from, err := netmail.ParseAddress(s.from(email))
	if err != nil {
		return "", nil, fmt.Errorf("smtp: parse from address: %w", err)
	}

	var recipients []string
	for _, list := range [][]string{email.To, email.CC, email.BCC} {
		for _, raw := range list {
			addr, err := netmail.ParseAddress(raw)
			if err != nil {
				return "", nil, fmt.Errorf("smtp: parse recipient %q: %w", raw, err)
			}
			recipients = append(recipients, addr.Address)
		}
	}

	return from.Address, recipients, nil
}

// encode writes the message and signs it when DKIM is configured.
func (s *Sender) encode(msg *gomail.Message) (io.WriterTo, error) {
	var raw bytes.Buffer
	if _, err := msg.WriteTo(&raw); err != nil {
		return nil, fmt.Errorf("smtp: encode message: %w", err)
	}

	if s.dkim == nil {
		return &raw, nil
	}

	var signed bytes.Buffer
	if err := dkim.Sign(&signed, &raw, s.dkim); err != nil {
		return nil, fmt.Errorf("smtp: dkim sign: %w", err)
	}
	return &signed, nil
}
