package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"path"
	"strings"
	texttemplate "text/template"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/atomic"

	"github.com/dmitrymomot/pigeon/pkg/logger"
	"github.com/dmitrymomot/pigeon/pkg/storage"
)

// MessageIDHeader carries the generated message id on every email.
const MessageIDHeader = "X-Pigeon-Message-ID"

// Mailer turns composed messages into emails and hands them to a Sender.
// It renders layouts, loads attachments and honors the dry-run flag.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	sources  map[string]AttachmentSource
	logger   *slog.Logger
	dryRun   *atomic.Bool
	config   Config
}

// Option configures a Mailer.
type Option func(*Mailer)

// WithLogger sets the logger used for dry-run output and warnings.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mailer) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithAttachmentSource registers a source for attachment paths with the given
// URI scheme. The empty scheme serves plain paths.
//
// Example:
//
//	mailer.WithAttachmentSource("", storage.NewLocal("/"))
//	mailer.WithAttachmentSource("s3", bucket) // s3://invoices/42.pdf
func WithAttachmentSource(scheme string, src AttachmentSource) Option {
	return func(m *Mailer) {
		m.sources[strings.ToLower(scheme)] = src
	}
}

// New creates a new Mailer with the given sender and renderer.
func New(sender Sender, renderer *Renderer, cfg Config, opts ...Option) *Mailer {
	m := &Mailer{
		sender:   sender,
		renderer: renderer,
		sources:  make(map[string]AttachmentSource),
		logger:   logger.NewNope(),
		dryRun:   atomic.NewBool(cfg.DryRun),
		config:   cfg,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetDryRun switches log-only mode and returns the previous value.
func (m *Mailer) SetDryRun(enabled bool) bool {
	return m.dryRun.Swap(enabled)
}

// DryRun reports whether log-only mode is active.
func (m *Mailer) DryRun() bool {
	return m.dryRun.Load()
}

// Deliver renders msg.Layout with msg.Data and sends the result.
// Subject resolution: msg.Subject > template frontmatter Subject > config fallback.
func (m *Mailer) Deliver(ctx context.Context, msg *Message) error {
	email, err := m.Build(ctx, msg)
	if err != nil {
		return err
	}
	return m.send(ctx, email)
}

// DeliverRaw sends text as a plain text body, ignoring msg.Layout.
func (m *Mailer) DeliverRaw(ctx context.Context, text string, msg *Message) error {
	raw := msg.Clone()
	raw.Raw = text
	if raw.Raw == "" {
		return ErrNoContent
	}

	email, err := m.Build(ctx, raw)
	if err != nil {
		return err
	}
	return m.send(ctx, email)
}

// Build assembles the email for msg without sending it.
func (m *Mailer) Build(ctx context.Context, msg *Message) (*Email, error) {
	if len(msg.To) == 0 {
		return nil, ErrNoRecipient
	}

	email := &Email{
		ID:      uuid.NewString(),
		Headers: maps.Clone(msg.Headers),
		Tags:    msg.Tags,
		To:      formatAddresses(msg.To),
		CC:      formatAddresses(msg.CC),
		BCC:     formatAddresses(msg.BCC),
		ReplyTo: formatAddresses(msg.ReplyTo),
	}
	if email.Headers == nil {
		email.Headers = make(map[string]string, 1)
	}
	email.Headers[MessageIDHeader] = email.ID

	// Only one From mailbox is supported by the providers; the first one wins.
	if len(msg.From) > 0 {
		email.From = msg.From[0].String()
	}
	if len(msg.Sender) > 0 {
		email.Sender = msg.Sender[0].String()
	}

	subject := msg.Subject
	switch {
	case msg.Raw != "":
		email.Text = msg.Raw
	case msg.Layout != "":
		result, err := m.renderer.Render(msg.Layout, msg.Data)
		if err != nil {
			return nil, errors.Join(ErrRenderFailed, err)
		}
		email.HTML = result.HTML
		email.Text = result.Text
		if subject == "" {
			subject, _ = result.Metadata["Subject"].(string)
		}
	default:
		return nil, ErrNoContent
	}

	if subject == "" {
		subject = m.config.FallbackSubject
	}
	processed, err := processSubject(subject, msg.Data)
	if err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}
	email.Subject = processed

	attachments, err := m.loadAttachments(ctx, msg.Attachments)
	if err != nil {
		return nil, err
	}
	email.Attachments = attachments

	return email, nil
}

func (m *Mailer) send(ctx context.Context, email *Email) error {
	ctx = logger.WithMessageID(ctx, email.ID)

	if m.dryRun.Load() {
		m.logger.InfoContext(ctx, "dry run: email not sent",
			slog.Any("to", email.To),
			slog.Any("cc", email.CC),
			slog.Any("bcc", email.BCC),
			slog.String("subject", email.Subject),
			slog.Int("attachments", len(email.Attachments)),
		)
		return nil
	}

	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

func (m *Mailer) loadAttachments(ctx context.Context, refs []AttachmentRef) ([]Attachment, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	result := make([]Attachment, 0, len(refs))
	for _, ref := range refs {
		a, err := m.loadAttachment(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrAttachmentFailed, ref.Path, err)
		}
		result = append(result, a)
	}
	return result, nil
}

func (m *Mailer) loadAttachment(ctx context.Context, ref AttachmentRef) (Attachment, error) {
	scheme, name := "", ref.Path
	if s, rest, ok := strings.Cut(ref.Path, "://"); ok {
		scheme, name = strings.ToLower(s), rest
	}

	src, ok := m.sources[scheme]
	if !ok {
		return Attachment{}, fmt.Errorf("%w %q", ErrUnknownScheme, scheme)
	}

	rc, err := src.Open(ctx, name)
	if err != nil {
		return Attachment{}, err
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return Attachment{}, err
	}

	filename := ref.Options[AttachmentAs]
	if filename == "" {
		filename = path.Base(name)
	}
	contentType := ref.Options[AttachmentMIME]
	if contentType == "" {
		contentType = storage.DetectContentType(filename, content)
	}

	return Attachment{
		Filename:    filename,
		ContentType: contentType,
		Content:     content,
	}, nil
}

func formatAddresses(list []Address) []string {
	if len(list) == 0 {
		return nil
	}
	return lo.Map(list, func(a Address, _ int) string { return a.String() })
}

// processSubject executes the subject as a text template ({{.Variable}}).
func processSubject(subject string, data map[string]any) (string, error) {
	if !strings.Contains(subject, "{{") {
		return subject, nil
	}

	tmpl, err := texttemplate.New("subject").Parse(subject)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
