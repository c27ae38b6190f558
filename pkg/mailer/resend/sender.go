package resend

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/pigeon/pkg/mailer"
)

// Sender implements mailer.Sender using the Resend API.
type Sender struct {
	client *resend.Client
	config Config
}

// New creates a new Resend sender.
func New(cfg Config) *Sender {
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		config: cfg,
	}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	req := s.buildRequest(email)

	_, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("resend: failed to send email: %w", err)
	}

	return nil
}

func (s *Sender) buildRequest(email *mailer.Email) *resend.SendEmailRequest {
	from := email.From
	if from == "" {
		from = mailer.Recipient(s.config.SenderName, s.config.SenderEmail)
	}

	// Resend has no Sender field; it travels as a custom header.
	headers := maps.Clone(email.Headers)
	if email.Sender != "" {
		if headers == nil {
			headers = make(map[string]string, 1)
		}
		headers["Sender"] = email.Sender
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: strings.Join(email.ReplyTo, ", "),
		Cc:      email.CC,
		Bcc:     email.BCC,
		Headers: headers,
	}

	if len(email.Attachments) > 0 {
		req.Attachments = s.convertAttachments(email.Attachments)
	}
	if len(email.Tags) > 0 {
		req.Tags = s.convertTags(email.Tags)
	}

	return req
}

func (s *Sender) convertAttachments(attachments []mailer.Attachment) []*resend.Attachment {
	result := make([]*resend.Attachment, len(attachments))
	for i, a := range attachments {
		result[i] = &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
			ContentId:   a.ContentID,
		}
	}
	return result
}

func (s *Sender) convertTags(tags mailer.Tags) []resend.Tag {
	result := make([]resend.Tag, 0, len(tags))
	for name, value := range tags {
		result = append(result, resend.Tag{
			Name:  name,
			Value: tagValue(value),
		})
	}
	return result
}

// tagValue converts a tag value to a string. Presence-only tags become "true".
func tagValue(v any) string {
	switch val := v.(type) {
	case nil, struct{}:
		return "true"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
