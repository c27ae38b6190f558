package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/pigeon/pkg/logger"
	"github.com/dmitrymomot/pigeon/pkg/mailer"
)

// Send renders the layout with the current variables and delivers the message.
// It reports whether the transport accepted the message. Failures are logged,
// never returned. The builder is reset to the default preset afterwards.
func (p *Pigeon) Send(ctx context.Context) bool {
	return p.send(ctx, p.transport.Deliver)
}

// SendRaw delivers text as a plain body instead of rendering the layout.
// It behaves like Send otherwise.
func (p *Pigeon) SendRaw(ctx context.Context, text string) bool {
	return p.send(ctx, func(ctx context.Context, msg *mailer.Message) error {
		return p.transport.DeliverRaw(ctx, text, msg)
	})
}

type deliverFunc func(ctx context.Context, msg *mailer.Message) error

func (p *Pigeon) send(ctx context.Context, deliver deliverFunc) bool {
	ctx = logger.WithPreset(ctx, p.preset)

	if p.pretend {
		if dr, ok := p.transport.(DryRunner); ok {
			prev := dr.SetDryRun(true)
			defer dr.SetDryRun(prev)
		}
	}
	defer p.reset(ctx)

	msg := p.message()
	if msg.Subject == "" {
		p.logger.WarnContext(ctx, "message has no subject")
	}

	if err := dispatch(ctx, deliver, msg); err != nil {
		if errors.Is(err, mailer.ErrSendFailed) {
			p.logger.ErrorContext(ctx, "transport failure", slog.Any("error", err))
		} else {
			p.logger.ErrorContext(ctx, "could not send message", slog.Any("error", err))
		}
		return false
	}
	return true
}

// dispatch calls deliver and turns a panic into an error.
func dispatch(ctx context.Context, deliver deliverFunc, msg *mailer.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTransportPanic, r)
		}
	}()
	return deliver(ctx, msg)
}

// message assembles the outgoing message from the builder state.
func (p *Pigeon) message() *mailer.Message {
	msg := &mailer.Message{
		Layout: p.layout.Layout(),
		Data:   p.layout.Variables(),
	}

	msg.To = p.to.List()
	if p.override != "" {
		msg.To = []mailer.Address{{Email: p.override}}
	}
	msg.Subject = p.subject
	msg.CC = p.cc.List()
	msg.BCC = p.bcc.List()
	msg.ReplyTo = p.replyTo.List()
	msg.Sender = p.sender.List()
	if p.from.Len() > 0 {
		msg.From = p.from.List()
	}

	for _, a := range p.attachments {
		msg.Attachments = append(msg.Attachments, mailer.AttachmentRef{Path: a.Path, Options: a.Options})
	}
	return msg
}

// reset clears the message and re-applies the default preset.
func (p *Pigeon) reset(ctx context.Context) {
	p.subject = ""
	for _, l := range []*AddressList{&p.to, &p.cc, &p.bcc, &p.replyTo, &p.from, &p.sender} {
		l.Reset()
	}
	p.attachments = nil
	p.pretend = false
	p.layout.SetLayout(p.defaultLayout)
	p.layout.SetTemplate(p.defaultTemplate)
	p.layout.ClearVariables()
	p.preset = DefaultPreset
	p.skipped = nil

	if _, err := p.Type(DefaultPreset); err != nil {
		p.logger.ErrorContext(ctx, "could not reset message", slog.Any("error", err))
	}
}
