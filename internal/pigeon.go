package internal

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/dmitrymomot/pigeon/pkg/config"
	"github.com/dmitrymomot/pigeon/pkg/logger"
	"github.com/dmitrymomot/pigeon/pkg/mailer"
)

// Configuration paths of the development recipient override.
const (
	overrideEnabledPath = "pigeon.dev.override"
	overrideEmailPath   = "pigeon.dev.override_email"
)

// Pigeon composes an email and hands it to a Transport.
// Builder methods return the receiver so calls can be chained. A Pigeon is
// not safe for concurrent use; create one per goroutine.
type Pigeon struct {
	transport Transport
	logger    *slog.Logger
	layout    *Layout
	presets   presetLoader

	to      AddressList
	cc      AddressList
	bcc     AddressList
	replyTo AddressList
	from    AddressList
	sender  AddressList

	attachments []mailer.AttachmentRef
	skipped     []string

	preset          string
	subject         string
	override        string
	defaultLayout   string
	defaultTemplate string
	pretend         bool
}

// Draft is a snapshot of the message being composed.
type Draft struct {
	Variables   map[string]any
	Preset      string
	Subject     string
	Layout      string
	Template    string
	To          []mailer.Address
	Cc          []mailer.Address
	Bcc         []mailer.Address
	ReplyTo     []mailer.Address
	From        []mailer.Address
	Sender      []mailer.Address
	Attachments []mailer.AttachmentRef
	Pretend     bool
}

// New creates a Pigeon and applies the default preset.
// It fails when the default preset is missing or malformed.
func New(cfg ConfigSource, transport Transport, opts ...Option) (*Pigeon, error) {
	if cfg == nil {
		return nil, ErrNoConfig
	}
	if transport == nil {
		return nil, ErrNoTransport
	}

	p := &Pigeon{
		transport:       transport,
		logger:          logger.NewNope(),
		presets:         presetLoader{source: cfg},
		defaultLayout:   DefaultLayout,
		defaultTemplate: DefaultTemplate,
	}
	if config.Bool(cfg, overrideEnabledPath, false) {
		p.override = config.String(cfg, overrideEmailPath, "")
	}
	for _, opt := range opts {
		opt(p)
	}

	p.layout = NewLayout(p.defaultLayout, p.defaultTemplate)
	if _, err := p.Type(DefaultPreset); err != nil {
		return nil, err
	}
	return p, nil
}

// Type applies the named preset on top of the current state.
// On error nothing is applied and the preset name is unchanged.
func (p *Pigeon) Type(name string) (*Pigeon, error) {
	ps, err := p.presets.load(name)
	if err != nil {
		return p, err
	}

	for _, op := range ps.ops {
		op(p)
	}
	p.preset = ps.name
	p.skipped = ps.skipped

	if len(ps.skipped) > 0 {
		p.logger.Debug("preset fields skipped",
			slog.String("preset", ps.name),
			slog.Any("fields", ps.skipped),
		)
	}
	return p, nil
}

// PresetName returns the last successfully applied preset.
func (p *Pigeon) PresetName() string { return p.preset }

// SkippedFields returns the fields the last applied preset did not recognize
// or could not use, sorted.
func (p *Pigeon) SkippedFields() []string {
	return slices.Clone(p.skipped)
}

// Layout sets the outer layout path.
func (p *Pigeon) Layout(path string) *Pigeon {
	p.layout.SetLayout(path)
	return p
}

// Template sets the content template path.
func (p *Pigeon) Template(path string) *Pigeon {
	p.layout.SetTemplate(path)
	return p
}

// Add appends addresses to the collection selected by kind, in order.
// Empty addresses are ignored.
func (p *Pigeon) Add(kind AddressKind, addrs ...mailer.Address) *Pigeon {
	list := p.list(kind)
	if list == nil {
		return p
	}
	for _, a := range addrs {
		if a.Email == "" {
			continue
		}
		list.Add(a.Email, a.Name)
	}
	return p
}

func (p *Pigeon) list(kind AddressKind) *AddressList {
	switch kind {
	case KindTo:
		return &p.to
	case KindCc:
		return &p.cc
	case KindBcc:
		return &p.bcc
	case KindReplyTo:
		return &p.replyTo
	case KindFrom:
		return &p.from
	case KindSender:
		return &p.sender
	default:
		return nil
	}
}

func (p *Pigeon) addOne(kind AddressKind, address string, name []string) *Pigeon {
	a := mailer.Address{Email: address}
	if len(name) > 0 {
		a.Name = name[0]
	}
	return p.Add(kind, a)
}

// addMany adds the entries of addrs in sorted address order.
func (p *Pigeon) addMany(kind AddressKind, addrs map[string]string) *Pigeon {
	for _, address := range slices.Sorted(maps.Keys(addrs)) {
		p.addOne(kind, address, []string{addrs[address]})
	}
	return p
}

// To adds a recipient with an optional display name.
func (p *Pigeon) To(address string, name ...string) *Pigeon { return p.addOne(KindTo, address, name) }

// Cc adds a carbon copy recipient.
func (p *Pigeon) Cc(address string, name ...string) *Pigeon { return p.addOne(KindCc, address, name) }

// Bcc adds a blind carbon copy recipient.
func (p *Pigeon) Bcc(address string, name ...string) *Pigeon { return p.addOne(KindBcc, address, name) }

// ReplyTo adds a reply-to address.
func (p *Pigeon) ReplyTo(address string, name ...string) *Pigeon {
	return p.addOne(KindReplyTo, address, name)
}

// From adds a from address.
func (p *Pigeon) From(address string, name ...string) *Pigeon {
	return p.addOne(KindFrom, address, name)
}

// Sender adds a sender address.
func (p *Pigeon) Sender(address string, name ...string) *Pigeon {
	return p.addOne(KindSender, address, name)
}

// ToMany adds address to display name pairs. An empty name means none.
func (p *Pigeon) ToMany(addrs map[string]string) *Pigeon { return p.addMany(KindTo, addrs) }

// CcMany is the bulk form of Cc.
func (p *Pigeon) CcMany(addrs map[string]string) *Pigeon { return p.addMany(KindCc, addrs) }

// BccMany is the bulk form of Bcc.
func (p *Pigeon) BccMany(addrs map[string]string) *Pigeon { return p.addMany(KindBcc, addrs) }

// ReplyToMany is the bulk form of ReplyTo.
func (p *Pigeon) ReplyToMany(addrs map[string]string) *Pigeon {
	return p.addMany(KindReplyTo, addrs)
}

// FromMany is the bulk form of From.
func (p *Pigeon) FromMany(addrs map[string]string) *Pigeon { return p.addMany(KindFrom, addrs) }

// SenderMany is the bulk form of Sender.
func (p *Pigeon) SenderMany(addrs map[string]string) *Pigeon {
	return p.addMany(KindSender, addrs)
}

// Subject replaces the subject.
func (p *Pigeon) Subject(subject string) *Pigeon {
	p.subject = subject
	return p
}

// Pass merges template variables.
func (p *Pigeon) Pass(vars map[string]any) *Pigeon {
	p.layout.MergeVariables(vars)
	return p
}

// Clear drops all template variables. Layout and template are kept.
func (p *Pigeon) Clear() *Pigeon {
	p.layout.ClearVariables()
	return p
}

// Attach appends a file. Recognized options are mailer.AttachmentAs and
// mailer.AttachmentMIME.
func (p *Pigeon) Attach(path string, options map[string]string) *Pigeon {
	opts := maps.Clone(options)
	if opts == nil {
		opts = map[string]string{}
	}
	p.attachments = append(p.attachments, mailer.AttachmentRef{Path: path, Options: opts})
	return p
}

// AttachMany appends each attachment in order.
func (p *Pigeon) AttachMany(refs []mailer.AttachmentRef) *Pigeon {
	for _, ref := range refs {
		p.Attach(ref.Path, ref.Options)
	}
	return p
}

// Pretend makes the next send a dry run when the transport supports it.
func (p *Pigeon) Pretend(enabled bool) *Pigeon {
	p.pretend = enabled
	return p
}

// Draft returns a copy of the current message state.
func (p *Pigeon) Draft() Draft {
	d := Draft{
		Variables: p.layout.Variables(),
		Preset:    p.preset,
		Subject:   p.subject,
		Layout:    p.layout.Layout(),
		Template:  p.layout.Template(),
		To:        p.to.List(),
		Cc:        p.cc.List(),
		Bcc:       p.bcc.List(),
		ReplyTo:   p.replyTo.List(),
		From:      p.from.List(),
		Sender:    p.sender.List(),
		Pretend:   p.pretend,
	}
	for _, a := range p.attachments {
		d.Attachments = append(d.Attachments, mailer.AttachmentRef{Path: a.Path, Options: maps.Clone(a.Options)})
	}
	return d
}
