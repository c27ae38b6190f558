package main

import (
	"errors"
	"fmt"
	netmail "net/mail"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/pigeon"
)

var errNotSent = errors.New("message was not sent")

var sendExample = dedent.Dedent(`
	# Send the default preset
	pigeon send --to john@example.com --subject "Hello"

	# Send a message type with template variables and an attachment
	pigeon send user_welcome --to "John Doe <john@example.com>" --var name=John --attach /srv/files/terms.pdf

	# Log the message instead of delivering it
	pigeon send user_welcome --to john@example.com --pretend

	# Send a plain text body
	pigeon send --to john@example.com --subject "Ping" --raw "Are you there?"`)

type sendOptions struct {
	to       []string
	cc       []string
	bcc      []string
	replyTo  []string
	from     []string
	vars     []string
	attach   []string
	subject  string
	layout   string
	template string
	raw      string
	pretend  bool
}

func newSendCmd() *cobra.Command {
	var opts sendOptions

	cmd := &cobra.Command{
		Use:     "send [MESSAGE_TYPE]",
		Short:   "Compose and deliver a message",
		Long:    "Applies the default preset, then MESSAGE_TYPE if given, then the flags, and delivers the message.",
		Example: sendExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, false)
			if err != nil {
				return err
			}
			sender, err := a.newSender()
			if err != nil {
				return err
			}
			m, err := a.newMailer(sender)
			if err != nil {
				return err
			}
			transport := &recordingTransport{Transport: m}
			p, err := a.newPigeon(transport, a.presets)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if _, err := p.Type(args[0]); err != nil {
					return err
				}
			}
			if err := opts.apply(p); err != nil {
				return err
			}

			recipients := lo.Map(p.Draft().To, func(a pigeon.Address, _ int) string { return a.String() })

			var ok bool
			if opts.raw != "" {
				ok = p.SendRaw(cmd.Context(), opts.raw)
			} else {
				ok = p.Send(cmd.Context())
			}
			if !ok {
				if transport.err != nil {
					return fmt.Errorf("%w: %w", errNotSent, transport.err)
				}
				return errNotSent
			}

			greenBold.Fprintf(cmd.OutOrStdout(), "Message sent to %s\n", strings.Join(recipients, ", "))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&opts.to, "to", nil, "Recipient, as address or \"Name <address>\" (repeatable)")
	f.StringArrayVar(&opts.cc, "cc", nil, "Carbon copy recipient (repeatable)")
	f.StringArrayVar(&opts.bcc, "bcc", nil, "Blind carbon copy recipient (repeatable)")
	f.StringArrayVar(&opts.replyTo, "reply-to", nil, "Reply-to address (repeatable)")
	f.StringArrayVar(&opts.from, "from", nil, "From address (repeatable)")
	f.StringArrayVar(&opts.vars, "var", nil, "Template variable as key=value (repeatable)")
	f.StringArrayVar(&opts.attach, "attach", nil, "Attachment path, optionally path#filename (repeatable)")
	f.StringVarP(&opts.subject, "subject", "s", "", "Subject")
	f.StringVar(&opts.layout, "layout", "", "Layout file")
	f.StringVar(&opts.template, "template", "", "Content template file")
	f.StringVar(&opts.raw, "raw", "", "Send this plain text instead of rendering the layout")
	f.BoolVar(&opts.pretend, "pretend", false, "Log the message instead of delivering it")

	return cmd
}

func (o *sendOptions) apply(p *pigeon.Pigeon) error {
	groups := []struct {
		values []string
		kind   pigeon.AddressKind
	}{
		{o.to, pigeon.KindTo},
		{o.cc, pigeon.KindCc},
		{o.bcc, pigeon.KindBcc},
		{o.replyTo, pigeon.KindReplyTo},
		{o.from, pigeon.KindFrom},
	}
	for _, g := range groups {
		for _, v := range g.values {
			p.Add(g.kind, parseAddress(v))
		}
	}

	vars, err := parseVars(o.vars)
	if err != nil {
		return err
	}
	p.Pass(vars)

	if o.layout != "" {
		p.Layout(o.layout)
	}
	if o.template != "" {
		p.Template(o.template)
	}
	if o.subject != "" {
		p.Subject(o.subject)
	}
	if o.pretend {
		p.Pretend(true)
	}
	for _, v := range o.attach {
		path, as, _ := strings.Cut(v, "#")
		var opts map[string]string
		if as != "" {
			opts = map[string]string{"as": as}
		}
		p.Attach(path, opts)
	}
	return nil
}

// parseAddress splits "Name <address>". Anything unparsable is used verbatim.
func parseAddress(s string) pigeon.Address {
	addr, err := netmail.ParseAddress(s)
	if err != nil {
		return pigeon.Address{Email: strings.TrimSpace(s)}
	}
	return pigeon.Address{Email: addr.Address, Name: addr.Name}
}

func parseVars(pairs []string) (map[string]any, error) {
	vars := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid variable %q, expected key=value", pair)
		}
		vars[k] = v
	}
	return vars, nil
}
