// Package pigeon composes outgoing emails with a fluent builder, applies named
// message presets from configuration and hands the result to a transport.
//
// # Quick Start
//
// A transport is usually a *mailer.Mailer wrapping a provider:
//
//	sender, err := smtp.New(smtp.Config{Host: "smtp.example.com", Port: 587})
//	if err != nil {
//	    return err
//	}
//	m := mailer.New(sender, mailer.NewRenderer(emails.FS), mailer.Config{},
//	    mailer.WithAttachmentSource("", storage.NewLocal("/")),
//	)
//
//	p, err := pigeon.NewFromFile("pigeon.yaml", m)
//	if err != nil {
//	    return err
//	}
//
//	if _, err := p.Type("user_welcome"); err != nil {
//	    return err
//	}
//	ok := p.To("john@example.com", "John").Send(ctx)
//
// # Presets
//
// Presets are read from the configuration source:
//
//	pigeon:
//	  default:
//	    from: { team@example.com: My App }
//	    subject: Pigeon Delivery
//	    layout: base.html
//	    template: default.md
//	  message_types:
//	    user_welcome:
//	      cc: [john.doe@example.com, jane.doe@example.com]
//	      bcc: { service@example.com: Customer Service }
//	      reply_to: contact@example.com
//	      subject: Welcome New Customer
//	      template: welcome.md
//	      attachments:
//	        path: /srv/files/terms.pdf
//	        options: { as: Terms.pdf }
//	      message_variables: { appName: My App }
//
// The default preset is applied on construction and after every send, so
// nothing leaks from one message into the next. Type applies a named preset on
// top of the current state; unknown names return ErrUnknownPreset and
// malformed ones ErrMalformedPreset, leaving the builder unchanged.
//
// # Recipients
//
// Address collections are keyed by address and keep insertion order. Adding
// an address twice keeps its first position and replaces its display name.
// The bulk forms (ToMany, CcMany, ...) add entries in sorted address order.
//
// # Sending
//
// Send renders the layout with the template variables; SendRaw sends a plain
// text body. Both report success as a bool and log failures instead of
// returning them. Pretend(true) turns the next send into a dry run when the
// transport implements DryRunner, restoring the previous setting afterwards.
//
// # Development
//
// With pigeon.dev.override set to true, every message goes to
// pigeon.dev.override_email instead of its To recipients. WithRecipientOverride
// sets or disables the same behavior in code.
package pigeon
