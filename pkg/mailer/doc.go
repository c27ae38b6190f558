// Package mailer delivers composed messages through pluggable email providers.
//
// A Message describes what to send: recipients, subject, attachment paths and
// either a raw text body or a layout plus the variables to render it with.
// Mailer turns a Message into an Email and hands it to a Sender.
//
// # Components
//
//   - Sender: interface implemented by providers (see the smtp and resend subpackages)
//   - Renderer: renders an HTML layout around a markdown content template
//   - AttachmentSource: opens attachment files (see package storage)
//   - Mailer: combines the above, supports dry-run mode
//
// # Usage
//
//	sender := resend.New(resend.Config{
//		APIKey:      os.Getenv("RESEND_API_KEY"),
//		SenderEmail: "team@example.com",
//	})
//	m := mailer.New(sender, mailer.NewRenderer(emails.FS), mailer.Config{},
//		mailer.WithAttachmentSource("", storage.NewLocal("/")),
//	)
//
//	err := m.Deliver(ctx, &mailer.Message{
//		Layout: "base.html",
//		Data: map[string]any{
//			mailer.TemplateVariable: "welcome.md",
//			"name":                  "John",
//		},
//		To: []mailer.Address{{Email: "john@example.com"}},
//	})
//
// # Templates
//
// Layouts are html/template files under the layout directory. They receive
// every message variable plus Content (the rendered content template) and
// Metadata (its frontmatter). Content templates are markdown files with
// optional YAML frontmatter:
//
//	---
//	Subject: Welcome {{.name}}!
//	---
//
//	# Welcome
//
//	Hello {{.name}}, welcome to our service!
//
// Raw HTML in content templates is omitted unless RendererConfig.AllowHTML is
// set, in which case the converted content is cleaned by sanitizer.Email.
//
// Subject resolution order: Message.Subject, then the frontmatter Subject,
// then Config.FallbackSubject. Subjects support {{.Variable}} syntax.
//
// # Dry run
//
// SetDryRun(true) makes the mailer build every email (rendering and loading
// attachments as usual) and log it instead of calling the Sender. SetDryRun
// returns the previous value so callers can restore it.
//
// # Errors
//
//   - ErrNoRecipient: no To address
//   - ErrNoContent: neither raw text nor a layout
//   - ErrTemplateNotFound, ErrLayoutNotFound: missing template files
//   - ErrRenderFailed: template execution failed
//   - ErrAttachmentFailed: an attachment could not be loaded
//   - ErrUnknownScheme: an attachment path uses a scheme with no registered source
//   - ErrSendFailed: the provider rejected or failed to deliver the email
//   - ErrInvalidFrontmatter: invalid YAML frontmatter
package mailer
