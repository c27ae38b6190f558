package mailer

import "errors"

var (
	ErrNoRecipient        = errors.New("mailer: message has no To recipient")
	ErrNoContent          = errors.New("mailer: message has neither a raw body nor a layout")
	ErrTemplateNotFound   = errors.New("mailer: content template not found")
	ErrLayoutNotFound     = errors.New("mailer: layout not found")
	ErrRenderFailed       = errors.New("mailer: render failed")
	ErrInvalidFrontmatter = errors.New("mailer: invalid frontmatter")

	// ErrAttachmentFailed wraps any failure to resolve or read an attachment path.
	ErrAttachmentFailed = errors.New("mailer: attachment failed")
	// ErrUnknownScheme is returned for attachment paths whose scheme has no source.
	ErrUnknownScheme = errors.New("mailer: no attachment source for scheme")

	// ErrSendFailed wraps errors returned by the Sender. Everything else
	// returned by Deliver happened before the provider was reached.
	ErrSendFailed = errors.New("mailer: send failed")
)
