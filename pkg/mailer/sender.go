package mailer

import (
	"context"
	"io"
)

// Sender defines the minimal interface that email providers must implement.
// It accepts a fully-prepared Email and handles the actual delivery.
type Sender interface {
	// Send delivers an email message.
	// The Email has To, Subject, and at least one body already set.
	// Returns an error if delivery fails.
	Send(ctx context.Context, email *Email) error
}

// AttachmentSource opens attachment files by name.
// The caller is responsible for closing the returned reader.
type AttachmentSource interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
