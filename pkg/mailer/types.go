package mailer

import (
	"maps"
	netmail "net/mail"
	"strings"
)

// Tags represents email tags/categories that can be either presence-only
// (using struct{}{}) or key-value pairs (using string values).
// Each provider adapter converts them into its own representation.
type Tags map[string]any

// SimpleTags creates presence-only tags from a list of tag names.
func SimpleTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = struct{}{}
	}
	return t
}

// Address is a mailbox with an optional display name.
type Address struct {
	Email string
	Name  string
}

// String formats the address in RFC 5322 form: the bare email without a name,
// "Name <email>" when the name is a plain phrase, otherwise a quoted or
// RFC 2047 encoded name as produced by net/mail.
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	if isPlainPhrase(a.Name) {
		return a.Name + " <" + a.Email + ">"
	}
	return (&netmail.Address{Name: a.Name, Address: a.Email}).String()
}

// isPlainPhrase reports whether name is a sequence of atoms separated by
// single spaces, which needs no quoting in a header.
func isPlainPhrase(name string) bool {
	if strings.TrimSpace(name) != name || strings.Contains(name, "  ") {
		return false
	}
	for _, r := range name {
		switch {
		case r == ' ',
			r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			strings.ContainsRune("!#$%&'*+-/=?^_`{|}~", r):
		default:
			return false
		}
	}
	return true
}

// Recipient formats a name and email into RFC 5322 address format.
func Recipient(name, email string) string {
	return Address{Email: email, Name: name}.String()
}

// Attachment options recognized by the mailer.
const (
	// AttachmentAs overrides the filename shown to the recipient.
	AttachmentAs = "as"
	// AttachmentMIME overrides the detected content type.
	AttachmentMIME = "mime"
)

// AttachmentRef points at a file that is resolved at delivery time.
// Path may carry a scheme ("s3://reports/q1.pdf"); plain paths are read from
// the local attachment source.
type AttachmentRef struct {
	Options map[string]string
	Path    string
}

// Message is a composed but not yet rendered email handed to Mailer.
// Either Raw is set, or Layout and Data are used to render the body.
type Message struct {
	Data        map[string]any    // Layout variables, including the template path
	Headers     map[string]string // Custom headers
	Tags        Tags
	Layout      string // Layout file name
	Raw         string // Plain text body, bypasses rendering
	Subject     string
	To          []Address
	CC          []Address
	BCC         []Address
	ReplyTo     []Address
	From        []Address
	Sender      []Address
	Attachments []AttachmentRef
}

// Clone returns a deep copy of the message's collections.
func (m *Message) Clone() *Message {
	c := *m
	c.Data = maps.Clone(m.Data)
	c.Headers = maps.Clone(m.Headers)
	c.Tags = maps.Clone(m.Tags)
	c.To = append([]Address(nil), m.To...)
	c.CC = append([]Address(nil), m.CC...)
	c.BCC = append([]Address(nil), m.BCC...)
	c.ReplyTo = append([]Address(nil), m.ReplyTo...)
	c.From = append([]Address(nil), m.From...)
	c.Sender = append([]Address(nil), m.Sender...)
	c.Attachments = make([]AttachmentRef, len(m.Attachments))
	for i, a := range m.Attachments {
		c.Attachments[i] = AttachmentRef{Path: a.Path, Options: maps.Clone(a.Options)}
	}
	return &c
}

// Email represents a fully-prepared email message ready for sending.
type Email struct {
	Headers     map[string]string // Custom headers
	Tags        Tags              // Provider-specific tags/categories
	ID          string            // Message identifier, also sent as a header
	Subject     string            // Email subject
	HTML        string            // HTML body content
	Text        string            // Plain text alternative
	From        string            // Override default sender (if provider allows)
	Sender      string            // Sender header, when different from From
	ReplyTo     []string          // Reply-to addresses
	To          []string          // Recipients (at least one required)
	CC          []string          // Carbon copy recipients
	BCC         []string          // Blind carbon copy recipients
	Attachments []Attachment      // File attachments
}

// Attachment represents an email attachment with its content loaded.
type Attachment struct {
	Filename    string // Display name for the attachment
	ContentType string // MIME type (e.g., "application/pdf")
	ContentID   string // Optional Content-ID for inline attachments
	Content     []byte // Raw file content
}
