// Package internal implements the message builder behind package pigeon.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/pigeon" instead, which re-exports the public API.
//
// # Core Types
//
//   - Layout: outer layout, content template and template variables
//   - Pigeon: fluent builder holding recipients, subject and attachments
//   - Transport: delivery contract implemented by *mailer.Mailer
//   - DryRunner: optional transport capability used by Pretend
//
// # Presets
//
// A preset is a mapping read from the configuration source. The default
// preset lives under pigeon.default and is applied on construction and after
// every send; named presets live under pigeon.message_types.<name> and are
// applied with Type. Fields are applied in a fixed order:
//
//	layout, template, message_variables, to, cc, bcc, reply_to, from,
//	sender, subject, attachments, pretend
//
// replyTo is accepted as an alias of reply_to and field names are matched
// case-insensitively. Unknown fields are skipped and reported by
// SkippedFields. A preset is decoded completely before any field is applied,
// so a malformed value leaves the builder untouched.
//
// # Sending
//
// Send and SendRaw never return an error. Failures are logged as
// "transport failure" when the error wraps mailer.ErrSendFailed and as
// "could not send message" otherwise. Every send resets the builder to the
// default preset, and a pretend send restores the transport's previous
// dry-run setting on every path.
package internal
