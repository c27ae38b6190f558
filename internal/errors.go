package internal

import "errors"

var (
	// ErrUnknownPreset is returned when a preset name resolves to nothing.
	ErrUnknownPreset = errors.New("pigeon: unknown preset")

	// ErrMalformedPreset is returned when a preset is not a mapping or one of
	// its fields has a value of the wrong shape.
	ErrMalformedPreset = errors.New("pigeon: malformed preset")

	// ErrNoConfig is returned when the builder is created without a configuration source.
	ErrNoConfig = errors.New("pigeon: configuration source is required")

	// ErrNoTransport is returned when the builder is created without a transport.
	ErrNoTransport = errors.New("pigeon: transport is required")

	// ErrTransportPanic wraps a panic recovered from the transport.
	ErrTransportPanic = errors.New("pigeon: transport panicked")
)
