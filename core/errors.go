package core

import "errors"

// Failure taxonomy. Every failed export wraps one of these sentinels so
// callers can classify with errors.Is while result.Error stays a plain
// message for the UI to surface verbatim.
var (
	// ErrInvalidContent: the envelope carries no resolvable content source.
	ErrInvalidContent = errors.New("invalid content: no exportable source provided")

	// ErrUnsupportedFormat: the requested format is not registered.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrContentResolution: a source was present but yielded no usable hypertext.
	ErrContentResolution = errors.New("content resolution failed: no usable content")

	// ErrRendering: staging, sanitizing, or composing output failed.
	ErrRendering = errors.New("rendering failed")

	// ErrConversion: the markup converter failed internally. The converter
	// degrades instead of propagating this; it only appears in logs.
	ErrConversion = errors.New("conversion failed")

	// ErrValidation: options were rejected up front, before any export work.
	ErrValidation = errors.New("invalid export options")
)
