package template

import "errors"

// Domain errors for template resolution.
var (
	// ErrUnknownKind indicates a template name outside the fixed set.
	ErrUnknownKind = errors.New("unknown template kind")
)
