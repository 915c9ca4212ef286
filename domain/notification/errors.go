package notification

import "errors"

// Domain errors for notification dispatch.
var (
	// ErrInvalidEvent indicates the dispatch request carries no usable event.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrMissingCredential indicates the channel has no usable credential.
	// It affects every recipient alike and aborts the dispatch.
	ErrMissingCredential = errors.New("channel credential missing")

	// ErrRecipientLookup indicates the preference store could not be queried.
	ErrRecipientLookup = errors.New("recipient lookup failed")

	// ErrChannelRejected indicates the channel refused a single message.
	ErrChannelRejected = errors.New("channel rejected message")

	// ErrChannelUnauthorized indicates the channel refused the credential
	// for a single call.
	ErrChannelUnauthorized = errors.New("channel unauthorized")

	// ErrChannelUnavailable indicates the channel could not be reached.
	ErrChannelUnavailable = errors.New("channel unavailable")

	// ErrArityMismatch indicates a parameter list of the wrong length.
	ErrArityMismatch = errors.New("template parameter count mismatch")
)
