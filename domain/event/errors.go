package event

import "errors"

// Domain errors for event decoding.
var (
	// ErrMalformedRecord is returned when a raw event record is not a JSON
	// object, or its kind, template or fields have the wrong shape.
	ErrMalformedRecord = errors.New("malformed event record")
)
