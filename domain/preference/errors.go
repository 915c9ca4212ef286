package preference

import "errors"

// Domain errors for preference operations.
var (
	// ErrUnknownFlag indicates the flag is not one of the known gating flags.
	ErrUnknownFlag = errors.New("unknown preference flag")

	// ErrInvalidUserID indicates the user ID is empty.
	ErrInvalidUserID = errors.New("invalid user ID")

	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")
)
