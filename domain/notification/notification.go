// Package notification provides the domain models for outbound template
// messages: recipients, messages, the channel they are sent through and the
// aggregated outcome of one dispatch.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/notify-go/domain/preference"
	"github.com/felixgeelhaar/notify-go/domain/template"
)

// Recipient is a single address a message is sent to.
type Recipient struct {
	// UserID is the owning user.
	UserID string `json:"user_id"`
	// Address is the normalized channel address.
	Address string `json:"address"`
	// Secondary is true when Address came from the user's second phone.
	Secondary bool `json:"secondary,omitempty"`
}

// Message is one outbound template message.
type Message struct {
	// To is the channel address.
	To string `json:"to"`
	// Template is the template kind.
	Template template.Kind `json:"template"`
	// Params are the positional template parameters.
	Params []string `json:"params"`
}

// RecipientError records a failed send.
type RecipientError struct {
	UserID  string `json:"user_id"`
	Address string `json:"address"`
	Reason  string `json:"reason"`
	Err     error  `json:"-"`
}

// Error implements error.
func (e RecipientError) Error() string {
	return e.UserID + " (" + e.Address + "): " + e.Reason
}

// Unwrap returns the underlying error.
func (e RecipientError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one dispatch.
type Result struct {
	// ID correlates log lines and spans of one dispatch.
	ID uuid.UUID `json:"id"`
	// Template is the resolved template, empty when nothing matched.
	Template template.Kind `json:"template,omitempty"`
	// Gate is the flag recipients were selected by.
	Gate preference.Flag `json:"gate,omitempty"`
	// Attempted is the number of recipients a send was attempted for.
	Attempted int `json:"attempted"`
	// Sent is the number of successful sends.
	Sent int `json:"sent"`
	// Failed is Attempted minus Sent.
	Failed int `json:"failed"`
	// Errors lists failed recipients in recipient order.
	Errors []RecipientError `json:"errors,omitempty"`
	// Duration is the wall time of the dispatch.
	Duration time.Duration `json:"duration"`
}

// NewResult returns an empty result with a fresh ID.
func NewResult() Result {
	return Result{ID: uuid.New()}
}

// Record adds the outcome of one send.
func (r *Result) Record(rcpt Recipient, err error) {
	r.Attempted++
	if err == nil {
		r.Sent++
		return
	}
	r.Failed++
	r.Errors = append(r.Errors, RecipientError{
		UserID:  rcpt.UserID,
		Address: rcpt.Address,
		Reason:  err.Error(),
		Err:     err,
	})
}

// Outcome classifies the result for metrics and logs.
func (r Result) Outcome() string {
	switch {
	case r.Template == "":
		return "unmatched"
	case r.Attempted == 0:
		return "no_recipients"
	case r.Failed == 0:
		return "sent"
	case r.Sent == 0:
		return "failed"
	default:
		return "partial"
	}
}

// Channel delivers template messages.
type Channel interface {
	// Send delivers one message. Implementations must be safe for
	// concurrent use and make exactly one delivery attempt.
	Send(ctx context.Context, msg Message) error
}

// CredentialChecker is implemented by channels that need a credential.
type CredentialChecker interface {
	// CheckCredential returns ErrMissingCredential when the channel
	// cannot authenticate any send.
	CheckCredential(ctx context.Context) error
}

// ChannelFunc adapts a function to Channel.
type ChannelFunc func(ctx context.Context, msg Message) error

// Send implements Channel.
func (f ChannelFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
