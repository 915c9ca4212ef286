// Package api provides the public API for notify-go.
//
// notify-go turns back-office domain events into template messages and
// delivers them to every user who opted in to that kind of notification.
//
// # Quick Start
//
// Wire a dispatcher by hand:
//
//	store := memory.NewPreferenceStore(users...)
//	dispatcher, _ := api.NewDispatcher(api.DispatcherConfig{
//	    Recipients: api.NewRecipientResolver(store, api.NewNormalizer("AU")),
//	    Channel:    channel,
//	})
//	result, err := dispatcher.Dispatch(ctx, api.Request{
//	    Event: api.StageUpdate{Project: "Smith Kitchen", StageName: "Drafting"},
//	})
//
// Or build everything from a configuration file:
//
//	cfg, _ := api.NewConfigLoader().LoadFile("notify.yaml")
//	engine, _ := api.BuildFromConfig(ctx, cfg)
//	defer engine.Close(ctx)
//	result, err := engine.DispatchRecord(ctx, raw)
//
// # Errors
//
// Dispatch returns an error only for bad input (ErrInvalidEvent,
// ErrMalformedRecord, ErrUnknownKind) and for failures that affect every
// recipient alike (ErrMissingCredential, ErrRecipientLookup). Individual
// send failures are reported in Result.Errors.
package api

import (
	"github.com/felixgeelhaar/notify-go/application"
	"github.com/felixgeelhaar/notify-go/domain/event"
	"github.com/felixgeelhaar/notify-go/domain/notification"
	"github.com/felixgeelhaar/notify-go/domain/preference"
	"github.com/felixgeelhaar/notify-go/domain/template"
	"github.com/felixgeelhaar/notify-go/infrastructure/phone"
)

// Re-export dispatch types.
type (
	// Dispatcher fans events out to subscribed recipients.
	Dispatcher = application.Dispatcher
	// DispatcherConfig configures a Dispatcher.
	DispatcherConfig = application.DispatcherConfig
	// DispatcherOption configures a Dispatcher functionally.
	DispatcherOption = application.Option
	// Request asks for one event to be dispatched.
	Request = application.Request
	// Plan is the resolved template, gate and parameters for an event.
	Plan = application.Plan
	// RecipientResolver turns a gate into deduplicated recipients.
	RecipientResolver = application.RecipientResolver
	// Normalizer normalizes phone numbers.
	Normalizer = application.Normalizer
)

// Re-export domain types.
type (
	// Event is a domain event.
	Event = event.Event
	// EventRecord is the loosely-typed JSON form of an event.
	EventRecord = event.Record
	// Attributes are the named attributes of an event.
	Attributes = event.Attributes
	// StageUpdate reports a completed pipeline stage.
	StageUpdate = event.StageUpdate
	// MaterialOrder reports a material order status change.
	MaterialOrder = event.MaterialOrder
	// SupplierStatement reports a new supplier statement.
	SupplierStatement = event.SupplierStatement
	// StockTransaction reports a stock movement.
	StockTransaction = event.StockTransaction
	// InstallerAssignment reports an installer assigned to a job.
	InstallerAssignment = event.InstallerAssignment
	// MeetingConfirmation reports a confirmed meeting.
	MeetingConfirmation = event.MeetingConfirmation

	// TemplateKind identifies a message template.
	TemplateKind = template.Kind
	// Flag is a user preference flag.
	Flag = preference.Flag
	// User is a user with preference flags.
	User = preference.User
	// PreferenceStore looks up users by preference flag.
	PreferenceStore = preference.Store

	// Channel delivers template messages.
	Channel = notification.Channel
	// ChannelFunc adapts a function to Channel.
	ChannelFunc = notification.ChannelFunc
	// Message is one outbound template message.
	Message = notification.Message
	// Recipient is one address a message is sent to.
	Recipient = notification.Recipient
	// Result is the outcome of one dispatch.
	Result = notification.Result
	// RecipientError records a failed send.
	RecipientError = notification.RecipientError
)

// Template kinds.
const (
	TemplateStageCompleted          = template.KindStageCompleted
	TemplateMaterialsToOrderUpdate  = template.KindMaterialsToOrderUpdate
	TemplateSupplierStatementAdded  = template.KindSupplierStatementAdded
	TemplateStockTransactionCreated = template.KindStockTransactionCreated
	TemplateInstallerAssigned       = template.KindInstallerAssigned
	TemplateMeetingConfirmation     = template.KindMeetingConfirmation
)

// Dispatch errors.
var (
	ErrInvalidEvent        = notification.ErrInvalidEvent
	ErrMalformedRecord     = event.ErrMalformedRecord
	ErrUnknownKind         = template.ErrUnknownKind
	ErrMissingCredential   = notification.ErrMissingCredential
	ErrRecipientLookup     = notification.ErrRecipientLookup
	ErrChannelRejected     = notification.ErrChannelRejected
	ErrChannelUnauthorized = notification.ErrChannelUnauthorized
	ErrChannelUnavailable  = notification.ErrChannelUnavailable
	ErrArityMismatch       = notification.ErrArityMismatch
	ErrNotConfigured       = application.ErrNotConfigured
)

// NewDispatcher creates a dispatcher.
func NewDispatcher(config DispatcherConfig) (*Dispatcher, error) {
	return application.NewDispatcher(config)
}

// NewDispatcherWithOptions creates a dispatcher from functional options.
func NewDispatcherWithOptions(opts ...DispatcherOption) (*Dispatcher, error) {
	return application.NewDispatcherWithOptions(opts...)
}

// NewRecipientResolver creates a recipient resolver. A nil normalizer uses
// the default region.
func NewRecipientResolver(store PreferenceStore, normalizer Normalizer) *RecipientResolver {
	return application.NewRecipientResolver(store, normalizer)
}

// NewNormalizer creates a phone normalizer for region, an ISO 3166-1
// alpha-2 code.
func NewNormalizer(region string) *phone.Normalizer {
	return phone.NewNormalizer(region)
}

// Prepare resolves the template, gate and parameters for req without any I/O.
func Prepare(req Request) (Plan, error) {
	return application.Prepare(req)
}

// ParseRecord decodes a JSON event record.
func ParseRecord(raw []byte) (EventRecord, error) {
	return event.ParseRecord(raw)
}

// ParseTemplate validates a template kind name.
func ParseTemplate(s string) (TemplateKind, error) {
	return template.ParseKind(s)
}

// WithRecipients sets the recipient resolver.
func WithRecipients(r *RecipientResolver) DispatcherOption {
	return application.WithRecipients(r)
}

// WithChannel sets the channel.
func WithChannel(ch Channel) DispatcherOption {
	return application.WithChannel(ch)
}

// WithMaxConcurrency bounds in-flight sends per dispatch. 0 is unbounded.
func WithMaxConcurrency(n int) DispatcherOption {
	return application.WithMaxConcurrency(n)
}
