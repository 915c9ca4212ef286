package application

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/notify-go/domain/notification"
	"github.com/felixgeelhaar/notify-go/infrastructure/telemetry"
)

// Option configures the dispatcher.
type Option func(*DispatcherConfig)

// WithRecipients sets the recipient resolver.
func WithRecipients(r *RecipientResolver) Option {
	return func(c *DispatcherConfig) {
		c.Recipients = r
	}
}

// WithChannel sets the delivery channel.
func WithChannel(ch notification.Channel) Option {
	return func(c *DispatcherConfig) {
		c.Channel = ch
	}
}

// WithMaxConcurrency bounds in-flight sends per dispatch. 0 is unbounded.
func WithMaxConcurrency(n int) Option {
	return func(c *DispatcherConfig) {
		c.MaxConcurrency = n
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m telemetry.Metrics) Option {
	return func(c *DispatcherConfig) {
		c.Metrics = m
	}
}

// WithTracer sets the tracer used for dispatch spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *DispatcherConfig) {
		c.Tracer = t
	}
}

// NewDispatcherWithOptions creates a dispatcher with functional options.
func NewDispatcherWithOptions(opts ...Option) (*Dispatcher, error) {
	config := DispatcherConfig{}
	for _, opt := range opts {
		opt(&config)
	}
	return NewDispatcher(config)
}
