// Package application provides the notification dispatch service.
package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/notify-go/domain/event"
	"github.com/felixgeelhaar/notify-go/domain/notification"
	"github.com/felixgeelhaar/notify-go/domain/template"
	"github.com/felixgeelhaar/notify-go/infrastructure/logging"
	"github.com/felixgeelhaar/notify-go/infrastructure/observability"
	"github.com/felixgeelhaar/notify-go/infrastructure/telemetry"
)

// outcomeError labels dispatches that ended in a batch-level error.
const outcomeError = "error"

// ErrNotConfigured is returned by NewDispatcher when a collaborator is missing.
var ErrNotConfigured = errors.New("dispatcher not configured")

// Request asks for one event to be dispatched.
type Request struct {
	// Event is the triggering event. Required.
	Event event.Event
	// Template overrides template inference when set.
	Template *template.Kind
}

// Plan is the I/O-free part of a dispatch: the resolved template, its gate
// and the positional parameters.
type Plan struct {
	template.Resolution
	Params []string `json:"params,omitempty"`
	// Event is the validated event in its value form.
	Event event.Event `json:"-"`
}

// Prepare validates req and resolves its template and parameters.
// Pointers to event variants are accepted; a nil pointer is invalid.
func Prepare(req Request) (Plan, error) {
	ev, ok := event.Value(req.Event)
	if !ok {
		return Plan{}, notification.ErrInvalidEvent
	}
	if req.Template != nil && !req.Template.Valid() {
		return Plan{}, fmt.Errorf("%w: %q", template.ErrUnknownKind, string(*req.Template))
	}

	res := template.Resolve(ev, req.Template)
	if !res.Matched {
		return Plan{Resolution: res, Event: ev}, nil
	}
	return Plan{
		Resolution: res,
		Params:     template.Build(res.Kind, ev.Attributes()),
		Event:      ev,
	}, nil
}

// DispatcherConfig configures the dispatcher.
type DispatcherConfig struct {
	Recipients     *RecipientResolver
	Channel        notification.Channel
	MaxConcurrency int
	Metrics        telemetry.Metrics
	Tracer         trace.Tracer
}

// Dispatcher turns events into template messages and fans them out to
// every subscribed recipient. It is safe for concurrent use.
type Dispatcher struct {
	recipients     *RecipientResolver
	channel        notification.Channel
	maxConcurrency int
	metrics        telemetry.Metrics
	tracer         trace.Tracer
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(config DispatcherConfig) (*Dispatcher, error) {
	if config.Recipients == nil {
		return nil, fmt.Errorf("%w: recipient resolver is required", ErrNotConfigured)
	}
	if config.Channel == nil {
		return nil, fmt.Errorf("%w: channel is required", ErrNotConfigured)
	}
	if config.MaxConcurrency < 0 {
		return nil, fmt.Errorf("%w: max concurrency must not be negative", ErrNotConfigured)
	}
	if config.Metrics == nil {
		config.Metrics = telemetry.NoopMetricsProvider{}
	}
	if config.Tracer == nil {
		config.Tracer = noop.NewTracerProvider().Tracer("notify")
	}

	return &Dispatcher{
		recipients:     config.Recipients,
		channel:        config.Channel,
		maxConcurrency: config.MaxConcurrency,
		metrics:        config.Metrics,
		tracer:         config.Tracer,
	}, nil
}

// DispatchRecord decodes a JSON event record and dispatches it.
func (d *Dispatcher) DispatchRecord(ctx context.Context, raw []byte) (notification.Result, error) {
	rec, err := event.ParseRecord(raw)
	if err != nil {
		return notification.Result{}, err
	}

	req := Request{Event: rec.Event()}
	if rec.Template != "" {
		kind, err := template.ParseKind(rec.Template)
		if err != nil {
			return notification.Result{}, err
		}
		req.Template = &kind
	}
	return d.Dispatch(ctx, req)
}

// Dispatch resolves the event, looks up recipients and sends one message
// per recipient, waiting for every send to settle.
//
// Input errors (notification.ErrInvalidEvent, template.ErrUnknownKind)
// and the batch-level errors notification.ErrMissingCredential and
// notification.ErrRecipientLookup are returned as errors. Per-recipient
// failures are reported in the Result only.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (notification.Result, error) {
	plan, err := Prepare(req)
	if err != nil {
		return notification.Result{}, err
	}

	start := time.Now()
	result := notification.NewResult()
	result.Template = plan.Kind
	result.Gate = plan.Gate

	ctx, span := d.tracer.Start(ctx, "notify.dispatch", trace.WithAttributes(
		attribute.String("notify.dispatch_id", result.ID.String()),
		attribute.String("notify.event_kind", string(plan.Event.Kind())),
		attribute.String("notify.template", string(plan.Kind)),
		attribute.String("notify.gate", string(plan.Gate)),
	))

	err = d.dispatch(ctx, plan, &result)
	result.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("notify.attempted", result.Attempted),
		attribute.Int("notify.sent", result.Sent),
		attribute.Int("notify.failed", result.Failed),
	)
	observability.EndSpan(span, err)

	outcome := result.Outcome()
	if err != nil {
		outcome = outcomeError
	}
	d.metrics.RecordDispatch(ctx, string(plan.Kind), outcome, result.Duration)
	d.metrics.RecordSends(ctx, string(plan.Kind), result.Sent, result.Failed)

	if err != nil {
		logging.Error().
			Add(logging.DispatchID(result.ID.String())).
			Add(logging.Template(plan.Kind)).
			Add(logging.Gate(plan.Gate)).
			Add(logging.ErrorField(err)).
			Msg("dispatch failed")
		return result, err
	}

	logging.Info().
		Add(logging.DispatchID(result.ID.String())).
		Add(logging.Template(plan.Kind)).
		Add(logging.Gate(plan.Gate)).
		Add(logging.Attempted(result.Attempted)).
		Add(logging.Sent(result.Sent)).
		Add(logging.Failed(result.Failed)).
		Add(logging.Duration(result.Duration)).
		Msg("dispatch completed")

	return result, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, plan Plan, result *notification.Result) error {
	if !plan.Matched {
		logging.Debug().
			Add(logging.DispatchID(result.ID.String())).
			Msg("no template for event")
		return nil
	}

	recipients, err := d.recipients.Resolve(ctx, plan.Gate)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		logging.Debug().
			Add(logging.DispatchID(result.ID.String())).
			Add(logging.Gate(plan.Gate)).
			Msg("no recipients")
		return nil
	}

	if checker, ok := d.channel.(notification.CredentialChecker); ok {
		if err := checker.CheckCredential(ctx); err != nil {
			if !errors.Is(err, notification.ErrMissingCredential) {
				err = fmt.Errorf("%w: %w", notification.ErrMissingCredential, err)
			}
			return err
		}
	}

	errs := d.fanOut(ctx, plan, recipients)

	for i, rcpt := range recipients {
		result.Record(rcpt, errs[i])
		if errs[i] != nil {
			logging.Warn().
				Add(logging.DispatchID(result.ID.String())).
				Add(logging.Template(plan.Kind)).
				Add(logging.UserID(rcpt.UserID)).
				Add(logging.Address(rcpt.Address)).
				Add(logging.ErrorField(errs[i])).
				Msg("send failed")
		}
	}
	return nil
}

// fanOut sends to every recipient concurrently and returns the per-recipient
// errors by index. Tasks never fail the group, so every send settles.
func (d *Dispatcher) fanOut(ctx context.Context, plan Plan, recipients []notification.Recipient) []error {
	errs := make([]error, len(recipients))

	var g errgroup.Group
	if d.maxConcurrency > 0 {
		g.SetLimit(d.maxConcurrency)
	}
	for i, rcpt := range recipients {
		msg := notification.Message{
			To:       rcpt.Address,
			Template: plan.Kind,
			Params:   slices.Clone(plan.Params),
		}
		g.Go(func() error {
			errs[i] = d.channel.Send(ctx, msg)
			return nil
		})
	}
	_ = g.Wait()

	return errs
}
