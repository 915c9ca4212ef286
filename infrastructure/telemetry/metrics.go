// Package telemetry provides OpenTelemetry metrics for notification dispatch.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Send statuses.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Metrics defines the interface for metrics recording.
type Metrics interface {
	// RecordDispatch records one finished dispatch.
	RecordDispatch(ctx context.Context, template, outcome string, duration time.Duration)
	// RecordSends records per-recipient delivery counts for one dispatch.
	RecordSends(ctx context.Context, template string, sent, failed int)
}

// MetricsProvider provides access to metrics instruments.
type MetricsProvider struct {
	meter metric.Meter

	dispatches       metric.Int64Counter
	sends            metric.Int64Counter
	dispatchDuration metric.Float64Histogram

	initErr error
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	// MeterName is the name of the meter.
	MeterName string
	// MeterVersion is the version of the meter.
	MeterVersion string
	// MeterProvider supplies the meter. Defaults to the global provider.
	MeterProvider metric.MeterProvider
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "github.com/felixgeelhaar/notify-go",
		MeterVersion: "1.0.0",
	}
}

// NewMetricsProvider creates a new metrics provider.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	if config.MeterName == "" {
		config.MeterName = DefaultMetricsConfig().MeterName
	}
	provider := config.MeterProvider
	if provider == nil {
		provider = otel.GetMeterProvider()
	}

	mp := &MetricsProvider{
		meter: provider.Meter(
			config.MeterName,
			metric.WithInstrumentationVersion(config.MeterVersion),
		),
	}
	mp.initErr = mp.initInstruments()
	return mp
}

func (mp *MetricsProvider) initInstruments() error {
	var err error

	mp.dispatches, err = mp.meter.Int64Counter(
		"notify.dispatch.total",
		metric.WithDescription("Number of dispatch requests by outcome"),
		metric.WithUnit("{dispatch}"),
	)
	if err != nil {
		return err
	}

	mp.sends, err = mp.meter.Int64Counter(
		"notify.send.total",
		metric.WithDescription("Number of per-recipient send attempts by status"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return err
	}

	mp.dispatchDuration, err = mp.meter.Float64Histogram(
		"notify.dispatch.duration",
		metric.WithDescription("Duration of dispatch requests"),
		metric.WithUnit("ms"),
	)
	return err
}

// Error returns any initialization error.
func (mp *MetricsProvider) Error() error {
	return mp.initErr
}

// RecordDispatch implements Metrics.
func (mp *MetricsProvider) RecordDispatch(ctx context.Context, template, outcome string, duration time.Duration) {
	if mp.initErr != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("template", template),
		attribute.String("outcome", outcome),
	)
	mp.dispatches.Add(ctx, 1, attrs)
	mp.dispatchDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordSends implements Metrics.
func (mp *MetricsProvider) RecordSends(ctx context.Context, template string, sent, failed int) {
	if mp.initErr != nil {
		return
	}
	if sent > 0 {
		mp.sends.Add(ctx, int64(sent), metric.WithAttributes(
			attribute.String("template", template),
			attribute.String("status", StatusSent),
		))
	}
	if failed > 0 {
		mp.sends.Add(ctx, int64(failed), metric.WithAttributes(
			attribute.String("template", template),
			attribute.String("status", StatusFailed),
		))
	}
}

// NoopMetricsProvider is a no-op metrics provider for testing or when metrics are disabled.
type NoopMetricsProvider struct{}

// RecordDispatch is a no-op.
func (NoopMetricsProvider) RecordDispatch(context.Context, string, string, time.Duration) {}

// RecordSends is a no-op.
func (NoopMetricsProvider) RecordSends(context.Context, string, int, int) {}

// Ensure implementations satisfy the interface.
var (
	_ Metrics = (*MetricsProvider)(nil)
	_ Metrics = NoopMetricsProvider{}
)
