package observe

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records outcome measurements for dependency calls.
type Metrics interface {
	// RecordCall records one completed call.
	RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error)
}

// metricsImpl implements Metrics with OpenTelemetry instruments.
type metricsImpl struct {
	calls    metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetrics creates call metrics on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	calls, err := meter.Int64Counter("dep.call.total",
		metric.WithDescription("Total number of dependency calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create call counter: %w", err)
	}

	errCounter, err := meter.Int64Counter("dep.call.errors",
		metric.WithDescription("Number of failed dependency calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create error counter: %w", err)
	}

	duration, err := meter.Float64Histogram("dep.call.duration_ms",
		metric.WithDescription("Dependency call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &metricsImpl{
		calls:    calls,
		errors:   errCounter,
		duration: duration,
	}, nil
}

func (m *metricsImpl) RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("dep.name", meta.Dependency),
		attribute.Bool("success", err == nil),
	}
	if meta.Pool != "" {
		attrs = append(attrs, attribute.String("dep.pool", meta.Pool))
	}
	opt := metric.WithAttributes(attrs...)

	m.calls.Add(ctx, 1, opt)
	if err != nil {
		m.errors.Add(ctx, 1, opt)
	}
	m.duration.Record(ctx, float64(duration.Milliseconds()), opt)
}

// noopMetrics is a Metrics that records nothing.
type noopMetrics struct{}

// NewNoopMetrics returns a Metrics that records nothing.
func NewNoopMetrics() Metrics {
	return &noopMetrics{}
}

func (m *noopMetrics) RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
}
