package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CallMeta identifies an outbound dependency call for telemetry purposes.
type CallMeta struct {
	// Dependency is the logical name of the downstream service.
	Dependency string

	// Pool is the bulkhead pool the call runs in, if any.
	Pool string
}

// SpanName returns the span name for a call to this dependency.
func (m CallMeta) SpanName() string {
	return "dep.call." + m.Dependency
}

// Tracer creates spans around dependency calls.
type Tracer interface {
	// StartCall starts a span for an outbound call. The returned
	// function ends the span, recording the outcome.
	StartCall(ctx context.Context, meta CallMeta) (context.Context, func(err error))
}

// tracerImpl implements Tracer on an OpenTelemetry tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer for dependency calls.
func NewTracer(tracer trace.Tracer) Tracer {
	return &tracerImpl{tracer: tracer}
}

func (t *tracerImpl) StartCall(ctx context.Context, meta CallMeta) (context.Context, func(err error)) {
	attrs := []attribute.KeyValue{
		attribute.String("dep.name", meta.Dependency),
	}
	if meta.Pool != "" {
		attrs = append(attrs, attribute.String("dep.pool", meta.Pool))
	}

	ctx, span := t.tracer.Start(ctx, meta.SpanName(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	start := time.Now()

	return ctx, func(err error) {
		span.SetAttributes(attribute.Int64("dep.duration_ms", time.Since(start).Milliseconds()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// noopTracer is a Tracer that records nothing.
type noopTracer struct{}

// NewNoopTracer returns a Tracer that records nothing.
func NewNoopTracer() Tracer {
	return &noopTracer{}
}

func (t *noopTracer) StartCall(ctx context.Context, meta CallMeta) (context.Context, func(err error)) {
	return ctx, func(err error) {}
}
