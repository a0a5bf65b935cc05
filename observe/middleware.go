package observe

import (
	"context"
	"time"
)

// CallFunc is an outbound dependency call.
type CallFunc func(ctx context.Context) error

// Middleware instruments dependency calls with tracing, metrics, and
// logging. A zero Middleware is usable and records nothing.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware from an Observer's telemetry
// primitives. Metric instrument creation can fail; everything else is
// infallible.
func NewMiddleware(obs Observer) (*Middleware, error) {
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return &Middleware{
		tracer:  NewTracer(obs.Tracer()),
		metrics: metrics,
		logger:  obs.Logger(),
	}, nil
}

// Wrap returns a call that runs fn inside a span, records call metrics,
// and logs the outcome.
func (m *Middleware) Wrap(meta CallMeta, fn CallFunc) CallFunc {
	return func(ctx context.Context) error {
		tracer := m.tracer
		if tracer == nil {
			tracer = NewNoopTracer()
		}
		metrics := m.metrics
		if metrics == nil {
			metrics = NewNoopMetrics()
		}
		logger := m.logger
		if logger == nil {
			logger = &noopLogger{}
		}

		ctx, end := tracer.StartCall(ctx, meta)
		start := time.Now()

		err := fn(ctx)

		duration := time.Since(start)
		end(err)
		metrics.RecordCall(ctx, meta, duration, err)

		log := logger.WithCall(meta)
		if err != nil {
			log.Error(ctx, "dependency call failed",
				Field{Key: "error", Value: err.Error()},
				Field{Key: "duration_ms", Value: duration.Milliseconds()},
			)
		} else {
			log.Debug(ctx, "dependency call completed",
				Field{Key: "duration_ms", Value: duration.Milliseconds()},
			)
		}

		return err
	}
}
