package observe

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Fault-containment event names, as published by the resilience layer.
const (
	eventBreakerOpened     = "breaker.opened"
	eventBreakerHalfOpened = "breaker.half_opened"
	eventBreakerClosed     = "breaker.closed"
	eventPoolAcquired      = "pool.acquired"
	eventPoolReleased      = "pool.released"
	eventPoolTimeout       = "pool.timeout"
)

// Collector turns fault-containment events into metrics and log lines.
// Its Handle method is shaped to plug in directly as an observer callback.
type Collector struct {
	logger      Logger
	transitions metric.Int64Counter
	poolWait    metric.Float64Histogram
	poolActive  metric.Int64UpDownCounter
	poolTimeout metric.Int64Counter
}

// NewCollector creates a Collector on the given meter and logger.
// A nil logger disables log output.
func NewCollector(meter metric.Meter, logger Logger) (*Collector, error) {
	if logger == nil {
		logger = &noopLogger{}
	}

	transitions, err := meter.Int64Counter("breaker.transitions",
		metric.WithDescription("Circuit breaker state transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transition counter: %w", err)
	}

	poolWait, err := meter.Float64Histogram("pool.wait_ms",
		metric.WithDescription("Time spent waiting for a pool slot in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool wait histogram: %w", err)
	}

	poolActive, err := meter.Int64UpDownCounter("pool.active",
		metric.WithDescription("Operations currently holding a pool slot"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool active counter: %w", err)
	}

	poolTimeout, err := meter.Int64Counter("pool.timeouts",
		metric.WithDescription("Pool acquisitions that timed out"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool timeout counter: %w", err)
	}

	return &Collector{
		logger:      logger,
		transitions: transitions,
		poolWait:    poolWait,
		poolActive:  poolActive,
		poolTimeout: poolTimeout,
	}, nil
}

// Handle processes one event. It is safe for concurrent use and never
// blocks on the caller's lock; events arrive after state changes commit.
func (c *Collector) Handle(event string, data map[string]any) {
	ctx := context.Background()

	switch event {
	case eventBreakerOpened, eventBreakerHalfOpened, eventBreakerClosed:
		dep, _ := data["dependency"].(string)
		state, _ := data["state"].(string)
		c.transitions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("dep.name", dep),
			attribute.String("state", state),
		))
		if event == eventBreakerOpened {
			c.logger.Warn(ctx, "circuit breaker opened",
				Field{Key: "dependency", Value: dep},
				Field{Key: "failure_count", Value: data["failure_count"]},
				Field{Key: "next_attempt_at", Value: data["next_attempt_at"]},
			)
		} else {
			c.logger.Info(ctx, "circuit breaker "+state,
				Field{Key: "dependency", Value: dep},
			)
		}

	case eventPoolAcquired:
		pool, _ := data["pool"].(string)
		attrs := metric.WithAttributes(attribute.String("pool", pool))
		c.poolActive.Add(ctx, 1, attrs)
		if wait, ok := data["wait"].(time.Duration); ok {
			c.poolWait.Record(ctx, float64(wait.Milliseconds()), attrs)
		}

	case eventPoolReleased:
		pool, _ := data["pool"].(string)
		c.poolActive.Add(ctx, -1, metric.WithAttributes(attribute.String("pool", pool)))

	case eventPoolTimeout:
		pool, _ := data["pool"].(string)
		c.poolTimeout.Add(ctx, 1, metric.WithAttributes(attribute.String("pool", pool)))
		c.logger.Warn(ctx, "pool acquisition timed out",
			Field{Key: "pool", Value: pool},
			Field{Key: "waiting", Value: data["waiting"]},
			Field{Key: "capacity", Value: data["capacity"]},
		)
	}
}
