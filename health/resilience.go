package health

import (
	"context"
	"fmt"

	"github.com/bulwark-go/bulwark/resilience"
)

// BreakerChecker reports a circuit breaker's state as component health:
// closed is healthy, half-open is degraded, open is unhealthy.
type BreakerChecker struct {
	name    string
	breaker *resilience.CircuitBreaker
}

// NewBreakerChecker creates a checker for the given breaker.
func NewBreakerChecker(name string, breaker *resilience.CircuitBreaker) *BreakerChecker {
	return &BreakerChecker{name: name, breaker: breaker}
}

func (c *BreakerChecker) Name() string { return c.name }

func (c *BreakerChecker) Check(ctx context.Context) Result {
	snap := c.breaker.Snapshot()
	details := map[string]any{
		"state":         snap.State.String(),
		"failure_count": snap.FailureCount,
	}

	switch snap.State {
	case resilience.StateOpen:
		details["next_attempt_at"] = snap.NextAttemptAt
		return Unhealthy(
			fmt.Sprintf("circuit open after %d failures", snap.FailureCount),
			resilience.ErrCircuitOpen,
		).WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit half-open, probing").WithDetails(details)
	default:
		return Healthy("circuit closed").WithDetails(details)
	}
}

// PoolCheckerConfig sets the thresholds for pool health.
type PoolCheckerConfig struct {
	// DegradedUtilization marks the pool degraded at or above this
	// utilization. Default: 0.8.
	DegradedUtilization float64

	// UnhealthyWaiting marks the pool unhealthy when at least this
	// many callers are queued. Default: capacity.
	UnhealthyWaiting int
}

// PoolChecker reports a bulkhead pool's saturation as component health.
type PoolChecker struct {
	name   string
	pool   *resilience.Pool
	config PoolCheckerConfig
}

// NewPoolChecker creates a checker for the given pool.
func NewPoolChecker(name string, pool *resilience.Pool, config ...PoolCheckerConfig) *PoolChecker {
	cfg := PoolCheckerConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.DegradedUtilization <= 0 {
		cfg.DegradedUtilization = 0.8
	}
	if cfg.UnhealthyWaiting <= 0 {
		cfg.UnhealthyWaiting = pool.Stats().Capacity
	}
	return &PoolChecker{name: name, pool: pool, config: cfg}
}

func (c *PoolChecker) Name() string { return c.name }

func (c *PoolChecker) Check(ctx context.Context) Result {
	stats := c.pool.Stats()
	details := map[string]any{
		"capacity":    stats.Capacity,
		"active":      stats.Active,
		"waiting":     stats.Waiting,
		"utilization": stats.Utilization,
	}

	switch {
	case stats.Waiting >= c.config.UnhealthyWaiting:
		return Unhealthy(
			fmt.Sprintf("pool saturated, %d callers queued", stats.Waiting),
			nil,
		).WithDetails(details)
	case stats.Utilization >= c.config.DegradedUtilization:
		return Degraded(
			fmt.Sprintf("pool at %.0f%% utilization", stats.Utilization*100),
		).WithDetails(details)
	default:
		return Healthy("pool has free slots").WithDetails(details)
	}
}

// RegistryChecker reports the worst breaker state across all registered
// dependencies.
type RegistryChecker struct {
	name     string
	registry *resilience.Registry
}

// NewRegistryChecker creates a checker over all breakers in the registry.
func NewRegistryChecker(name string, registry *resilience.Registry) *RegistryChecker {
	return &RegistryChecker{name: name, registry: registry}
}

func (c *RegistryChecker) Name() string { return c.name }

func (c *RegistryChecker) Check(ctx context.Context) Result {
	snapshots := c.registry.Snapshots()

	details := make(map[string]any, len(snapshots))
	var open, halfOpen int
	for name, snap := range snapshots {
		details[name] = snap.State.String()
		switch snap.State {
		case resilience.StateOpen:
			open++
		case resilience.StateHalfOpen:
			halfOpen++
		}
	}

	switch {
	case open > 0:
		return Unhealthy(
			fmt.Sprintf("%d of %d circuits open", open, len(snapshots)),
			resilience.ErrCircuitOpen,
		).WithDetails(details)
	case halfOpen > 0:
		return Degraded(
			fmt.Sprintf("%d of %d circuits half-open", halfOpen, len(snapshots)),
		).WithDetails(details)
	default:
		return Healthy("all circuits closed").WithDetails(details)
	}
}
