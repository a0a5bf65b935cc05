package resilience

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Config is the per-dependency configuration surface for an Invoker.
// Zero values mean defaults.
type Config struct {
	// FailureThreshold is the consecutive failures before the breaker opens.
	// Default: 5
	FailureThreshold int

	// BaseTimeout is the breaker's initial cooldown.
	// Default: 60 seconds
	BaseTimeout time.Duration

	// MaxRetries is the retry budget after the initial attempt.
	// Default: 3
	MaxRetries int

	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// BackoffMultiplier grows the retry delay.
	// Default: 2.0
	BackoffMultiplier float64

	// PoolName selects an optional bulkhead pool. Requires WithPoolSet and
	// the pool must already be registered.
	PoolName string

	// AcquireTimeout bounds the bulkhead wait.
	// Default: 5 seconds
	AcquireTimeout time.Duration

	// AttemptTimeout bounds each individual attempt. Zero disables it.
	AttemptTimeout time.Duration

	// IsFailure determines which errors count against the breaker.
	// Default: all non-nil errors.
	IsFailure func(err error) bool

	// Observer receives breaker transition events.
	Observer Observer

	// Clock supplies time for the breaker and retry delays.
	// Default: the real clock.
	Clock clockwork.Clock

	// Rand supplies breaker cooldown jitter.
	// Default: math/rand/v2.Int64N.
	Rand func(n int64) int64
}

// Invoker wraps a caller-supplied operation with the fixed resilience chain
// for one dependency:
//
//	CircuitBreaker( Retry( Bulkhead( Timeout( op ) ) ) )
//
// The breaker sits outside retry so one exhausted run counts as a single
// failure, and the bulkhead sits inside retry so pool capacity is consumed
// only while an attempt is actually outstanding. An optional rate limiter
// sheds load before the breaker ever sees the call.
type Invoker struct {
	name           string
	breaker        *CircuitBreaker
	retry          *Retry
	limiter        *RateLimiter
	timeout        *Timeout
	pools          *PoolSet
	poolName       string
	acquireTimeout time.Duration
}

// InvokerOption configures an Invoker beyond its per-dependency Config.
type InvokerOption func(*Invoker)

// WithPoolSet attaches the bulkhead pool registry. Required when
// Config.PoolName is set.
func WithPoolSet(pools *PoolSet) InvokerOption {
	return func(inv *Invoker) {
		inv.pools = pools
	}
}

// WithRateLimiter adds an optional outermost rate limiting stage.
func WithRateLimiter(rl *RateLimiter) InvokerOption {
	return func(inv *Invoker) {
		inv.limiter = rl
	}
}

// NewInvoker builds the resilience chain for one dependency. Configuration
// misuse (a pool name without a pool set, or an unregistered pool) is fatal
// here, not at call time.
func NewInvoker(name string, cfg Config, opts ...InvokerOption) (*Invoker, error) {
	inv := &Invoker{
		name: name,
		breaker: NewCircuitBreaker(CircuitBreakerConfig{
			Name:             name,
			FailureThreshold: cfg.FailureThreshold,
			BaseTimeout:      cfg.BaseTimeout,
			IsFailure:        cfg.IsFailure,
			Observer:         cfg.Observer,
			Clock:            cfg.Clock,
			Rand:             cfg.Rand,
		}),
		retry: NewRetry(RetryConfig{
			MaxRetries:   cfg.MaxRetries,
			InitialDelay: cfg.InitialDelay,
			Multiplier:   cfg.BackoffMultiplier,
			Clock:        cfg.Clock,
		}),
		poolName:       cfg.PoolName,
		acquireTimeout: cfg.AcquireTimeout,
	}
	if cfg.AttemptTimeout > 0 {
		inv.timeout = NewTimeout(TimeoutConfig{Timeout: cfg.AttemptTimeout})
	}

	for _, opt := range opts {
		opt(inv)
	}

	if inv.poolName != "" {
		if inv.pools == nil {
			return nil, fmt.Errorf("resilience: dependency %q names pool %q but has no pool set", name, inv.poolName)
		}
		if _, err := inv.pools.Get(inv.poolName); err != nil {
			return nil, err
		}
	}

	return inv, nil
}

// Execute runs the operation through the dependency's resilience chain.
func (inv *Invoker) Execute(ctx context.Context, op func(context.Context) error) error {
	execute := op

	// Per-attempt deadline, innermost.
	if inv.timeout != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return inv.timeout.Execute(ctx, inner)
		}
	}

	// Bulkhead: capacity is held only while an attempt runs.
	if inv.poolName != "" {
		inner := execute
		execute = func(ctx context.Context) error {
			return inv.pools.Execute(ctx, inv.poolName, inv.acquireTimeout, inner)
		}
	}

	// Retry: the whole run is one outcome for the breaker.
	{
		inner := execute
		execute = func(ctx context.Context) error {
			return inv.retry.Execute(ctx, inner)
		}
	}

	// Breaker: gate the run, outermost of the fixed chain.
	{
		inner := execute
		execute = func(ctx context.Context) error {
			return inv.breaker.Execute(ctx, inner)
		}
	}

	// Optional load shedding before the breaker sees the call.
	if inv.limiter != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return inv.limiter.Execute(ctx, inner)
		}
	}

	return execute(ctx)
}

// Name returns the dependency name.
func (inv *Invoker) Name() string {
	return inv.name
}

// Breaker exposes the dependency's circuit breaker for read access.
func (inv *Invoker) Breaker() *CircuitBreaker {
	return inv.breaker
}
