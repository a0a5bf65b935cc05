package resilience

import (
	"context"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
)

// BackoffPolicy maps a retry index to a wait duration. It is pure: the same
// policy and attempt always produce the same delay.
type BackoffPolicy struct {
	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// Multiplier grows the delay for each subsequent retry.
	Multiplier float64
}

// Delay returns the wait before retry i (1-indexed):
// InitialDelay * Multiplier^(i-1). There is no delay before the first attempt.
func (p BackoffPolicy) Delay(retry int) time.Duration {
	if retry < 1 {
		return 0
	}
	return time.Duration(float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(retry-1)))
}

// RetryConfig configures the retry executor.
type RetryConfig struct {
	// MaxRetries is the number of retries after the initial attempt, so a
	// run performs at most MaxRetries+1 attempts. Negative disables retries.
	// Default: 3
	MaxRetries int

	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// Multiplier is the backoff multiplier.
	// Default: 2.0
	Multiplier float64

	// RetryIf determines if an error should trigger a retry.
	// Default: all non-nil errors trigger retry.
	RetryIf func(err error) bool

	// OnRetry is called before each retry attempt.
	OnRetry func(retry int, err error, delay time.Duration)

	// Clock supplies the delay timer; inject a fake clock in tests.
	// Default: the real clock.
	Clock clockwork.Clock
}

// Retry repeatedly invokes an operation until success or the attempt budget
// is exhausted. It is stateless per call; a single Retry may be shared.
type Retry struct {
	config RetryConfig
	policy BackoffPolicy
}

// NewRetry creates a new retry executor.
func NewRetry(config RetryConfig) *Retry {
	// Apply defaults
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	} else if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}

	return &Retry{
		config: config,
		policy: BackoffPolicy{
			InitialDelay: config.InitialDelay,
			Multiplier:   config.Multiplier,
		},
	}
}

// Execute runs the operation, retrying failures until the budget is spent.
// After exhaustion the last underlying error is returned unchanged, so an
// enclosing circuit breaker sees the whole run as a single outcome.
//
// Cancellation is checked between attempts: once observed, no new delay is
// started and ctx.Err() is returned.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.policy.Delay(attempt)

			if r.config.OnRetry != nil {
				r.config.OnRetry(attempt, lastErr, delay)
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.config.Clock.After(delay):
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !r.config.RetryIf(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return lastErr
}

// Policy returns the backoff policy derived from the configuration.
func (r *Retry) Policy() BackoffPolicy {
	return r.policy
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
