package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// RateLimiterConfig configures the rate limiter.
type RateLimiterConfig struct {
	// Rate is the number of operations allowed per second.
	// Default: 100
	Rate float64

	// Burst is the maximum burst size.
	// Default: 10
	Burst int

	// WaitOnLimit waits for a token instead of returning an error.
	// Default: false
	WaitOnLimit bool

	// MaxWait is the maximum time to wait for a token.
	// Default: 1 second
	MaxWait time.Duration

	// Clock supplies refill timing; inject a fake clock in tests.
	// Default: the real clock.
	Clock clockwork.Clock
}

// RateLimiter implements a token bucket rate limiter. It is an optional
// outermost invoker stage: calls shed here never reach the circuit breaker.
type RateLimiter struct {
	config RateLimiterConfig

	mu          sync.Mutex
	tokens      float64
	lastRefresh time.Time
}

// NewRateLimiter creates a new rate limiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	// Apply defaults
	if config.Rate <= 0 {
		config.Rate = 100
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	if config.MaxWait <= 0 {
		config.MaxWait = time.Second
	}
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}

	return &RateLimiter{
		config:      config,
		tokens:      float64(config.Burst),
		lastRefresh: config.Clock.Now(),
	}
}

// Allow checks if a request is allowed under the rate limit.
func (rl *RateLimiter) Allow() bool {
	return rl.AllowN(1)
}

// AllowN checks if n requests are allowed.
func (rl *RateLimiter) AllowN(n int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()

	if rl.tokens >= float64(n) {
		rl.tokens -= float64(n)
		return true
	}

	return false
}

// Wait blocks until a token is available or the context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.WaitN(ctx, 1)
}

// WaitN blocks until n tokens are available, bounded by MaxWait.
func (rl *RateLimiter) WaitN(ctx context.Context, n int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if rl.AllowN(n) {
		return nil
	}

	rl.mu.Lock()
	tokensNeeded := float64(n) - rl.tokens
	waitTime := time.Duration(tokensNeeded / rl.config.Rate * float64(time.Second))
	rl.mu.Unlock()

	if waitTime > rl.config.MaxWait {
		waitTime = rl.config.MaxWait
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-rl.config.Clock.After(waitTime):
		if rl.AllowN(n) {
			return nil
		}
		return ErrRateLimitExceeded
	}
}

// Execute runs the operation if allowed by the rate limit.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if rl.config.WaitOnLimit {
		if err := rl.Wait(ctx); err != nil {
			return err
		}
	} else if !rl.Allow() {
		return ErrRateLimitExceeded
	}

	return op(ctx)
}

func (rl *RateLimiter) refillLocked() {
	now := rl.config.Clock.Now()
	elapsed := now.Sub(rl.lastRefresh)
	rl.lastRefresh = now

	rl.tokens += elapsed.Seconds() * rl.config.Rate

	if rl.tokens > float64(rl.config.Burst) {
		rl.tokens = float64(rl.config.Burst)
	}
}

// Tokens returns the current number of available tokens.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refillLocked()
	return rl.tokens
}

// Reset refills the bucket to full capacity.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.tokens = float64(rl.config.Burst)
	rl.lastRefresh = rl.config.Clock.Now()
}
