package resilience

import (
	"context"
	"errors"
	"time"
)

// TimeoutConfig configures the per-attempt timeout wrapper.
type TimeoutConfig struct {
	// Timeout is the maximum duration for one attempt.
	// Default: 30 seconds
	Timeout time.Duration
}

// Timeout bounds a single attempt with a deadline. As the innermost invoker
// stage it converts a slow attempt into ErrTimeout, which an enclosing Retry
// treats like any other upstream failure.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a new timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	// Apply defaults
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Timeout{config: config}
}

// Execute runs the operation with a deadline. The operation receives the
// derived context and is expected to honor it; Execute returns as soon as the
// deadline passes even if the operation is still draining.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	}
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}
