package health

import (
	"context"
	"time"
)

// Status represents the health of a component.
type Status int

const (
	// StatusHealthy indicates the component is functioning normally.
	StatusHealthy Status = iota
	// StatusDegraded indicates the component works but with reduced capacity.
	StatusDegraded
	// StatusUnhealthy indicates the component is not functioning.
	StatusUnhealthy
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Result is the outcome of a single health check.
type Result struct {
	Status Status

	// Message gives human-readable context for the status.
	Message string

	// Details holds arbitrary metadata about the check.
	Details map[string]any

	// Duration is how long the check took.
	Duration time.Duration

	// Timestamp is when the check ran.
	Timestamp time.Time

	// Error is set when the check failed.
	Error error
}

// Healthy creates a healthy result.
func Healthy(message string) Result {
	return Result{Status: StatusHealthy, Message: message, Timestamp: time.Now()}
}

// Degraded creates a degraded result.
func Degraded(message string) Result {
	return Result{Status: StatusDegraded, Message: message, Timestamp: time.Now()}
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string, err error) Result {
	return Result{Status: StatusUnhealthy, Message: message, Error: err, Timestamp: time.Now()}
}

// WithDetails attaches metadata to a result.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// Checker is a single health check.
type Checker interface {
	// Name identifies this checker.
	Name() string

	// Check runs the health check.
	Check(ctx context.Context) Result
}

type checkerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewChecker adapts a function into a named Checker.
func NewChecker(name string, fn func(context.Context) Result) Checker {
	return &checkerFunc{name: name, fn: fn}
}

func (c *checkerFunc) Name() string { return c.name }

func (c *checkerFunc) Check(ctx context.Context) Result { return c.fn(ctx) }
