package resilience

import "errors"

// Sentinel errors for resilience operations. All of them are distinguishable
// with errors.Is so callers can apply different recovery per failure kind.
var (
	// ErrCircuitOpen is returned when the circuit breaker gate is shut, or
	// while a half-open probe is already in flight.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrPoolTimeout is returned when no bulkhead slot frees up within the
	// acquisition timeout.
	ErrPoolTimeout = errors.New("resilience: bulkhead pool acquisition timed out")

	// ErrPoolNotFound is returned when a named bulkhead pool is not registered.
	ErrPoolNotFound = errors.New("resilience: bulkhead pool not found")

	// ErrPoolExists is returned when registering a bulkhead pool under a name
	// that is already taken.
	ErrPoolExists = errors.New("resilience: bulkhead pool already exists")

	// ErrDependencyNotFound is returned when a registry lookup misses.
	ErrDependencyNotFound = errors.New("resilience: dependency not registered")

	// ErrDependencyExists is returned when registering a dependency twice.
	ErrDependencyExists = errors.New("resilience: dependency already registered")

	// ErrRateLimitExceeded is returned when the rate limit is exceeded.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrTimeout is returned when an operation exceeds its attempt deadline.
	ErrTimeout = errors.New("resilience: operation timed out")
)
