package resilience

// Observer receives resilience events: circuit breaker transitions and
// bulkhead pool metric updates. It is intended for an external monitoring
// component; the observe package ships an OpenTelemetry-backed implementation.
//
// Observers are invoked synchronously but never while internal locks are
// held, so an observer may safely call back into Snapshot or Stats.
// Implementations must be safe for concurrent use and must not panic.
type Observer func(event string, data map[string]any)

// Event names passed to an Observer.
const (
	// EventBreakerOpened fires when a breaker transitions to Open.
	EventBreakerOpened = "breaker.opened"

	// EventBreakerHalfOpened fires when a breaker admits a half-open probe.
	EventBreakerHalfOpened = "breaker.half_opened"

	// EventBreakerClosed fires when a breaker transitions back to Closed.
	EventBreakerClosed = "breaker.closed"

	// EventPoolAcquired fires when a bulkhead slot is acquired, after any wait.
	EventPoolAcquired = "pool.acquired"

	// EventPoolReleased fires when a bulkhead slot is released.
	EventPoolReleased = "pool.released"

	// EventPoolTimeout fires when a waiter gives up before a slot frees.
	EventPoolTimeout = "pool.timeout"
)

func emit(obs Observer, event string, data map[string]any) {
	if obs != nil {
		obs(event, data)
	}
}
