package resilience

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the circuit is rejecting all requests.
	StateOpen
	// StateHalfOpen means a single probe is testing if the dependency recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// maxCooldownShift caps the exponential cooldown at 64x the base timeout.
const maxCooldownShift = 6

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies the guarded dependency in events and snapshots.
	Name string

	// FailureThreshold is the number of consecutive failures before opening.
	// Default: 5
	FailureThreshold int

	// BaseTimeout is the initial cooldown after the circuit opens. Repeated
	// probe failures grow the cooldown exponentially, capped at 64x.
	// Default: 60 seconds
	BaseTimeout time.Duration

	// IsFailure determines if an error should count as a failure.
	// Default: all non-nil errors are failures.
	IsFailure func(err error) bool

	// Observer receives breaker transition events.
	Observer Observer

	// Clock supplies time; inject a fake clock in tests.
	// Default: the real clock.
	Clock clockwork.Clock

	// Rand supplies cooldown jitter, uniform in [0, n). Inject a seeded
	// source for reproducible backoff timing.
	// Default: math/rand/v2.Int64N.
	Rand func(n int64) int64
}

// CircuitBreaker is a per-dependency gate that stops calling a failing
// dependency for a growing cooldown window. One instance is shared by all
// callers of a dependency and lives for the process lifetime; state is
// process-local and starts from zero failures.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu            sync.Mutex
	state         State
	failureCount  int
	lastFailure   time.Time
	nextAttemptAt time.Time
	probeInFlight bool
}

// NewCircuitBreaker creates a new circuit breaker in the closed state.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	// Apply defaults
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.BaseTimeout <= 0 {
		config.BaseTimeout = 60 * time.Second
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}
	if config.Rand == nil {
		config.Rand = rand.Int64N
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// Execute runs the operation through the circuit breaker.
//
// While open, calls fail fast with ErrCircuitOpen and the operation is never
// invoked. Once the cooldown expires, exactly one caller is admitted as the
// half-open probe; everyone else keeps getting ErrCircuitOpen until the probe
// resolves. The operation's own error is always propagated unchanged after
// bookkeeping.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	probe, err := cb.admit()
	if err != nil {
		return err
	}

	err = op(ctx)
	cb.record(probe, err)
	return err
}

// admit decides whether a call may proceed and whether it is the half-open
// probe. Exactly one caller wins the probe slot per cooldown expiry.
func (cb *CircuitBreaker) admit() (probe bool, err error) {
	cb.mu.Lock()

	switch cb.state {
	case StateOpen:
		if cb.config.Clock.Now().Before(cb.nextAttemptAt) {
			cb.mu.Unlock()
			return false, ErrCircuitOpen
		}
		// Cooldown expired: this caller becomes the single probe.
		cb.state = StateHalfOpen
		cb.probeInFlight = true
		data := cb.eventDataLocked()
		cb.mu.Unlock()
		emit(cb.config.Observer, EventBreakerHalfOpened, data)
		return true, nil

	case StateHalfOpen:
		// A probe is outstanding; reject everyone else.
		cb.mu.Unlock()
		return false, ErrCircuitOpen

	default: // StateClosed
		cb.mu.Unlock()
		return false, nil
	}
}

// record updates counters after an admitted call completes.
func (cb *CircuitBreaker) record(probe bool, err error) {
	failed := cb.config.IsFailure(err)

	cb.mu.Lock()

	var event string
	switch {
	case probe:
		if cb.state != StateHalfOpen {
			// Reset raced with the probe; nothing to settle.
			cb.mu.Unlock()
			return
		}
		cb.probeInFlight = false
		if failed {
			cb.failureCount++
			cb.lastFailure = cb.config.Clock.Now()
			cb.openLocked()
			event = EventBreakerOpened
		} else {
			cb.failureCount = 0
			cb.state = StateClosed
			event = EventBreakerClosed
		}

	case cb.state == StateClosed:
		if failed {
			cb.failureCount++
			cb.lastFailure = cb.config.Clock.Now()
			if cb.failureCount >= cb.config.FailureThreshold {
				cb.openLocked()
				event = EventBreakerOpened
			}
		} else {
			cb.failureCount = 0
		}

	default:
		// A call admitted while closed finished after the breaker opened.
		// Counters are frozen while open; ignore it.
	}

	data := cb.eventDataLocked()
	cb.mu.Unlock()

	if event != "" {
		emit(cb.config.Observer, event, data)
	}
}

func (cb *CircuitBreaker) openLocked() {
	cb.state = StateOpen
	cb.nextAttemptAt = cb.config.Clock.Now().Add(cb.cooldownLocked())
}

// cooldownLocked computes BaseTimeout * 2^min(failureCount-threshold, 6)
// plus up to 10% jitter, so synchronized callers do not re-probe in lockstep.
func (cb *CircuitBreaker) cooldownLocked() time.Duration {
	shift := cb.failureCount - cb.config.FailureThreshold
	if shift < 0 {
		shift = 0
	}
	if shift > maxCooldownShift {
		shift = maxCooldownShift
	}

	d := cb.config.BaseTimeout << shift
	if window := d / 10; window > 0 {
		d += time.Duration(cb.config.Rand(int64(window)))
	}
	return d
}

func (cb *CircuitBreaker) eventDataLocked() map[string]any {
	return map[string]any{
		"dependency":      cb.config.Name,
		"state":           cb.state.String(),
		"failure_count":   cb.failureCount,
		"next_attempt_at": cb.nextAttemptAt,
	}
}

// State returns the current circuit state. Open is reported until a caller
// actually claims the probe slot; the Open to HalfOpen transition happens on
// admission, never as a side effect of polling.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// BreakerSnapshot is a point-in-time view of a circuit breaker.
type BreakerSnapshot struct {
	Name          string
	State         State
	FailureCount  int
	LastFailure   time.Time
	NextAttemptAt time.Time
}

// Snapshot returns the breaker's current counters. Safe to poll concurrently.
func (cb *CircuitBreaker) Snapshot() BreakerSnapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return BreakerSnapshot{
		Name:          cb.config.Name,
		State:         cb.state,
		FailureCount:  cb.failureCount,
		LastFailure:   cb.lastFailure,
		NextAttemptAt: cb.nextAttemptAt,
	}
}

// Reset forces the circuit breaker back to the closed state.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	wasClosed := cb.state == StateClosed
	cb.state = StateClosed
	cb.failureCount = 0
	cb.probeInFlight = false
	data := cb.eventDataLocked()
	cb.mu.Unlock()

	if !wasClosed {
		emit(cb.config.Observer, EventBreakerClosed, data)
	}
}
