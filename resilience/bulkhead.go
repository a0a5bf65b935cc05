package resilience

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/semaphore"
)

// Bulkhead pool limits.
const (
	// DefaultPoolCapacity is the capacity used when none is configured.
	DefaultPoolCapacity = 10

	// MaxPoolCapacity is the largest allowed pool capacity.
	MaxPoolCapacity = 50

	// DefaultAcquireTimeout bounds the wait for a slot when the caller
	// passes no timeout.
	DefaultAcquireTimeout = 5 * time.Second
)

// Pool is a named bulkhead: a counting semaphore with a FIFO wait queue that
// isolates resource consumption between dependency classes. Slots freed by a
// release are handed directly to the earliest waiter; later arrivals never
// overtake earlier, still-waiting ones.
type Pool struct {
	name     string
	capacity int
	sem      *semaphore.Weighted
	clock    clockwork.Clock
	observer Observer

	mu        sync.Mutex
	active    int
	waiting   int
	total     int64
	succeeded int64
	failed    int64
	acquired  int64 // completed acquisitions; denominator of avgWait
	avgWait   time.Duration
}

// Execute runs the operation inside the bulkhead. The slot is acquired before
// the operation starts and released on every exit path. A non-positive
// timeout means DefaultAcquireTimeout.
//
// When the pool is saturated the call waits in FIFO order; if the timeout
// elapses first the waiter is removed and the call fails with ErrPoolTimeout.
// Caller cancellation surfaces as ctx.Err().
func (p *Pool) Execute(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	if timeout <= 0 {
		timeout = DefaultAcquireTimeout
	}

	start := p.clock.Now()

	p.mu.Lock()
	p.total++
	p.mu.Unlock()

	// Fast path. TryAcquire fails whenever waiters exist, so it cannot jump
	// the queue.
	if !p.sem.TryAcquire(1) {
		if err := p.waitForSlot(ctx, timeout); err != nil {
			return err
		}
	}

	wait := p.clock.Now().Sub(start)
	p.admit(wait)

	err := func() error {
		defer p.release()
		return op(ctx)
	}()

	p.mu.Lock()
	if err != nil {
		p.failed++
	} else {
		p.succeeded++
	}
	p.mu.Unlock()

	return err
}

// waitForSlot joins the semaphore's wait queue, bounded by the timeout.
func (p *Pool) waitForSlot(ctx context.Context, timeout time.Duration) error {
	p.mu.Lock()
	p.waiting++
	p.mu.Unlock()

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	err := p.sem.Acquire(waitCtx, 1)
	cancel()

	p.mu.Lock()
	p.waiting--
	if err != nil {
		p.failed++
	}
	data := p.eventDataLocked()
	p.mu.Unlock()

	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		// Caller cancellation, not pool saturation.
		return ctx.Err()
	}
	emit(p.observer, EventPoolTimeout, data)
	return fmt.Errorf("%w: %q", ErrPoolTimeout, p.name)
}

func (p *Pool) admit(wait time.Duration) {
	p.mu.Lock()
	p.active++
	p.acquired++
	// Running average: avg <- (avg*(n-1) + wait) / n.
	p.avgWait += (wait - p.avgWait) / time.Duration(p.acquired)
	data := p.eventDataLocked()
	data["wait"] = wait
	p.mu.Unlock()

	emit(p.observer, EventPoolAcquired, data)
}

func (p *Pool) release() {
	p.mu.Lock()
	p.active--
	data := p.eventDataLocked()
	p.mu.Unlock()

	// The freed slot goes directly to the earliest waiter, if any.
	p.sem.Release(1)

	emit(p.observer, EventPoolReleased, data)
}

func (p *Pool) eventDataLocked() map[string]any {
	return map[string]any{
		"pool":         p.name,
		"capacity":     p.capacity,
		"active":       p.active,
		"waiting":      p.waiting,
		"average_wait": p.avgWait,
		"total":        p.total,
	}
}

// Name returns the pool's unique identifier.
func (p *Pool) Name() string {
	return p.name
}

// PoolStats is a point-in-time view of a bulkhead pool.
type PoolStats struct {
	Name               string
	Capacity           int
	Available          int
	Active             int
	Waiting            int
	Utilization        float64
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	AverageWait        time.Duration
}

// Stats returns the pool's current counters. Safe to poll concurrently.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PoolStats{
		Name:               p.name,
		Capacity:           p.capacity,
		Available:          p.capacity - p.active,
		Active:             p.active,
		Waiting:            p.waiting,
		Utilization:        float64(p.active) / float64(p.capacity),
		TotalRequests:      p.total,
		SuccessfulRequests: p.succeeded,
		FailedRequests:     p.failed,
		AverageWait:        p.avgWait,
	}
}

// PoolSetConfig configures a PoolSet.
type PoolSetConfig struct {
	// Observer receives pool events for every pool in the set.
	Observer Observer

	// Clock supplies wait-time measurement; inject a fake clock in tests.
	// Default: the real clock.
	Clock clockwork.Clock
}

// PoolSet is an explicit registry of bulkhead pools, one per resource class,
// populated at initialization and passed by reference to call sites.
type PoolSet struct {
	config PoolSetConfig

	mu    sync.RWMutex
	pools map[string]*Pool
}

// NewPoolSet creates an empty pool registry.
func NewPoolSet(config ...PoolSetConfig) *PoolSet {
	cfg := PoolSetConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	return &PoolSet{
		config: cfg,
		pools:  make(map[string]*Pool),
	}
}

// NewPool registers a pool under a unique name. A non-positive capacity means
// DefaultPoolCapacity; a capacity above MaxPoolCapacity is a setup error.
func (s *PoolSet) NewPool(name string, capacity int) (*Pool, error) {
	if capacity <= 0 {
		capacity = DefaultPoolCapacity
	}
	if capacity > MaxPoolCapacity {
		return nil, fmt.Errorf("resilience: pool %q capacity %d exceeds max %d", name, capacity, MaxPoolCapacity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pools[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrPoolExists, name)
	}

	p := &Pool{
		name:     name,
		capacity: capacity,
		sem:      semaphore.NewWeighted(int64(capacity)),
		clock:    s.config.Clock,
		observer: s.config.Observer,
	}
	s.pools[name] = p
	return p, nil
}

// Get returns the named pool, or ErrPoolNotFound.
func (s *PoolSet) Get(name string) (*Pool, error) {
	s.mu.RLock()
	p, ok := s.pools[name]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPoolNotFound, name)
	}
	return p, nil
}

// Execute runs the operation inside the named pool.
func (s *PoolSet) Execute(ctx context.Context, name string, timeout time.Duration, op func(context.Context) error) error {
	p, err := s.Get(name)
	if err != nil {
		return err
	}
	return p.Execute(ctx, timeout, op)
}

// Stats returns the named pool's counters, or ErrPoolNotFound.
func (s *PoolSet) Stats(name string) (PoolStats, error) {
	p, err := s.Get(name)
	if err != nil {
		return PoolStats{}, err
	}
	return p.Stats(), nil
}

// Names returns the registered pool names in sorted order.
func (s *PoolSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.pools))
	for name := range s.pools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
