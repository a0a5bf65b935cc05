package health

import (
	"context"
	"sync"
	"time"
)

// DefaultCheckTimeout bounds a full CheckAll run.
const DefaultCheckTimeout = 10 * time.Second

// AggregatorConfig configures the health aggregator.
type AggregatorConfig struct {
	// Timeout is the maximum time to wait for all checks.
	// Default: 10 seconds.
	Timeout time.Duration

	// CacheTTL serves CheckAll from cached results for this long, so
	// frequent probes do not hammer the checkers. Zero disables caching.
	CacheTTL time.Duration
}

// Aggregator combines multiple health checkers into one composite check.
// Checks run in parallel, each bounded by the configured timeout.
type Aggregator struct {
	config   AggregatorConfig
	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string

	cacheMu     sync.Mutex
	cached      map[string]Result
	cachedUntil time.Time
}

// NewAggregator creates a new health aggregator.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	cfg := AggregatorConfig{Timeout: DefaultCheckTimeout}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Timeout <= 0 {
			cfg.Timeout = DefaultCheckTimeout
		}
	}

	return &Aggregator{
		config:   cfg,
		checkers: make(map[string]Checker),
	}
}

// Register adds a checker under the given name, replacing any previous
// checker with that name.
func (a *Aggregator) Register(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.checkers[name]; !exists {
		a.order = append(a.order, name)
	}
	a.checkers[name] = checker
	a.invalidateCache()
}

// Unregister removes the named checker.
func (a *Aggregator) Unregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.checkers, name)
	for i, n := range a.order {
		if n == name {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	a.invalidateCache()
}

func (a *Aggregator) invalidateCache() {
	a.cacheMu.Lock()
	a.cached = nil
	a.cacheMu.Unlock()
}

// CheckerNames returns registered checker names in registration order.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.order))
	copy(names, a.order)
	return names
}

// Check runs a single named health check.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	checker, ok := a.checkers[name]
	a.mu.RUnlock()

	if !ok {
		return Result{}, ErrCheckerNotFound
	}
	return a.runCheck(ctx, checker), nil
}

// CheckAll runs every registered check in parallel and returns the
// results keyed by checker name. With a CacheTTL configured, results
// from a recent run are returned without re-checking.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	if a.config.CacheTTL > 0 {
		a.cacheMu.Lock()
		if a.cached != nil && time.Now().Before(a.cachedUntil) {
			cached := a.cached
			a.cacheMu.Unlock()
			return cached
		}
		a.cacheMu.Unlock()
	}

	a.mu.RLock()
	checkers := make(map[string]Checker, len(a.checkers))
	for name, checker := range a.checkers {
		checkers[name] = checker
	}
	a.mu.RUnlock()

	results := make(map[string]Result, len(checkers))
	if len(checkers) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	var wg sync.WaitGroup
	var resultsMu sync.Mutex
	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker Checker) {
			defer wg.Done()
			result := a.runCheck(ctx, checker)
			resultsMu.Lock()
			results[name] = result
			resultsMu.Unlock()
		}(name, checker)
	}
	wg.Wait()

	if a.config.CacheTTL > 0 {
		a.cacheMu.Lock()
		a.cached = results
		a.cachedUntil = time.Now().Add(a.config.CacheTTL)
		a.cacheMu.Unlock()
	}

	return results
}

// OverallStatus reduces a set of results to a single status: unhealthy
// dominates degraded, degraded dominates healthy.
func (a *Aggregator) OverallStatus(results map[string]Result) Status {
	overall := StatusHealthy
	for _, result := range results {
		if result.Status > overall {
			overall = result.Status
		}
	}
	return overall
}

func (a *Aggregator) runCheck(ctx context.Context, checker Checker) Result {
	start := time.Now()
	resultCh := make(chan Result, 1)

	go func() {
		result := checker.Check(ctx)
		result.Duration = time.Since(start)
		if result.Timestamp.IsZero() {
			result.Timestamp = start
		}
		resultCh <- result
	}()

	select {
	case result := <-resultCh:
		return result
	case <-ctx.Done():
		return Result{
			Status:    StatusUnhealthy,
			Message:   "check timed out",
			Error:     ErrCheckTimeout,
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}
}
