// Package resilience is a fault-containment layer for outbound dependency
// calls: per-dependency circuit breakers, bounded retry with exponential
// backoff, and bulkhead pools that cap concurrent usage per resource class.
//
// # Components
//
//   - Circuit Breaker: per-dependency gate that stops calling a failing
//     dependency for a growing cooldown window. Recovery is tested with a
//     single-flight half-open probe, so a recovering dependency is never hit
//     by a thundering herd of simultaneous retries.
//
//   - Retry: bounded retry with an exponential backoff policy. A whole retry
//     run counts as one outcome for an enclosing breaker.
//
//   - Bulkhead: named counting semaphore with a FIFO wait queue and per-call
//     acquisition timeout, isolating resource consumption between dependency
//     classes.
//
//   - Rate Limiter and Timeout: optional load-shedding and per-attempt
//     deadline stages.
//
// # Usage
//
// Build one Invoker per dependency and keep them in a Registry:
//
//	pools := resilience.NewPoolSet()
//	if _, err := pools.NewPool("payments-db", 10); err != nil {
//	    return err
//	}
//
//	inv, err := resilience.NewInvoker("payments", resilience.Config{
//	    FailureThreshold: 5,
//	    BaseTimeout:      60 * time.Second,
//	    MaxRetries:       3,
//	    InitialDelay:     100 * time.Millisecond,
//	    PoolName:         "payments-db",
//	    AcquireTimeout:   5 * time.Second,
//	}, resilience.WithPoolSet(pools))
//	if err != nil {
//	    return err
//	}
//
//	registry := resilience.NewRegistry()
//	_ = registry.Register(inv)
//
//	err = registry.Execute(ctx, "payments", func(ctx context.Context) error {
//	    return callPaymentService(ctx)
//	})
//
// The composition order is fixed: the breaker gates the retry run as a whole,
// and the bulkhead slot is held only while a single attempt is outstanding.
//
// State is process-local: breakers and pools start from zero on every
// startup and are never persisted.
package resilience
