// Package health provides component health checks and the standard
// HTTP probe endpoints.
//
// Checkers report one of three states: healthy, degraded, or unhealthy.
// The Aggregator runs registered checkers in parallel and reduces their
// results to an overall status. BreakerChecker, PoolChecker, and
// RegistryChecker surface the fault-containment layer's state, so an
// open circuit or a saturated bulkhead shows up on /health:
//
//	agg := health.NewAggregator()
//	agg.Register("payments-circuit", health.NewBreakerChecker("payments-circuit", inv.Breaker()))
//	agg.Register("db-pool", health.NewPoolChecker("db-pool", pool))
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)
package health
