package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func healthyChecker(name string) Checker {
	return NewChecker(name, func(ctx context.Context) Result {
		return Healthy("ok")
	})
}

func TestAggregator_RegisterAndNames(t *testing.T) {
	agg := NewAggregator()
	agg.Register("a", healthyChecker("a"))
	agg.Register("b", healthyChecker("b"))
	agg.Register("a", healthyChecker("a")) // replace, no duplicate

	names := agg.CheckerNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("CheckerNames() = %v, want [a b]", names)
	}

	agg.Unregister("a")
	names = agg.CheckerNames()
	if len(names) != 1 || names[0] != "b" {
		t.Errorf("CheckerNames() after Unregister = %v, want [b]", names)
	}
}

func TestAggregator_Check(t *testing.T) {
	agg := NewAggregator()
	agg.Register("db", healthyChecker("db"))

	result, err := agg.Check(context.Background(), "db")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if result.Status != StatusHealthy {
		t.Errorf("Check() status = %v, want healthy", result.Status)
	}

	_, err = agg.Check(context.Background(), "missing")
	if !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check() error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator()
	agg.Register("ok", healthyChecker("ok"))
	agg.Register("slow", NewChecker("slow", func(ctx context.Context) Result {
		return Degraded("latency high")
	}))
	agg.Register("down", NewChecker("down", func(ctx context.Context) Result {
		return Unhealthy("unreachable", errors.New("dial tcp"))
	}))

	results := agg.CheckAll(context.Background())
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results["ok"].Status != StatusHealthy {
		t.Errorf("ok status = %v", results["ok"].Status)
	}
	if results["slow"].Status != StatusDegraded {
		t.Errorf("slow status = %v", results["slow"].Status)
	}
	if results["down"].Status != StatusUnhealthy {
		t.Errorf("down status = %v", results["down"].Status)
	}
	if results["ok"].Duration < 0 {
		t.Error("duration not recorded")
	}
}

func TestAggregator_CheckAllEmpty(t *testing.T) {
	agg := NewAggregator()
	results := agg.CheckAll(context.Background())
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestAggregator_OverallStatus(t *testing.T) {
	agg := NewAggregator()

	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{"empty", map[string]Result{}, StatusHealthy},
		{"all healthy", map[string]Result{"a": Healthy("")}, StatusHealthy},
		{"one degraded", map[string]Result{"a": Healthy(""), "b": Degraded("")}, StatusDegraded},
		{"unhealthy dominates", map[string]Result{
			"a": Degraded(""), "b": Unhealthy("", nil),
		}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agg.OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregator_CacheTTL(t *testing.T) {
	var calls int
	agg := NewAggregator(AggregatorConfig{CacheTTL: time.Minute})
	agg.Register("db", NewChecker("db", func(ctx context.Context) Result {
		calls++
		return Healthy("ok")
	}))

	agg.CheckAll(context.Background())
	agg.CheckAll(context.Background())
	if calls != 1 {
		t.Errorf("checker ran %d times, want 1 (cached)", calls)
	}

	// Registration changes invalidate the cache.
	agg.Register("cache", healthyChecker("cache"))
	results := agg.CheckAll(context.Background())
	if calls != 2 {
		t.Errorf("checker ran %d times after invalidation, want 2", calls)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestAggregator_CheckTimeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond})
	agg.Register("stuck", NewChecker("stuck", func(ctx context.Context) Result {
		<-ctx.Done()
		// Keep blocking past cancellation to force the timeout path.
		time.Sleep(50 * time.Millisecond)
		return Healthy("too late")
	}))

	results := agg.CheckAll(context.Background())
	r := results["stuck"]
	if r.Status != StatusUnhealthy {
		t.Errorf("status = %v, want unhealthy", r.Status)
	}
	if !errors.Is(r.Error, ErrCheckTimeout) {
		t.Errorf("error = %v, want ErrCheckTimeout", r.Error)
	}
}
