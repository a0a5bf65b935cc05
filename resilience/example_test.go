package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bulwark-go/bulwark/resilience"
)

func ExampleInvoker() {
	pools := resilience.NewPoolSet()
	if _, err := pools.NewPool("payments-db", 10); err != nil {
		fmt.Println("Error:", err)
		return
	}

	inv, err := resilience.NewInvoker("payments", resilience.Config{
		FailureThreshold: 5,
		BaseTimeout:      60 * time.Second,
		MaxRetries:       3,
		InitialDelay:     100 * time.Millisecond,
		PoolName:         "payments-db",
		AcquireTimeout:   5 * time.Second,
	}, resilience.WithPoolSet(pools))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	err = inv.Execute(context.Background(), func(ctx context.Context) error {
		// The actual network call goes here.
		return nil
	})
	fmt.Println("Call succeeded:", err == nil)
	// Output:
	// Call succeeded: true
}

func ExampleRegistry() {
	registry := resilience.NewRegistry()

	inv, err := resilience.NewInvoker("search", resilience.Config{
		FailureThreshold: 2,
		MaxRetries:       -1,
	})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	_ = registry.Register(inv)

	// Trip the breaker, then observe the fast-fail.
	for i := 0; i < 2; i++ {
		_ = registry.Execute(context.Background(), "search", func(ctx context.Context) error {
			return errors.New("upstream down")
		})
	}

	err = registry.Execute(context.Background(), "search", func(ctx context.Context) error {
		return nil
	})
	fmt.Println("Fast-fail:", errors.Is(err, resilience.ErrCircuitOpen))
	fmt.Println("State:", registry.Snapshots()["search"].State)
	// Output:
	// Fast-fail: true
	// State: open
}

func ExamplePoolSet_Stats() {
	pools := resilience.NewPoolSet()
	if _, err := pools.NewPool("reports", 2); err != nil {
		fmt.Println("Error:", err)
		return
	}

	_ = pools.Execute(context.Background(), "reports", time.Second, func(ctx context.Context) error {
		return nil
	})

	stats, _ := pools.Stats("reports")
	fmt.Println("Capacity:", stats.Capacity)
	fmt.Println("Total:", stats.TotalRequests)
	fmt.Println("Succeeded:", stats.SuccessfulRequests)
	// Output:
	// Capacity: 2
	// Total: 1
	// Succeeded: 1
}

func ExampleCircuitBreaker_Execute() {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:             "inventory",
		FailureThreshold: 1,
		BaseTimeout:      time.Minute,
	})

	_ = cb.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("connection refused")
	})

	err := cb.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})
	fmt.Println(errors.Is(err, resilience.ErrCircuitOpen))
	// Output:
	// true
}
