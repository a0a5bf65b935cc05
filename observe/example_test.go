package observe_test

import (
	"context"
	"log"

	"github.com/bulwark-go/bulwark/observe"
)

func ExampleNewMiddleware() {
	ctx := context.Background()

	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: "checkout",
		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "none"},
	})
	if err != nil {
		log.Fatal(err)
	}
	defer obs.Shutdown(ctx)

	mw, err := observe.NewMiddleware(obs)
	if err != nil {
		log.Fatal(err)
	}

	call := mw.Wrap(observe.CallMeta{Dependency: "payments", Pool: "payments-db"},
		func(ctx context.Context) error {
			// The actual network call goes here.
			return nil
		})
	_ = call(ctx)
}
