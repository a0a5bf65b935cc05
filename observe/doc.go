// Package observe provides telemetry for outbound dependency calls:
// OpenTelemetry tracing and metrics, structured JSON logging, and a
// Collector that translates fault-containment events into instruments.
//
// The Observer interface bundles the configured primitives:
//
//	obs, err := observe.NewObserver(ctx, observe.Config{
//		ServiceName: "checkout",
//		Version:     "1.4.2",
//		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "otlp", SamplePct: 0.1},
//		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//		Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer obs.Shutdown(ctx)
//
// Middleware wraps individual calls with a span, call metrics, and an
// outcome log line. Collector.Handle plugs in as the resilience layer's
// observer callback and turns breaker and pool events into metrics.
package observe
