package observe

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/bulwark-go/bulwark/observe/exporters"
)

// Config selects which telemetry subsystems the embedding service wants
// and how they export. Disabled subsystems cost nothing: callers get
// noop primitives.
type Config struct {
	ServiceName string
	Version     string
	Tracing     TracingConfig
	Metrics     MetricsConfig
	Logging     LoggingConfig
}

// TracingConfig configures span export and sampling.
type TracingConfig struct {
	Enabled   bool
	Exporter  string  // otlp|stdout|none
	SamplePct float64 // 0.0-1.0
}

func (c TracingConfig) validate() error {
	switch c.Exporter {
	case "otlp", "stdout", "none", "":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTracingExporter, c.Exporter)
	}
	if c.SamplePct < 0 || c.SamplePct > 1.0 {
		return fmt.Errorf("%w: %f", ErrInvalidSamplePct, c.SamplePct)
	}
	return nil
}

func (c TracingConfig) sampler() sdktrace.Sampler {
	switch {
	case c.SamplePct >= 1.0:
		return sdktrace.AlwaysSample()
	case c.SamplePct <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(c.SamplePct)
	}
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	Enabled  bool
	Exporter string // otlp|prometheus|stdout|none
}

func (c MetricsConfig) validate() error {
	switch c.Exporter {
	case "otlp", "prometheus", "stdout", "none", "":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, c.Exporter)
	}
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Enabled bool
	Level   string // debug|info|warn|error
}

func (c LoggingConfig) validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error", "":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Level)
	}
}

// Validate checks the configuration. Disabled subsystems are not
// validated, so a zero sub-config never blocks construction.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	if c.Tracing.Enabled {
		if err := c.Tracing.validate(); err != nil {
			return err
		}
	}
	if c.Metrics.Enabled {
		if err := c.Metrics.validate(); err != nil {
			return err
		}
	}
	if c.Logging.Enabled {
		if err := c.Logging.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Observer provides access to telemetry primitives.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Shutdown must honor cancellation/deadlines.
// - Errors: Shutdown should be idempotent and report every provider error.
type Observer interface {
	// Tracer returns the configured tracer.
	Tracer() trace.Tracer

	// Meter returns the configured meter.
	Meter() metric.Meter

	// Logger returns the configured logger.
	Logger() Logger

	// Shutdown gracefully shuts down all telemetry providers.
	Shutdown(ctx context.Context) error
}

// Logger is a minimal structured logging interface.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort and must not panic.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	WithCall(meta CallMeta) Logger
}

// Field represents a structured log field.
type Field struct {
	Key   string
	Value any
}

type observer struct {
	tracer         trace.Tracer
	meter          metric.Meter
	logger         Logger
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// NewObserver builds the telemetry primitives for the given
// configuration and registers the enabled providers as the otel
// globals.
func NewObserver(ctx context.Context, cfg Config) (Observer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	obs := &observer{
		tracer: tracenoop.NewTracerProvider().Tracer("noop"),
		meter:  noop.NewMeterProvider().Meter("noop"),
		logger: &noopLogger{},
	}

	if cfg.Tracing.Enabled {
		if err := obs.initTracing(ctx, cfg, res); err != nil {
			return nil, fmt.Errorf("failed to setup tracing: %w", err)
		}
	}
	if cfg.Metrics.Enabled {
		if err := obs.initMetrics(ctx, cfg, res); err != nil {
			return nil, fmt.Errorf("failed to setup metrics: %w", err)
		}
	}
	if cfg.Logging.Enabled {
		obs.logger = NewLogger(cfg.Logging.Level)
	}

	return obs, nil
}

func (o *observer) initTracing(ctx context.Context, cfg Config, res *resource.Resource) error {
	exporter, err := exporters.NewTracingExporter(ctx, cfg.Tracing.Exporter)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(cfg.Tracing.sampler()),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	o.tracerProvider = sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(o.tracerProvider)
	o.tracer = o.tracerProvider.Tracer(cfg.ServiceName)
	return nil
}

func (o *observer) initMetrics(ctx context.Context, cfg Config, res *resource.Resource) error {
	reader, err := exporters.NewMetricsReader(ctx, cfg.Metrics.Exporter)
	if err != nil {
		return fmt.Errorf("failed to create metrics reader: %w", err)
	}

	opts := []sdkmetric.Option{
		sdkmetric.WithResource(res),
	}
	if reader != nil {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	o.meterProvider = sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(o.meterProvider)
	o.meter = o.meterProvider.Meter(cfg.ServiceName)
	return nil
}

func (o *observer) Tracer() trace.Tracer {
	return o.tracer
}

func (o *observer) Meter() metric.Meter {
	return o.meter
}

func (o *observer) Logger() Logger {
	return o.logger
}

func (o *observer) Shutdown(ctx context.Context) error {
	var errs []error

	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (l *noopLogger) Info(ctx context.Context, msg string, fields ...Field)  {}
func (l *noopLogger) Warn(ctx context.Context, msg string, fields ...Field)  {}
func (l *noopLogger) Error(ctx context.Context, msg string, fields ...Field) {}
func (l *noopLogger) Debug(ctx context.Context, msg string, fields ...Field) {}
func (l *noopLogger) WithCall(meta CallMeta) Logger                          { return l }
