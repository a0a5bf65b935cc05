package observe

import (
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestMiddleware(t *testing.T) (*Middleware, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	mw := &Middleware{
		tracer:  NewTracer(tp.Tracer("test")),
		metrics: metrics,
		logger:  &noopLogger{},
	}
	return mw, recorder, reader
}

func TestMiddleware_Success(t *testing.T) {
	mw, recorder, reader := newTestMiddleware(t)

	var ran bool
	call := mw.Wrap(CallMeta{Dependency: "payments"}, func(ctx context.Context) error {
		ran = true
		return nil
	})

	if err := call(context.Background()); err != nil {
		t.Fatalf("call error = %v", err)
	}
	if !ran {
		t.Fatal("wrapped operation did not run")
	}

	if spans := recorder.Ended(); len(spans) != 1 {
		t.Errorf("got %d spans, want 1", len(spans))
	}

	m := metricByName(t, reader, "dep.call.total")
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("dep.call.total data type = %T, want Sum[int64]", m.Data)
	}
	if sum.DataPoints[0].Value != 1 {
		t.Errorf("dep.call.total = %d, want 1", sum.DataPoints[0].Value)
	}
}

func TestMiddleware_ErrorPropagates(t *testing.T) {
	mw, _, reader := newTestMiddleware(t)

	testErr := errors.New("upstream down")
	call := mw.Wrap(CallMeta{Dependency: "search"}, func(ctx context.Context) error {
		return testErr
	})

	if err := call(context.Background()); !errors.Is(err, testErr) {
		t.Fatalf("call error = %v, want upstream error", err)
	}

	m := metricByName(t, reader, "dep.call.errors")
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("dep.call.errors data type = %T, want Sum[int64]", m.Data)
	}
	if sum.DataPoints[0].Value != 1 {
		t.Errorf("dep.call.errors = %d, want 1", sum.DataPoints[0].Value)
	}
}

func TestMiddleware_ZeroValueUsable(t *testing.T) {
	var mw Middleware

	err := mw.Wrap(CallMeta{Dependency: "x"}, func(ctx context.Context) error {
		return nil
	})(context.Background())
	if err != nil {
		t.Errorf("call error = %v", err)
	}
}

func TestNewMiddleware(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "svc"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	mw, err := NewMiddleware(obs)
	if err != nil {
		t.Fatalf("NewMiddleware() error = %v", err)
	}
	if err := mw.Wrap(CallMeta{Dependency: "x"}, func(ctx context.Context) error {
		return nil
	})(context.Background()); err != nil {
		t.Errorf("call error = %v", err)
	}
}
