package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTracer(t *testing.T) (Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewTracer(tp.Tracer("test")), recorder
}

func TestCallMeta_SpanName(t *testing.T) {
	meta := CallMeta{Dependency: "payments"}
	if got := meta.SpanName(); got != "dep.call.payments" {
		t.Errorf("SpanName() = %q, want dep.call.payments", got)
	}
}

func TestTracer_SuccessfulCall(t *testing.T) {
	tracer, recorder := newTestTracer(t)

	_, end := tracer.StartCall(context.Background(), CallMeta{Dependency: "payments", Pool: "db"})
	end(nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != "dep.call.payments" {
		t.Errorf("span name = %q, want dep.call.payments", span.Name())
	}
	if span.Status().Code != codes.Ok {
		t.Errorf("span status = %v, want Ok", span.Status().Code)
	}

	var foundPool bool
	for _, attr := range span.Attributes() {
		if attr.Key == attribute.Key("dep.pool") && attr.Value.AsString() == "db" {
			foundPool = true
		}
	}
	if !foundPool {
		t.Error("span missing dep.pool attribute")
	}
}

func TestTracer_FailedCall(t *testing.T) {
	tracer, recorder := newTestTracer(t)

	_, end := tracer.StartCall(context.Background(), CallMeta{Dependency: "search"})
	end(errors.New("connection refused"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	span := spans[0]
	if span.Status().Code != codes.Error {
		t.Errorf("span status = %v, want Error", span.Status().Code)
	}
	if len(span.Events()) == 0 {
		t.Error("span has no recorded error event")
	}
}

func TestNoopTracer(t *testing.T) {
	tracer := NewNoopTracer()
	ctx, end := tracer.StartCall(context.Background(), CallMeta{Dependency: "x"})
	if ctx == nil {
		t.Fatal("StartCall() ctx = nil")
	}
	end(errors.New("ignored"))
}
