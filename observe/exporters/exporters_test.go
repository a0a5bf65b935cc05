package exporters

import (
	"context"
	"strings"
	"testing"
)

func TestNewTracingExporter_UnknownName(t *testing.T) {
	_, err := NewTracingExporter(context.Background(), "invalid")
	if err == nil {
		t.Fatal("NewTracingExporter() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "unknown exporter") {
		t.Errorf("NewTracingExporter() error = %v, want unknown exporter", err)
	}
}

func TestNewTracingExporter_Stdout(t *testing.T) {
	exp, err := NewTracingExporter(context.Background(), "stdout")
	if err != nil {
		t.Fatalf("NewTracingExporter() error = %v", err)
	}
	if exp == nil {
		t.Fatal("NewTracingExporter() = nil, want exporter")
	}
}

func TestNewTracingExporter_OTLPRequiresEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")

	_, err := NewTracingExporter(context.Background(), "otlp")
	if err == nil {
		t.Fatal("NewTracingExporter() error = nil, want endpoint error")
	}
	if !strings.Contains(err.Error(), "endpoint") {
		t.Errorf("NewTracingExporter() error = %v, want endpoint error", err)
	}
}

func TestNewTracingExporter_OTLPWithEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4317")

	exp, err := NewTracingExporter(context.Background(), "otlp")
	if err != nil {
		t.Fatalf("NewTracingExporter() error = %v", err)
	}
	if exp == nil {
		t.Fatal("NewTracingExporter() = nil, want exporter")
	}
}

func TestNewTracingExporter_None(t *testing.T) {
	if _, err := NewTracingExporter(context.Background(), "none"); err != nil {
		t.Fatalf("NewTracingExporter() error = %v", err)
	}
	if _, err := NewTracingExporter(context.Background(), ""); err != nil {
		t.Fatalf("NewTracingExporter() error = %v", err)
	}
}

func TestNewMetricsReader_Stdout(t *testing.T) {
	reader, err := NewMetricsReader(context.Background(), "stdout")
	if err != nil {
		t.Fatalf("NewMetricsReader() error = %v", err)
	}
	if reader == nil {
		t.Fatal("NewMetricsReader() = nil, want reader")
	}
}

func TestNewMetricsReader_Prometheus(t *testing.T) {
	reader, err := NewMetricsReader(context.Background(), "prometheus")
	if err != nil {
		t.Fatalf("NewMetricsReader() error = %v", err)
	}
	if reader == nil {
		t.Fatal("NewMetricsReader() = nil, want reader")
	}
}

func TestNewMetricsReader_None(t *testing.T) {
	if _, err := NewMetricsReader(context.Background(), "none"); err != nil {
		t.Fatalf("NewMetricsReader() error = %v", err)
	}
}

func TestNewMetricsReader_UnknownName(t *testing.T) {
	_, err := NewMetricsReader(context.Background(), "badvalue")
	if err == nil {
		t.Fatal("NewMetricsReader() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "unknown") {
		t.Errorf("NewMetricsReader() error = %v, want unknown exporter", err)
	}
}
