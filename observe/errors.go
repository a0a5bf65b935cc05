package observe

import "errors"

// Configuration validation errors.
var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")
	ErrInvalidSamplePct       = errors.New("observe: sample percentage must be between 0.0 and 1.0")
	ErrInvalidLogLevel        = errors.New("observe: invalid log level")
)
