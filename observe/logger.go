package observe

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func parseLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Field values whose keys match these substrings are redacted before
// emission. Matching is case-insensitive.
var redactedFields = []string{
	"password",
	"secret",
	"token",
	"key",
	"credential",
	"authorization",
}

func isRedactedField(key string) bool {
	lower := strings.ToLower(key)
	for _, r := range redactedFields {
		if strings.Contains(lower, r) {
			return true
		}
	}
	return false
}

// structuredLogger writes JSON log lines, one object per line.
type structuredLogger struct {
	mu    *sync.Mutex
	out   io.Writer
	level LogLevel
	meta  *CallMeta
}

// NewLogger creates a structured JSON logger at the given level,
// writing to stderr.
func NewLogger(level string) Logger {
	return newLoggerWriter(level, os.Stderr)
}

func newLoggerWriter(level string, out io.Writer) *structuredLogger {
	return &structuredLogger{
		mu:    &sync.Mutex{},
		out:   out,
		level: parseLevel(level),
	}
}

func (l *structuredLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelInfo, msg, fields)
}

func (l *structuredLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelWarn, msg, fields)
}

func (l *structuredLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelError, msg, fields)
}

func (l *structuredLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelDebug, msg, fields)
}

// WithCall returns a logger that attaches the call metadata to every line.
func (l *structuredLogger) WithCall(meta CallMeta) Logger {
	return &structuredLogger{mu: l.mu, out: l.out, level: l.level, meta: &meta}
}

func (l *structuredLogger) log(ctx context.Context, level LogLevel, msg string, fields []Field) {
	if level < l.level {
		return
	}

	entry := map[string]any{
		"time":  time.Now().UTC().Format(time.RFC3339Nano),
		"level": level.String(),
		"msg":   msg,
	}

	if l.meta != nil {
		entry["dependency"] = l.meta.Dependency
		if l.meta.Pool != "" {
			entry["pool"] = l.meta.Pool
		}
	}

	// Correlate with the active span when one exists.
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		entry["trace_id"] = span.SpanContext().TraceID().String()
		entry["span_id"] = span.SpanContext().SpanID().String()
	}

	for _, f := range fields {
		if isRedactedField(f.Key) {
			entry[f.Key] = "[REDACTED]"
			continue
		}
		entry[f.Key] = f.Value
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Write(append(line, '\n'))
}
