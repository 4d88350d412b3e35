// Package observability defines the logging and metrics ports used across
// the service, together with ready-made adapters for log/slog and
// OpenTelemetry. The ports are dependency-free so any backend can be
// plugged in by implementing them.
package observability

import (
	"context"
	"time"
)

// ContextualLogger is the logging port used by all components. Implementations
// that support trace correlation pick the trace/span IDs up from the context.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// MetricsCollector receives operational metrics from the stores and the
// HTTP layer. A nil collector is valid everywhere and means "don't record".
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
}

// NopLogger discards everything. Useful as a test default.
type NopLogger struct{}

func (NopLogger) DebugContext(context.Context, string, ...any) {}
func (NopLogger) InfoContext(context.Context, string, ...any)  {}
func (NopLogger) WarnContext(context.Context, string, ...any)  {}
func (NopLogger) ErrorContext(context.Context, string, ...any) {}

var _ ContextualLogger = NopLogger{}
