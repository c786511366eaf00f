// Package observability provides the logging and metrics abstractions shared
// by the analysis-cache components. Implementations are deliberately small:
// a standard-log-backed logger for processes and no-op variants for tests.
package observability

import "time"

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// LogLevelDebug is for detailed troubleshooting information
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is for general operational information
	LogLevelInfo
	// LogLevelWarn is for potentially harmful situations
	LogLevelWarn
	// LogLevelError is for error events that might still allow the process to continue
	LogLevelError
)

// Logger defines the structured logging interface used across the project
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})

	// WithPrefix returns a logger scoped to a new component prefix
	WithPrefix(prefix string) Logger
	// With returns a logger that attaches the given fields to every message
	With(fields map[string]interface{}) Logger
}

// MetricsClient defines the interface for metrics collection
type MetricsClient interface {
	// RecordCacheOperation records the outcome and duration of a single cache operation
	RecordCacheOperation(operation string, success bool, durationSeconds float64)
	// RecordCounter increments a named counter by value
	RecordCounter(name string, value float64, labels map[string]string)
	// RecordLatency records the latency of an arbitrary operation
	RecordLatency(operation string, duration time.Duration)
}
