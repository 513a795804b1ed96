// Package types holds the observability contracts shared by every harvester
// component. Components depend on these interfaces only; concrete loggers and
// metrics collectors are handed out by the observability provider.
package types

import (
	"context"
	"io"
)

// Logger defines the contract for structured logging.
// Every event carries a severity, a message and a set of context fields so
// that any frontend (colored console, JSON lines) can render it.
type Logger interface {
	// Info logs an informational message, e.g. a container being detected
	// or a file receiving content.
	Info(ctx context.Context, msg string, fields Fields)

	// Error logs a failure together with the error that caused it.
	// Soft failures that abandon a single unit of work are logged here.
	Error(ctx context.Context, msg string, err error, fields Fields)

	// Warn logs a potentially harmful situation that does not stop the run,
	// such as a page missing an expected element.
	Warn(ctx context.Context, msg string, fields Fields)

	// Debug logs detailed information useful while troubleshooting.
	Debug(ctx context.Context, msg string, fields Fields)

	// WithFields returns a new Logger that includes fields in every entry.
	WithFields(fields Fields) Logger
}

// Metrics defines the contract for metrics collection.
// Implementations should follow Prometheus naming conventions.
type Metrics interface {
	// RecordSuccess increments the success counter for an operation type
	// (e.g. "extract", "retrieve").
	RecordSuccess(operationType string)

	// RecordError increments the error counter for an operation and error
	// category (e.g. "transport", "missing_payload").
	RecordError(operationType string, errorType string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(operation string, duration float64)

	// RecordFileSize records the size in bytes of content written for a
	// file type (the lowercase extension).
	RecordFileSize(fileType string, bytes int64)

	// StartOperation increments the in-progress gauge for an operation.
	// Must be paired with EndOperation.
	StartOperation(operation string)

	// EndOperation decrements the in-progress gauge for an operation.
	EndOperation(operation string)
}

// Fields represents structured logging fields as key-value pairs.
// Values should be JSON-serializable.
//
// Example:
//
//	fields := Fields{
//		"container": "twentytwentyfour",
//		"file":      "inc/template.php",
//	}
type Fields map[string]interface{}

// Config holds observability configuration for the provider.
type Config struct {
	// ServiceName identifies the service in logs and prefixes metric names.
	ServiceName string

	// Environment specifies the deployment environment ("local", "test", ...).
	Environment string

	// LogLevel sets the minimum level to output: "debug", "info", "warn" or "error".
	LogLevel string

	// LogFormat selects the renderer: "console" (colored notices) or "json".
	LogFormat string

	// LogOutput is where entries are written. Defaults to os.Stderr.
	LogOutput io.Writer

	// Colorize enables ANSI colors in the console renderer.
	Colorize bool

	// AdditionalFields are included in every log entry, e.g. the run_id.
	AdditionalFields Fields
}

// Provider manages the lifecycle of observability components.
// Each component gets its own Logger and Metrics instance.
type Provider interface {
	// Logger returns the Logger for a component. Repeated calls with the same
	// name return the same instance.
	Logger(component string) Logger

	// Metrics returns the Metrics collector for a component. Repeated calls
	// with the same name return the same instance.
	Metrics(component string) Metrics

	// WriteMetrics writes every collected metric to path in the Prometheus
	// text exposition format.
	WriteMetrics(path string) error

	// Close releases resources held by the provider.
	Close() error
}
