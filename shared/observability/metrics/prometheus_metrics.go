// Package metrics provides Prometheus collectors for harvest runs. Collected
// values are written to a textfile at the end of a run so a node exporter
// (or a person) can pick them up.
package metrics

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements types.Metrics on top of client_golang
// collectors. All metric names are prefixed with the sanitized namespace.
type PrometheusMetrics struct {
	namespace string

	// processedTotal counts units of work by status and operation
	processedTotal *prometheus.CounterVec
	// errorsTotal counts failures by category and operation
	errorsTotal *prometheus.CounterVec
	// durationSeconds tracks operation latency
	durationSeconds *prometheus.HistogramVec
	// fileSizeBytes tracks bytes appended per file type
	fileSizeBytes *prometheus.HistogramVec
	// inProgress tracks operations currently running
	inProgress *prometheus.GaugeVec
}

// New creates a PrometheusMetrics instance and registers its collectors with
// reg. A nil reg falls back to the default registerer.
//
// Registered metrics:
//   - {namespace}_processed_total
//   - {namespace}_errors_total
//   - {namespace}_duration_seconds
//   - {namespace}_file_size_bytes
//   - {namespace}_in_progress
//
// Panics if a collector with the same name is already registered with reg.
func New(namespace string, reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	ns := SanitizeName(namespace)
	m := &PrometheusMetrics{namespace: ns}

	m.processedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_processed_total", ns),
			Help: fmt.Sprintf("Total processed items by %s", namespace),
		},
		[]string{"status", "type"},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_errors_total", ns),
			Help: fmt.Sprintf("Total errors in %s", namespace),
		},
		[]string{"error_type", "operation"},
	)

	m.durationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_duration_seconds", ns),
			Help:    fmt.Sprintf("Operation duration in %s", namespace),
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Source files in an editor are small; 128B up to 8MB
	m.fileSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_file_size_bytes", ns),
			Help:    fmt.Sprintf("Bytes written per file by %s", namespace),
			Buckets: prometheus.ExponentialBuckets(128, 4, 9),
		},
		[]string{"file_type"},
	)

	m.inProgress = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_in_progress", ns),
			Help: fmt.Sprintf("Operations in progress in %s", namespace),
		},
		[]string{"operation"},
	)

	reg.MustRegister(
		m.processedTotal,
		m.errorsTotal,
		m.durationSeconds,
		m.fileSizeBytes,
		m.inProgress,
	)

	return m
}

// SanitizeName maps a component name onto the Prometheus metric name
// alphabet. Anything outside [a-zA-Z0-9_] becomes an underscore and a
// leading digit is prefixed with one.
func SanitizeName(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "unnamed"
	}
	return b.String()
}

// RecordSuccess increments the success counter for an operation type.
func (m *PrometheusMetrics) RecordSuccess(operationType string) {
	m.processedTotal.WithLabelValues("success", operationType).Inc()
}

// RecordError increments both the processed counter (status="error") and the
// detailed error counter.
//
//	metrics.RecordError("retrieve", "missing_payload")
func (m *PrometheusMetrics) RecordError(operationType string, errorType string) {
	m.processedTotal.WithLabelValues("error", operationType).Inc()
	m.errorsTotal.WithLabelValues(errorType, operationType).Inc()
}

// RecordDuration records the duration of an operation in seconds.
func (m *PrometheusMetrics) RecordDuration(operation string, duration float64) {
	m.durationSeconds.WithLabelValues(operation).Observe(duration)
}

// RecordFileSize records the number of bytes written for a file type.
func (m *PrometheusMetrics) RecordFileSize(fileType string, bytes int64) {
	m.fileSizeBytes.WithLabelValues(fileType).Observe(float64(bytes))
}

// StartOperation increments the in-progress gauge for an operation.
//
//	metrics.StartOperation("retrieve")
//	defer metrics.EndOperation("retrieve")
func (m *PrometheusMetrics) StartOperation(operation string) {
	m.inProgress.WithLabelValues(operation).Inc()
}

// EndOperation decrements the in-progress gauge for an operation.
func (m *PrometheusMetrics) EndOperation(operation string) {
	m.inProgress.WithLabelValues(operation).Dec()
}
