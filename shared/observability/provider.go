// Package observability provides a centralized provider for logging and metrics
// components used throughout the harvester.
package observability

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vesla0x1/codegrabber/shared/observability/logger"
	"github.com/vesla0x1/codegrabber/shared/observability/metrics"
	"github.com/vesla0x1/codegrabber/shared/observability/types"
)

// Logger is a type alias for the Logger interface from the types package.
type Logger = types.Logger

// Metrics is a type alias for the Metrics interface from the types package.
type Metrics = types.Metrics

// Fields is a type alias for structured logging fields.
type Fields = types.Fields

// Config is a type alias for the observability configuration.
type Config = types.Config

// Provider is a type alias for the Provider interface from the types package.
type Provider = types.Provider

// Supported log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// DefaultProvider implements the Provider interface.
// It hands out one Logger and one Metrics instance per component, creating
// them lazily. Every metrics collector is registered with a registry owned by
// the provider, so two providers in the same process never collide.
type DefaultProvider struct {
	config   *Config
	registry *prometheus.Registry
	root     Logger
	loggers  map[string]Logger
	metrics  map[string]Metrics
	mu       sync.RWMutex
}

// NewProvider creates a new observability provider with the given configuration.
// If LogOutput is not specified it defaults to os.Stderr.
//
//	provider := NewProvider(&Config{
//		ServiceName: "codegrabber",
//		Environment: "local",
//		LogLevel:    "info",
//		LogFormat:   "console",
//	})
//	log := provider.Logger("retrieval")
func NewProvider(config *Config) *DefaultProvider {
	if config.LogOutput == nil {
		config.LogOutput = os.Stderr
	}

	p := &DefaultProvider{
		config:   config,
		registry: prometheus.NewRegistry(),
		loggers:  make(map[string]Logger),
		metrics:  make(map[string]Metrics),
	}
	p.root = p.newLogger()
	return p
}

func (p *DefaultProvider) newLogger() Logger {
	fields := make(Fields, len(p.config.AdditionalFields))
	for k, v := range p.config.AdditionalFields {
		fields[k] = v
	}

	if strings.EqualFold(p.config.LogFormat, FormatJSON) {
		return logger.NewJSON(
			p.config.ServiceName,
			p.config.Environment,
			p.config.LogLevel,
			p.config.LogOutput,
			fields,
		)
	}
	return logger.NewConsole(p.config.LogLevel, p.config.LogOutput, fields, p.config.Colorize)
}

// Logger returns the Logger for the specified component. The same instance is
// returned on every call for a given name. Entries carry a "component" field.
func (p *DefaultProvider) Logger(component string) Logger {
	p.mu.RLock()
	if l, exists := p.loggers[component]; exists {
		p.mu.RUnlock()
		return l
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check
	if l, exists := p.loggers[component]; exists {
		return l
	}

	// Derived loggers share the root's write lock
	l := p.root.WithFields(Fields{"component": component})
	p.loggers[component] = l

	return l
}

// Metrics returns the Metrics collector for the specified component. Metric
// names are prefixed with "{service}_{component}".
func (p *DefaultProvider) Metrics(component string) Metrics {
	p.mu.RLock()
	if m, exists := p.metrics[component]; exists {
		p.mu.RUnlock()
		return m
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if m, exists := p.metrics[component]; exists {
		return m
	}

	namespace := component
	if p.config.ServiceName != "" {
		namespace = fmt.Sprintf("%s_%s", p.config.ServiceName, component)
	}

	m := metrics.New(namespace, p.registry)
	p.metrics[component] = m

	return m
}

// Registry exposes the provider's registry, mainly for tests.
func (p *DefaultProvider) Registry() *prometheus.Registry {
	return p.registry
}

// WriteMetrics writes everything gathered so far to path in the Prometheus
// text format. The file is replaced atomically.
func (p *DefaultProvider) WriteMetrics(path string) error {
	if path == "" {
		return fmt.Errorf("metrics file path is empty")
	}
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// Close releases the log output if it is closable. os.Stdout and os.Stderr
// are never closed.
func (p *DefaultProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if closer, ok := p.config.LogOutput.(io.Closer); ok {
		if closer != os.Stdout && closer != os.Stderr {
			return closer.Close()
		}
	}

	return nil
}
