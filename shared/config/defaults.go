package config

import (
	"os"
	"time"
)

const (
	DefaultConcurrency       = 8
	DefaultFallbackContainer = "ThemeDirectory"
	DefaultPluginContainer   = "Plugins"
	DefaultPayloadSelector   = "textarea#newcontent"
	DefaultPluginSelectID    = "plugin"
	DefaultUserAgent         = "codegrabber/1.0"
)

// DefaultHarvestConfig returns sensible defaults for extraction and retrieval
func DefaultHarvestConfig() HarvestConfig {
	return HarvestConfig{
		Concurrency:       DefaultConcurrency,
		FallbackContainer: DefaultFallbackContainer,
		PluginContainer:   DefaultPluginContainer,
		PayloadSelector:   DefaultPayloadSelector,
		PluginSelectID:    DefaultPluginSelectID,
	}
}

// DefaultHTTPConfig returns sensible defaults for HTTP client configuration.
// Failed fetches are not retried unless MaxRetries is raised.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:    120 * time.Second,
		MaxRetries: 0,
		UserAgent:  DefaultUserAgent,
	}
}

// DefaultExportConfig returns sensible defaults for the S3 mirror
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		Region: "us-east-2",
	}
}

// DefaultConfig returns a complete configuration with sensible defaults.
// Target settings are left empty and must be supplied.
func DefaultConfig() *Config {
	return &Config{
		Environment: "local",
		ServiceName: "codegrabber",
		Version:     "1.0.0",
		LogLevel:    "info",
		LogFormat:   "console",

		Harvest: DefaultHarvestConfig(),
		HTTP:    DefaultHTTPConfig(),
		Export:  DefaultExportConfig(),
	}
}

// applyDefaults fills in values that depend on the runtime environment
func (c *Config) applyDefaults() {
	if c.Harvest.OutputDir == "" {
		if wd, err := os.Getwd(); err == nil {
			c.Harvest.OutputDir = wd
		} else {
			c.Harvest.OutputDir = "."
		}
	}
	if c.Harvest.FallbackContainer == "" {
		c.Harvest.FallbackContainer = DefaultFallbackContainer
	}
	if c.Harvest.PluginContainer == "" {
		c.Harvest.PluginContainer = DefaultPluginContainer
	}
	if c.Harvest.PayloadSelector == "" {
		c.Harvest.PayloadSelector = DefaultPayloadSelector
	}
	if c.Harvest.PluginSelectID == "" {
		c.Harvest.PluginSelectID = DefaultPluginSelectID
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = DefaultUserAgent
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}

	if c.IsTest() {
		// Tests assert on structured output
		c.LogFormat = "json"
	}
}
