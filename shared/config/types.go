package config

import (
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Core settings
	Environment string
	ServiceName string
	Version     string
	LogLevel    string
	LogFormat   string

	// Component configurations
	Target  TargetConfig
	Harvest HarvestConfig
	HTTP    HTTPConfig
	Metrics MetricsConfig
	Export  ExportConfig
}

// TargetConfig identifies the site being harvested and how to authenticate
type TargetConfig struct {
	BaseURL string
	Cookie  string

	// Flow selection; both false means run every flow
	Theme  bool
	Plugin bool
}

// HarvestConfig controls extraction, layout and retrieval
type HarvestConfig struct {
	OutputDir         string
	Extensions        []string
	Concurrency       int
	FallbackContainer string
	PluginContainer   string
	KeepExtensionless bool
	PayloadSelector   string
	PluginSelectID    string
}

// HTTPConfig holds HTTP client configuration
type HTTPConfig struct {
	Timeout    time.Duration
	MaxRetries int
	UserAgent  string
}

// MetricsConfig holds metrics output configuration
type MetricsConfig struct {
	// File receives the Prometheus text exposition at the end of a run. Empty disables it.
	File string
}

// ExportConfig holds the optional S3 mirror configuration
type ExportConfig struct {
	S3Bucket string
	S3Prefix string
	Region   string
	// Endpoint points the client at an S3-compatible service (MinIO, localstack)
	Endpoint string
	// Static credentials; the default AWS chain is used when empty
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether harvested containers are mirrored to S3
func (e ExportConfig) Enabled() bool {
	return e.S3Bucket != ""
}

// RunTheme reports whether the theme flow runs
func (t TargetConfig) RunTheme() bool {
	return t.Theme || !t.Plugin
}

// RunPlugin reports whether the plugin flow runs
func (t TargetConfig) RunPlugin() bool {
	return t.Plugin || !t.Theme
}

// ThemeEditorURL returns the theme editor document URL for the target
func (t TargetConfig) ThemeEditorURL() string {
	return strings.TrimRight(t.BaseURL, "/") + "/wp-admin/theme-editor.php"
}

// PluginEditorURL returns the plugin editor document URL for the target
func (t TargetConfig) PluginEditorURL() string {
	return strings.TrimRight(t.BaseURL, "/") + "/wp-admin/plugin-editor.php"
}

// Environment detection methods

// IsTest returns true if running in test environment
func (c *Config) IsTest() bool {
	env := strings.ToLower(c.Environment)
	return env == "test" || env == "testing"
}
