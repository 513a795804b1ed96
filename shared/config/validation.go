package config

import (
	"fmt"
	"net/url"
	"strings"
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var validLogFormats = map[string]bool{"console": true, "json": true}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	var errors []string

	if c.ServiceName == "" {
		errors = append(errors, "SERVICE_NAME is required")
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errors = append(errors, fmt.Sprintf("invalid log level: %q", c.LogLevel))
	}
	if !validLogFormats[strings.ToLower(c.LogFormat)] {
		errors = append(errors, fmt.Sprintf("invalid log format: %q", c.LogFormat))
	}

	if err := c.Target.Validate(); err != nil {
		errors = append(errors, err.Error())
	}
	if err := c.Harvest.Validate(); err != nil {
		errors = append(errors, err.Error())
	}
	if err := c.HTTP.Validate(); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// Validate validates target configuration
func (t TargetConfig) Validate() error {
	if t.BaseURL == "" {
		return fmt.Errorf("target URL is required (-u/--url or TARGET_URL)")
	}
	u, err := url.Parse(t.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid target URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("target URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("target URL has no host")
	}
	if t.Cookie == "" {
		return fmt.Errorf("cookie is required (-c/--cookie or TARGET_COOKIE)")
	}
	if !strings.Contains(t.Cookie, "=") {
		return fmt.Errorf("cookie must contain at least one name=value pair")
	}
	return nil
}

// Validate validates harvest configuration
func (h HarvestConfig) Validate() error {
	if h.Concurrency < 1 {
		return fmt.Errorf("RETRIEVE_CONCURRENCY must be at least 1")
	}
	if h.PayloadSelector == "" {
		return fmt.Errorf("PAYLOAD_SELECTOR cannot be empty")
	}
	return nil
}

// Validate validates HTTP client configuration
func (h HTTPConfig) Validate() error {
	if h.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if h.MaxRetries < 0 {
		return fmt.Errorf("HTTP_MAX_RETRIES cannot be negative")
	}
	return nil
}
