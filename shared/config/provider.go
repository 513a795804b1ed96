package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

// Override mutates a freshly parsed configuration before defaults and
// validation run. Command line flags are applied this way.
type Override func(*Config)

// Provider manages configuration lifecycle for one process run
type Provider struct {
	config *Config
	mu     sync.RWMutex
	loaded bool

	// dir is where .env files are looked up
	dir string
}

// NewProvider returns a provider that reads .env files from dir.
// An empty dir means the working directory.
func NewProvider(dir string) *Provider {
	return &Provider{dir: dir}
}

// Load loads configuration from .env files, the environment and the given
// overrides, in increasing order of precedence
func (p *Provider) Load(overrides ...Override) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded {
		return nil // Already loaded
	}

	if err := p.loadEnvFiles(); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}

	cfg := parse()
	for _, override := range overrides {
		override(cfg)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	p.config = cfg
	p.loaded = true
	return nil
}

// Get returns the current configuration
// Returns error if configuration hasn't been loaded
func (p *Provider) Get() (*Config, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.loaded || p.config == nil {
		return nil, fmt.Errorf("configuration not loaded; call Load() first")
	}

	return p.config, nil
}

// MustGet returns the configuration or panics if not loaded
func (p *Provider) MustGet() *Config {
	cfg, err := p.Get()
	if err != nil {
		panic(fmt.Sprintf("failed to get configuration: %v", err))
	}
	return cfg
}

// IsLoaded returns whether configuration has been loaded
func (p *Provider) IsLoaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loaded
}

// loadEnvFiles loads .env files in order of precedence.
// The base .env never overrides the process environment; .env.<ENVIRONMENT>
// and .env.local do.
func (p *Provider) loadEnvFiles() error {
	base := p.path(".env")
	if _, err := os.Stat(base); err == nil {
		if err := godotenv.Load(base); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}

	env := os.Getenv("ENVIRONMENT")
	if env != "" {
		envFile := p.path(fmt.Sprintf(".env.%s", env))
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Overload(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	local := p.path(".env.local")
	if _, err := os.Stat(local); err == nil {
		if err := godotenv.Overload(local); err != nil {
			return fmt.Errorf("failed to load .env.local: %w", err)
		}
	}

	return nil
}

func (p *Provider) path(name string) string {
	if p.dir == "" {
		return name
	}
	return filepath.Join(p.dir, name)
}
