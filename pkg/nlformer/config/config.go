package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/nlformer/pkg/nlformer/internalerr"
)

// Engine represents the engine configuration
type Engine struct {
	MaxLayers        int    `yaml:"max_layers"`
	MaxFactsPerLayer int    `yaml:"max_facts_per_layer"`
	Parallelism      int    `yaml:"parallelism"`
	CacheSize        int    `yaml:"cache_size"`
	LogLevel         string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Engine {
	return Engine{
		MaxLayers:        3,
		MaxFactsPerLayer: 10000,
		Parallelism:      1,
		CacheSize:        0,
		LogLevel:         "info",
	}
}

// Validate checks value ranges.
func (c Engine) Validate() error {
	if c.MaxLayers < 1 {
		return fmt.Errorf("%w: max_layers must be positive, got %d", internalerr.ErrInvalidConfig, c.MaxLayers)
	}
	if c.MaxFactsPerLayer < 1 {
		return fmt.Errorf("%w: max_facts_per_layer must be positive, got %d", internalerr.ErrInvalidConfig, c.MaxFactsPerLayer)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("%w: parallelism must be positive, got %d", internalerr.ErrInvalidConfig, c.Parallelism)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: cache_size must not be negative, got %d", internalerr.ErrInvalidConfig, c.CacheSize)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", internalerr.ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// LoadEngine loads engine configuration from a YAML file. Fields missing
// from the file keep their defaults.
func LoadEngine(path string) (Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Engine{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Engine{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Engine{}, err
	}
	return cfg, nil
}
