package app

import (
	"errors"
	"fmt"
	"maps"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ScenePath string // .hcl file or directory; empty selects the built-in scene
	ShareDir  string // overrides the package share directory
	Arguments map[string]string

	// Seed seeds the random source. Zero picks a time-based seed.
	Seed uint64
	// MaxAttempts overrides the scene's placement retry cap when >= 0.
	MaxAttempts int

	DryRun  bool
	PlanOut string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.MaxAttempts < -1 {
		return nil, errors.New("MaxAttempts must be -1 (scene default), 0 (unbounded) or positive")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("HealthcheckPort %d is out of range", cfg.HealthcheckPort)
	}
	if cfg.DryRun && cfg.HealthcheckPort > 0 {
		return nil, errors.New("the health check server is not available in a dry run")
	}
	cfg.Arguments = maps.Clone(cfg.Arguments)
	return &cfg, nil
}
