package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SuitePath string // hcl manifest file or directory

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Workers overrides the suite's worker count when > 0.
	Workers int

	// ValidateOnly parses and validates fixtures without executing anything.
	ValidateOnly bool
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.SuitePath == "" {
		return nil, errors.New("SuitePath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
