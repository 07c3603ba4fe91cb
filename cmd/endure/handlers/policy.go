package handlers

import (
	"errors"
	"os"
	"time"

	"github.com/jzx17/endure/pkg/config"
	"github.com/jzx17/endure/pkg/retry"
)

// PolicyOptions are policy settings given on the command line. Nil fields
// were not set and fall back to the config file, then to the defaults.
type PolicyOptions struct {
	ConfigPath       string
	Name             *string
	MaxRetries       *uint
	Delay            *time.Duration
	MaxDuration      *time.Duration
	Backoff          *string
	PolynomialFactor *float64
	Graceful         *bool
}

// Resolve merges the config file with the command line overrides. Without
// an explicit ConfigPath, endure.yaml in the working directory is used when
// it exists.
func (o PolicyOptions) Resolve() (*config.Config, error) {
	cfg := &config.Config{}

	path := o.ConfigPath
	if path == "" {
		if found, err := config.FindConfigFile(); err == nil {
			path = found
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if o.Name != nil {
		cfg.Name = *o.Name
	}
	if o.MaxRetries != nil {
		cfg.MaxRetries = o.MaxRetries
	}
	if o.Delay != nil {
		cfg.Delay = o.Delay
	}
	if o.MaxDuration != nil {
		cfg.MaxDuration = *o.MaxDuration
	}
	if o.Backoff != nil {
		strategy, err := retry.ParseBackoffStrategy(*o.Backoff)
		if err != nil {
			return nil, err
		}
		cfg.Backoff = strategy
	}
	if o.PolynomialFactor != nil {
		cfg.PolynomialFactor = o.PolynomialFactor
	}
	if o.Graceful != nil {
		cfg.Graceful = *o.Graceful
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
