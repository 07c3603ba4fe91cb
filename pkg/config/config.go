// Package config loads retry policies from YAML files.
//
// A policy file looks like:
//
//	name: fetch-index
//	max_retries: 5
//	delay: 250ms
//	max_duration: 30s
//	backoff: exponential
//	polynomial_factor: 1.5
//	graceful: false
//
// Every field is optional; omitted fields keep the retry package defaults.
// Failure kinds are code, not configuration, and are registered on the
// builder by the caller after Apply.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jzx17/endure/pkg/retry"
)

// DefaultConfigFilename is the file the CLI looks for in the working
// directory when no path is given.
const DefaultConfigFilename = "endure.yaml"

// Config is the file representation of a retry policy
type Config struct {
	// Name labels the executor in logs and metrics
	Name string `yaml:"name,omitempty"`

	// MaxRetries is the retry budget; nil means unlimited
	MaxRetries *uint `yaml:"max_retries,omitempty"`

	// Delay is the base delay between retries; nil keeps the default
	Delay *time.Duration `yaml:"delay,omitempty"`

	// MaxDuration bounds each run; zero means no bound
	MaxDuration time.Duration `yaml:"max_duration,omitempty"`

	// Backoff is the strategy name, matched case-insensitively
	Backoff retry.BackoffStrategy `yaml:"backoff,omitempty"`

	// PolynomialFactor is the exponent for polynomial backoff; nil keeps the default
	PolynomialFactor *float64 `yaml:"polynomial_factor,omitempty"`

	// Graceful suppresses failures that exhaust the budget or are not retryable
	Graceful bool `yaml:"graceful,omitempty"`
}

// FindConfigFile returns the path of DefaultConfigFilename in the current
// directory. The error wraps os.ErrNotExist when there is none.
func FindConfigFile() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	path := filepath.Join(cwd, DefaultConfigFilename)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("config file %s not found: %w", DefaultConfigFilename, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("config file %s is a directory: %w", path, os.ErrNotExist)
	}
	return path, nil
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates YAML data. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks field ranges. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Delay != nil && *c.Delay < 0 {
		errs = append(errs, fmt.Errorf("delay %v must not be negative: %w", *c.Delay, retry.ErrOutOfRange))
	}
	if c.MaxDuration < 0 {
		errs = append(errs, fmt.Errorf("max_duration %v must not be negative: %w", c.MaxDuration, retry.ErrOutOfRange))
	}
	if !c.Backoff.Valid() {
		errs = append(errs, fmt.Errorf("backoff %v: %w", c.Backoff, retry.ErrOutOfRange))
	}
	if f := c.PolynomialFactor; f != nil && (!(*f > 0) || math.IsInf(*f, 0)) {
		errs = append(errs, fmt.Errorf("polynomial_factor %v must be greater than zero: %w", *f, retry.ErrOutOfRange))
	}

	return errors.Join(errs...)
}

// Apply copies the configured values onto b and returns it for chaining
func (c *Config) Apply(b *retry.PolicyBuilder) *retry.PolicyBuilder {
	if c.MaxRetries != nil {
		b.WithMaxRetries(*c.MaxRetries)
	}
	if c.Delay != nil {
		b.WithDelay(*c.Delay)
	}
	if c.MaxDuration > 0 {
		b.WithMaxDuration(c.MaxDuration)
	}
	b.WithBackoff(c.Backoff)
	if c.PolynomialFactor != nil {
		b.WithPolynomialFactor(*c.PolynomialFactor)
	}
	if c.Graceful {
		b.WithGracefulErrorHandling()
	}
	return b
}

// ExecutorOptions returns the executor options implied by the configuration
func (c *Config) ExecutorOptions() []retry.ExecutorOption {
	var opts []retry.ExecutorOption
	if c.Name != "" {
		opts = append(opts, retry.WithName(c.Name))
	}
	return opts
}

// Save writes the configuration as YAML
func Save(cfg *Config, path string) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal encodes the configuration. Durations are written in their string
// form so the output can be read back by Parse.
func Marshal(cfg *Config) ([]byte, error) {
	out := struct {
		Name             string                `yaml:"name,omitempty"`
		MaxRetries       *uint                 `yaml:"max_retries,omitempty"`
		Delay            string                `yaml:"delay,omitempty"`
		MaxDuration      string                `yaml:"max_duration,omitempty"`
		Backoff          retry.BackoffStrategy `yaml:"backoff"`
		PolynomialFactor *float64              `yaml:"polynomial_factor,omitempty"`
		Graceful         bool                  `yaml:"graceful,omitempty"`
	}{
		Name:             cfg.Name,
		MaxRetries:       cfg.MaxRetries,
		Backoff:          cfg.Backoff,
		PolynomialFactor: cfg.PolynomialFactor,
		Graceful:         cfg.Graceful,
	}
	if cfg.Delay != nil {
		out.Delay = cfg.Delay.String()
	}
	if cfg.MaxDuration > 0 {
		out.MaxDuration = cfg.MaxDuration.String()
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
