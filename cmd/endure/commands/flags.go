package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jzx17/endure/cmd/endure/handlers"
	"github.com/jzx17/endure/pkg/retry"
)

// policyFlags holds the policy flags shared by run and schedule
type policyFlags struct {
	configPath       string
	name             string
	maxRetries       uint
	delay            time.Duration
	maxDuration      time.Duration
	backoff          string
	polynomialFactor float64
	graceful         bool
}

func (f *policyFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.configPath, "config", "c", "", "Path to a policy file (default: endure.yaml if present)")
	flags.StringVar(&f.name, "name", "", "Name reported in logs and metrics")
	flags.UintVarP(&f.maxRetries, "max-retries", "n", 0, "Maximum number of retries (default unlimited)")
	flags.DurationVarP(&f.delay, "delay", "d", retry.DefaultDelay, "Base delay between retries")
	flags.DurationVar(&f.maxDuration, "max-duration", 0, "Give up after this long (default no limit)")
	flags.StringVarP(&f.backoff, "backoff", "b", retry.BackoffFixed.String(), "Backoff strategy: fixed, linear, exponential, fibonacci, polynomial")
	flags.Float64Var(&f.polynomialFactor, "polynomial-factor", retry.DefaultPolynomialFactor, "Exponent for polynomial backoff")
	flags.BoolVar(&f.graceful, "graceful", false, "Exit successfully when retries are exhausted")
}

// options returns only the flags set explicitly, so config file values are
// not overridden by flag defaults
func (f *policyFlags) options(cmd *cobra.Command) handlers.PolicyOptions {
	flags := cmd.Flags()
	opts := handlers.PolicyOptions{ConfigPath: f.configPath}

	if flags.Changed("name") {
		opts.Name = &f.name
	}
	if flags.Changed("max-retries") {
		opts.MaxRetries = &f.maxRetries
	}
	if flags.Changed("delay") {
		opts.Delay = &f.delay
	}
	if flags.Changed("max-duration") {
		opts.MaxDuration = &f.maxDuration
	}
	if flags.Changed("backoff") {
		opts.Backoff = &f.backoff
	}
	if flags.Changed("polynomial-factor") {
		opts.PolynomialFactor = &f.polynomialFactor
	}
	if flags.Changed("graceful") {
		opts.Graceful = &f.graceful
	}
	return opts
}
