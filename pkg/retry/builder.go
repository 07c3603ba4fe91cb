package retry

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// PolicyBuilder assembles a Policy through chained calls. Configuration
// errors are collected and reported by Policy and Build, so chains never need
// to be interrupted. A builder is not safe for concurrent use.
//
//	executor, err := retry.NewPolicyBuilder().
//		WithMaxRetries(5).
//		WithBackoff(retry.BackoffExponential).
//		WithExpectedError(retry.KindOf[*net.OpError]()).
//		Build()
type PolicyBuilder struct {
	policy *Policy
	errs   []error
}

// NewPolicyBuilder creates a builder starting from NewPolicy defaults
func NewPolicyBuilder() *PolicyBuilder {
	return &PolicyBuilder{policy: NewPolicy()}
}

// WithGracefulErrorHandling makes runs that exhaust the retry budget, or fail
// with an unregistered kind, return without error instead of propagating it
func (b *PolicyBuilder) WithGracefulErrorHandling() *PolicyBuilder {
	b.policy.graceful = true
	return b
}

// WithDelay sets the base delay between retries (default 100ms)
func (b *PolicyBuilder) WithDelay(delay time.Duration) *PolicyBuilder {
	if delay < 0 {
		b.errs = append(b.errs, errRange("delay", delay, "must not be negative"))
		return b
	}
	b.policy.delay = delay
	return b
}

// WithMaxRetries sets how many retries follow the first attempt
func (b *PolicyBuilder) WithMaxRetries(maxRetries uint) *PolicyBuilder {
	b.policy.maxRetries = maxRetries
	b.policy.hasMaxRetries = true
	return b
}

// WithMaxDuration bounds the total time of each run
func (b *PolicyBuilder) WithMaxDuration(maxDuration time.Duration) *PolicyBuilder {
	if maxDuration <= 0 {
		b.errs = append(b.errs, errRange("max duration", maxDuration, "must be greater than zero"))
		return b
	}
	b.policy.maxDuration = maxDuration
	b.policy.hasMaxDuration = true
	return b
}

// WithBackoff sets the backoff strategy (default BackoffFixed)
func (b *PolicyBuilder) WithBackoff(strategy BackoffStrategy) *PolicyBuilder {
	if !strategy.Valid() {
		b.errs = append(b.errs, errRange("backoff strategy", int(strategy), "is not a valid backoff strategy"))
		return b
	}
	b.policy.backoff = strategy
	return b
}

// WithPolynomialFactor sets the exponent used by BackoffPolynomial (default 2)
func (b *PolicyBuilder) WithPolynomialFactor(factor float64) *PolicyBuilder {
	if !(factor > 0) || math.IsInf(factor, 0) {
		b.errs = append(b.errs, errRange("polynomial factor", factor, "must be a finite number greater than zero"))
		return b
	}
	b.policy.polynomialFactor = factor
	return b
}

// WithExpectedError marks kind as retryable
func (b *PolicyBuilder) WithExpectedError(kind Kind) *PolicyBuilder {
	return b.OnError(kind, func(error) bool { return true })
}

// WithErrorHandling marks kind as retryable and calls fn for every failure of
// that kind, typically for logging or counting
func (b *PolicyBuilder) WithErrorHandling(kind Kind, fn func(err error)) *PolicyBuilder {
	if fn == nil {
		return b.WithExpectedError(kind)
	}
	return b.OnError(kind, func(err error) bool {
		fn(err)
		return true
	})
}

// ContinueOnError marks kind as retryable when retry is true. When retry is
// false, failures of that kind stop the run and propagate.
//
// Deprecated: use WithExpectedError, or OnError for conditional decisions.
func (b *PolicyBuilder) ContinueOnError(kind Kind, retry bool) *PolicyBuilder {
	return b.OnError(kind, func(error) bool { return retry })
}

// OnError registers callback for kind. The callback decides, per failure,
// whether the run continues.
func (b *PolicyBuilder) OnError(kind Kind, callback ErrorCallback) *PolicyBuilder {
	if kind.match == nil {
		b.errs = append(b.errs, fmt.Errorf("retry: failure kind %q has no matcher: %w", kind.name, ErrOutOfRange))
		return b
	}
	for _, h := range b.policy.handlers {
		if h.kind.sameAs(kind) {
			b.errs = append(b.errs, fmt.Errorf("retry: %q: %w", kind.name, ErrDuplicateKind))
			return b
		}
	}
	if callback == nil {
		callback = func(error) bool { return true }
	}
	b.policy.handlers = append(b.policy.handlers, errorHandler{kind: kind, callback: callback})
	return b
}

// Policy returns a snapshot of the configured policy, or the configuration
// errors collected so far
func (b *PolicyBuilder) Policy() (*Policy, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	policy := b.policy.clone()
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}

// Build creates an executor for the configured policy via NewExecutor
func (b *PolicyBuilder) Build(opts ...ExecutorOption) (Executor, error) {
	policy, err := b.Policy()
	if err != nil {
		return nil, err
	}
	return NewExecutor(policy, opts...), nil
}

// MustBuild is like Build but panics on configuration errors
func (b *PolicyBuilder) MustBuild(opts ...ExecutorOption) Executor {
	executor, err := b.Build(opts...)
	if err != nil {
		panic(err)
	}
	return executor
}
