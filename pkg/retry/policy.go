// Package retry provides retry policy definitions
package retry

import (
	"errors"
	"math"
	"time"
)

// DefaultDelay is the base delay between retries unless configured
const DefaultDelay = 100 * time.Millisecond

// ErrorCallback is invoked for a retryable failure. Returning false stops the
// run and propagates the error, regardless of graceful error handling.
type ErrorCallback func(err error) bool

// errorHandler binds a failure kind to its callback
type errorHandler struct {
	kind     Kind
	callback ErrorCallback
}

// Policy holds the retry configuration. A Policy is read-only once built and
// can be shared by concurrent executions.
type Policy struct {
	maxRetries       uint
	hasMaxRetries    bool
	delay            time.Duration
	maxDuration      time.Duration
	hasMaxDuration   bool
	backoff          BackoffStrategy
	polynomialFactor float64
	graceful         bool
	handlers         []errorHandler
}

// NewPolicy creates a policy with default settings: unlimited retries, a
// fixed 100ms delay, no maximum duration and no retryable failure kinds.
func NewPolicy() *Policy {
	return &Policy{
		delay:            DefaultDelay,
		backoff:          BackoffFixed,
		polynomialFactor: DefaultPolynomialFactor,
	}
}

// MaxRetries returns the retry budget and whether one is set
func (p *Policy) MaxRetries() (uint, bool) {
	return p.maxRetries, p.hasMaxRetries
}

// Delay returns the base delay between retries
func (p *Policy) Delay() time.Duration {
	return p.delay
}

// MaxDuration returns the overall deadline and whether one is set
func (p *Policy) MaxDuration() (time.Duration, bool) {
	return p.maxDuration, p.hasMaxDuration
}

// Backoff returns the backoff strategy
func (p *Policy) Backoff() BackoffStrategy {
	return p.backoff
}

// PolynomialFactor returns the exponent used by BackoffPolynomial
func (p *Policy) PolynomialFactor() float64 {
	return p.polynomialFactor
}

// GracefulErrorHandling reports whether exhausted runs return without error
func (p *Policy) GracefulErrorHandling() bool {
	return p.graceful
}

// Kinds returns the registered failure kinds in registration order
func (p *Policy) Kinds() []Kind {
	kinds := make([]Kind, len(p.handlers))
	for i, h := range p.handlers {
		kinds[i] = h.kind
	}
	return kinds
}

// NextDelay returns the wait before the given retry attempt
func (p *Policy) NextDelay(attempt uint) (time.Duration, error) {
	return Delay(p.backoff, attempt, p.delay, p.polynomialFactor)
}

// Validate checks the policy for configuration errors
func (p *Policy) Validate() error {
	var errs []error
	if p.delay < 0 {
		errs = append(errs, errRange("delay", p.delay, "must not be negative"))
	}
	if p.hasMaxDuration && p.maxDuration <= 0 {
		errs = append(errs, errRange("max duration", p.maxDuration, "must be greater than zero"))
	}
	if !p.backoff.Valid() {
		errs = append(errs, errRange("backoff strategy", int(p.backoff), "is not a valid backoff strategy"))
	}
	if !(p.polynomialFactor > 0) || math.IsInf(p.polynomialFactor, 0) {
		errs = append(errs, errRange("polynomial factor", p.polynomialFactor, "must be a finite number greater than zero"))
	}
	return errors.Join(errs...)
}

// clone returns a deep copy, so builders can keep mutating their own state
func (p *Policy) clone() *Policy {
	c := *p
	c.handlers = append([]errorHandler(nil), p.handlers...)
	return &c
}

// lookup finds the first registered callback whose kind matches err
func (p *Policy) lookup(err error) (ErrorCallback, bool) {
	for _, h := range p.handlers {
		if h.kind.Matches(err) {
			return h.callback, true
		}
	}
	return nil, false
}

// decision is the policy's verdict on a failed attempt
type decision int

const (
	decideRetry decision = iota
	decideExit
	decideStop
)

// decide classifies a failure after the given number of retries. Unregistered
// kinds and exhausted budgets exit; registered kinds defer to their callback.
func (p *Policy) decide(err error, retries uint) (decision, Reason) {
	callback, ok := p.lookup(err)
	if !ok {
		return decideExit, ReasonNotRetryable
	}
	if p.hasMaxRetries && retries >= p.maxRetries {
		return decideExit, ReasonBudgetExhausted
	}
	if callback != nil && !callback(err) {
		return decideStop, ReasonCallbackStop
	}
	return decideRetry, ReasonNone
}
