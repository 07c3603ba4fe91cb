// Package retry provides retry executor implementation
package retry

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/jzx17/endure/pkg/types"
)

// Operation is the unit of work retried by an Executor
type Operation func(ctx context.Context) error

// Executor runs operations under a retry policy
type Executor interface {
	// Do runs op until it succeeds or the policy stops the run
	Do(ctx context.Context, op Operation) error

	// Policy returns the policy driving the executor
	Policy() *Policy

	// Stats returns aggregated statistics over all runs
	Stats() RetryStats

	// Clock returns the clock used for backoff and timing
	Clock() types.Clock
}

// RetryExecutor implements retry execution logic
type RetryExecutor struct {
	policy  *Policy
	name    string
	handler EventHandler
	clock   types.Clock

	mu    sync.RWMutex
	stats RetryStats
}

// RetryStats contains retry statistics
type RetryStats struct {
	TotalExecutions int64         // number of Do calls that finished
	TotalAttempts   int64         // total attempt count
	TotalRetries    int64         // total retry count
	TotalSuccesses  int64         // runs that succeeded
	TotalFailures   int64         // runs that propagated an error
	GracefulExits   int64         // runs suppressed by graceful error handling
	Cancellations   int64         // runs ended by the context
	AverageAttempts float64       // average attempts per run
	LastRetryTime   time.Time     // last retry time
	TotalRetryDelay time.Duration // total retry delay time
}

// NewRetryExecutor creates a retry executor. A nil policy means NewPolicy().
func NewRetryExecutor(policy *Policy, opts ...ExecutorOption) *RetryExecutor {
	if policy == nil {
		policy = NewPolicy()
	}

	executor := &RetryExecutor{
		policy: policy,
		name:   "default",
		clock:  types.NewRealClock(), // Default to real clock
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

// Policy returns the policy driving the executor
func (r *RetryExecutor) Policy() *Policy {
	return r.policy
}

// Clock returns the clock used for backoff and timing
func (r *RetryExecutor) Clock() types.Clock {
	return r.clock
}

// Name returns the executor name used in events
func (r *RetryExecutor) Name() string {
	return r.name
}

// Do runs op until it succeeds, the policy gives up, or ctx is done.
//
// A failure whose kind is not registered, or that arrives after the retry
// budget is spent, ends the run: with graceful error handling Do returns nil,
// otherwise it returns the failure unchanged. A callback returning false
// always propagates the failure. Cancellation yields a *CancelledError.
func (r *RetryExecutor) Do(ctx context.Context, op Operation) error {
	run := runState{
		start: r.clock.Now(),
		state: StateRunning,
	}

	for {
		// check if context is cancelled
		if ctx.Err() != nil {
			return r.finish(ctx, &run, StateCancelled, ReasonCancelled, errCancelled(ctx, run.lastErr, run.attempts))
		}

		run.state = StateRunning
		run.attempts++
		err := op(ctx)
		if err == nil {
			run.lastErr = nil
			return r.finish(ctx, &run, StateSucceeded, ReasonNone, nil)
		}
		run.lastErr = err

		if ctx.Err() != nil {
			return r.finish(ctx, &run, StateCancelled, ReasonCancelled, errCancelled(ctx, err, run.attempts))
		}

		verdict, reason := r.policy.decide(err, run.retries)
		switch verdict {
		case decideExit:
			if r.policy.graceful {
				return r.finish(ctx, &run, StateGracefullyExited, reason, nil)
			}
			return r.finish(ctx, &run, StateFailedFatal, reason, err)
		case decideStop:
			return r.finish(ctx, &run, StateFailedFatal, reason, err)
		}

		run.state = StateRetrying
		run.retries++
		delay, derr := r.policy.NextDelay(run.retries)
		if derr != nil {
			return r.finish(ctx, &run, StateFailedFatal, ReasonInvalidPolicy, derr)
		}

		if ctx.Err() != nil {
			return r.finish(ctx, &run, StateCancelled, ReasonCancelled, errCancelled(ctx, err, run.attempts))
		}

		r.updateStats(func(stats *RetryStats) {
			stats.LastRetryTime = r.clock.Now()
			stats.TotalRetryDelay += delay
		})
		run.totalDelay += delay

		if r.handler != nil {
			r.handler.OnRetryAttempt(ctx, RetryEvent{
				Name:    r.name,
				Attempt: int(run.retries),
				Delay:   delay,
				Err:     err,
			})
		}

		// wait for retry delay
		if delay > 0 {
			if werr := r.wait(ctx, delay); werr != nil {
				return r.finish(ctx, &run, StateCancelled, ReasonCancelled, errCancelled(ctx, err, run.attempts))
			}
		}
	}
}

// runState is the per-call state of a run; it never lives on the policy
type runState struct {
	start      time.Time
	state      State
	attempts   int
	retries    uint
	lastErr    error
	totalDelay time.Duration
}

// wait blocks for d or until ctx is done
func (r *RetryExecutor) wait(ctx context.Context, d time.Duration) error {
	timer := r.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C():
		return nil
	}
}

// finish records the terminal state and returns the error to surface
func (r *RetryExecutor) finish(ctx context.Context, run *runState, state State, reason Reason, err error) error {
	run.state = state

	r.updateStats(func(stats *RetryStats) {
		stats.TotalExecutions++
		stats.TotalAttempts += int64(run.attempts)
		stats.TotalRetries += int64(run.retries)
		switch state {
		case StateSucceeded:
			stats.TotalSuccesses++
		case StateGracefullyExited:
			stats.GracefulExits++
		case StateCancelled:
			stats.Cancellations++
		default:
			stats.TotalFailures++
		}
		stats.AverageAttempts = float64(stats.TotalAttempts) / float64(stats.TotalExecutions)
	})

	if r.handler != nil {
		r.handler.OnComplete(ctx, Outcome{
			Name:       r.name,
			State:      state,
			Reason:     reason,
			Attempts:   run.attempts,
			Err:        run.lastErr,
			Elapsed:    r.clock.Since(run.start),
			TotalDelay: run.totalDelay,
		})
	}

	return err
}

// Stats gets retry statistics
func (r *RetryExecutor) Stats() RetryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

// ResetStats resets statistics
func (r *RetryExecutor) ResetStats() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = RetryStats{}
}

// updateStats updates statistics (thread-safe)
func (r *RetryExecutor) updateStats(fn func(*RetryStats)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.stats)
}

// ExecutorOption is a configuration option for retry executor
type ExecutorOption func(*RetryExecutor)

// WithEventHandler adds an event handler; handlers run in the order added
func WithEventHandler(handler EventHandler) ExecutorOption {
	return func(r *RetryExecutor) {
		if handler == nil {
			return
		}
		switch existing := r.handler.(type) {
		case nil:
			r.handler = handler
		case multiHandler:
			r.handler = append(existing, handler)
		default:
			r.handler = multiHandler{existing, handler}
		}
	}
}

// WithLogger logs retry events to logger
func WithLogger(logger logr.Logger) ExecutorOption {
	return WithEventHandler(NewLogEventHandler(logger))
}

// WithName sets the executor name reported in events
func WithName(name string) ExecutorOption {
	return func(r *RetryExecutor) {
		r.name = name
	}
}

// WithClock sets the clock for time operations
func WithClock(clock types.Clock) ExecutorOption {
	return func(r *RetryExecutor) {
		if clock != nil {
			r.clock = clock
		}
	}
}
