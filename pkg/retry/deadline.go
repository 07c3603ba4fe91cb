package retry

import (
	"context"
	"fmt"

	"github.com/jzx17/endure/pkg/types"
)

// DeadlineExecutor bounds every run of a wrapped executor by the policy's
// maximum duration. Each Do call gets a fresh deadline measured from its start.
type DeadlineExecutor struct {
	inner Executor
	clock types.Clock
}

// NewDeadlineExecutor wraps inner. A nil clock means the real clock.
func NewDeadlineExecutor(inner Executor, clock types.Clock) *DeadlineExecutor {
	if clock == nil {
		clock = types.NewRealClock()
	}
	return &DeadlineExecutor{inner: inner, clock: clock}
}

// Policy returns the policy of the wrapped executor
func (d *DeadlineExecutor) Policy() *Policy {
	return d.inner.Policy()
}

// Stats returns the statistics of the wrapped executor
func (d *DeadlineExecutor) Stats() RetryStats {
	return d.inner.Stats()
}

// Clock returns the clock that drives the deadline
func (d *DeadlineExecutor) Clock() types.Clock {
	return d.clock
}

// Do runs op through the wrapped executor until the maximum duration elapses.
// It fails with ErrNotSupported before any attempt if the policy has no
// maximum duration. When the deadline fires, the run ends with a
// *CancelledError whose cause is ErrMaxDurationExceeded.
func (d *DeadlineExecutor) Do(ctx context.Context, op Operation) error {
	maxDuration, ok := d.inner.Policy().MaxDuration()
	if !ok {
		return fmt.Errorf("deadline executor requires a maximum duration: %w", ErrNotSupported)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	timer := d.clock.NewTimer(maxDuration)
	defer timer.Stop()

	go func() {
		select {
		case <-timer.C():
			cancel(ErrMaxDurationExceeded)
		case <-ctx.Done():
		}
	}()

	return d.inner.Do(ctx, op)
}
