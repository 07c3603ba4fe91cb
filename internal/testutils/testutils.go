// Package testutils provides simplified testing utilities and helper functions
package testutils

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// DefaultTimeout bounds test contexts created by Context
const DefaultTimeout = 5 * time.Second

// Context returns a context that is cancelled after DefaultTimeout or when
// the test finishes
func Context(t testing.TB) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	t.Cleanup(cancel)
	return ctx
}

// Flaky is an operation that fails a fixed number of times before succeeding
type Flaky struct {
	failures int64
	err      error
	calls    atomic.Int64
}

// NewFlaky creates an operation that returns err for the first failures calls.
// A negative failures value fails forever.
func NewFlaky(failures int, err error) *Flaky {
	return &Flaky{failures: int64(failures), err: err}
}

// Call runs the operation once
func (f *Flaky) Call(ctx context.Context) error {
	n := f.calls.Add(1)
	if f.failures < 0 || n <= f.failures {
		return f.err
	}
	return nil
}

// Calls returns how many times the operation ran
func (f *Flaky) Calls() int {
	return int(f.calls.Load())
}

// BlockUntilDone is an operation that waits for ctx and returns its error,
// mimicking a call that honors cancellation
func BlockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
