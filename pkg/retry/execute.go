package retry

import (
	"context"

	"github.com/jzx17/endure/pkg/types"
)

// ExecuteFunc is the function type to retry
type ExecuteFunc[T any] func(ctx context.Context) (T, error)

// Execute runs fn with retry logic and returns the value of the first
// successful attempt. When the run exits gracefully the zero value is
// returned with a nil error.
func Execute[T any](ex Executor, ctx context.Context, fn ExecuteFunc[T]) (T, error) {
	var (
		zero   T
		result T
	)
	err := ex.Do(ctx, func(ctx context.Context) error {
		val, err := fn(ctx)
		if err != nil {
			return err
		}
		result = val
		return nil
	})
	if err != nil {
		return zero, err
	}
	return result, nil
}

// Run runs fn with retry logic
func Run(ex Executor, ctx context.Context, fn Operation) error {
	return ex.Do(ctx, fn)
}

// ExecuteAsync executes a function with retry asynchronously. The channel
// receives exactly one result and is then closed. Duration is measured with
// the executor's clock.
func ExecuteAsync[T any](ex Executor, ctx context.Context, fn ExecuteFunc[T]) <-chan types.Result[T] {
	resultChan := make(chan types.Result[T], 1)

	go func() {
		defer close(resultChan)

		clock := ex.Clock()
		start := clock.Now()
		value, err := Execute(ex, ctx, fn)

		resultChan <- types.Result[T]{
			Value:    value,
			Error:    err,
			Duration: clock.Since(start),
		}
	}()

	return resultChan
}

// RunAsync runs fn with retry asynchronously. The channel receives the final
// error (nil on success or graceful exit) and is then closed.
func RunAsync(ex Executor, ctx context.Context, fn Operation) <-chan error {
	errChan := make(chan error, 1)

	go func() {
		defer close(errChan)
		errChan <- ex.Do(ctx, fn)
	}()

	return errChan
}

// ExecuteSync adapts a function that takes no context
func ExecuteSync[T any](ex Executor, ctx context.Context, fn func() (T, error)) (T, error) {
	return Execute(ex, ctx, func(context.Context) (T, error) {
		return fn()
	})
}

// RunSync adapts an action that takes no context
func RunSync(ex Executor, ctx context.Context, fn func() error) error {
	return ex.Do(ctx, func(context.Context) error {
		return fn()
	})
}
