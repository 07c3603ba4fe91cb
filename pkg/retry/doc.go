// Package retry provides a retry execution engine driven by declarative policies.
//
// Key Features:
//
// 1. Backoff strategies (BackoffStrategy):
//   - BackoffFixed: base delay before every retry
//   - BackoffLinear: base * attempt
//   - BackoffExponential: base * attempt²
//   - BackoffFibonacci: base * Fibonacci(attempt)
//   - BackoffPolynomial: base * attempt^factor
//
// 2. Failure kinds:
//   - KindOf[E]: errors of a concrete type anywhere in the chain
//   - KindIs: sentinel errors
//   - KindFunc: custom discriminants
//
// Only registered kinds are retried. Anything else ends the run at once.
//
// 3. Executors:
//   - RetryExecutor: the retry loop
//   - DeadlineExecutor: bounds each run by the policy's maximum duration
//   - NewExecutor picks the right one for a policy
//
// 4. Call shapes, all sharing the same loop:
//   - Execute / ExecuteSync: synchronous, with a result
//   - Run / RunSync: synchronous, without a result
//   - ExecuteAsync: asynchronous, with a result
//   - RunAsync: asynchronous, without a result
//
// Basic usage example:
//
//	executor, err := retry.NewPolicyBuilder().
//		WithMaxRetries(3).
//		WithDelay(200 * time.Millisecond).
//		WithBackoff(retry.BackoffExponential).
//		WithExpectedError(retry.KindIs(io.ErrUnexpectedEOF)).
//		Build()
//	if err != nil {
//		return err
//	}
//
//	body, err := retry.Execute(executor, ctx, func(ctx context.Context) ([]byte, error) {
//		return fetch(ctx)
//	})
//
// Deadline example:
//
//	executor, err := retry.NewPolicyBuilder().
//		WithMaxDuration(30 * time.Second).
//		WithExpectedError(retry.KindOf[*net.OpError]()).
//		Build()
//
//	err = retry.Run(executor, ctx, dial)
//	if retry.IsCancelled(err) && errors.Is(err, retry.ErrMaxDurationExceeded) {
//		// gave up after 30 seconds
//	}
//
// Error callbacks:
//
//	builder.OnError(retry.KindOf[*StatusError](), func(err error) bool {
//		var status *StatusError
//		errors.As(err, &status)
//		return status.Code >= 500 // stop on client errors
//	})
//
// A callback returning false always propagates the error, even with graceful
// error handling enabled. Graceful handling only suppresses unregistered kinds
// and exhausted budgets; configuration errors and cancellation are never
// suppressed.
//
// Event handling:
//
//	executor, err := builder.Build(
//		retry.WithName("fetch"),
//		retry.WithLogger(logger),
//		retry.WithEventHandler(collector))
//
// Thread safety:
//
// Policies are read-only after Build and executors can be shared between
// goroutines. Each Do call keeps its attempt counter locally. Error callbacks
// and event handlers may be invoked concurrently when an executor is shared
// and must synchronize their own state.
package retry
