package retry

import (
	"context"
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrOutOfRange indicates a configuration value outside its valid range
	ErrOutOfRange = errors.New("value out of range")

	// ErrNotSupported indicates an executor cannot run with the given policy
	ErrNotSupported = errors.New("not supported")

	// ErrDuplicateKind indicates the same failure kind was registered twice
	ErrDuplicateKind = errors.New("failure kind already registered")

	// ErrMaxDurationExceeded is the cancellation cause used when a policy's
	// maximum duration elapses. It matches context.DeadlineExceeded.
	ErrMaxDurationExceeded = fmt.Errorf("maximum retry duration exceeded: %w", context.DeadlineExceeded)
)

// RangeError reports a configuration parameter with an invalid value
type RangeError struct {
	// Param is the name of the offending parameter
	Param string

	// Value is the rejected value
	Value interface{}

	// Reason describes the valid range
	Reason string
}

// Error implements the error interface
func (e *RangeError) Error() string {
	return fmt.Sprintf("retry: %s %v %s", e.Param, e.Value, e.Reason)
}

// Is reports whether target is ErrOutOfRange
func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

func errRange(param string, value interface{}, reason string) *RangeError {
	return &RangeError{Param: param, Value: value, Reason: reason}
}

// CancelledError is returned when the context ends a retry run, either because
// the caller cancelled it or because the maximum duration elapsed.
type CancelledError struct {
	// Cause is the context cancellation cause
	Cause error

	// LastErr is the last error returned by the operation, if any
	LastErr error

	// Attempts is the number of attempts made before cancellation
	Attempts int
}

// Error implements the error interface
func (e *CancelledError) Error() string {
	if e.LastErr == nil {
		return fmt.Sprintf("retry cancelled after %d attempts: %v", e.Attempts, e.Cause)
	}
	return fmt.Sprintf("retry cancelled after %d attempts: %v (last error: %v)", e.Attempts, e.Cause, e.LastErr)
}

// Unwrap exposes both the cancellation cause and the last operation error
func (e *CancelledError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	if e.LastErr != nil {
		errs = append(errs, e.LastErr)
	}
	return errs
}

// IsCancelled reports whether err is the result of a cancelled retry run
func IsCancelled(err error) bool {
	var cancelled *CancelledError
	return errors.As(err, &cancelled)
}

func errCancelled(ctx context.Context, lastErr error, attempts int) *CancelledError {
	return &CancelledError{
		Cause:    context.Cause(ctx),
		LastErr:  lastErr,
		Attempts: attempts,
	}
}
