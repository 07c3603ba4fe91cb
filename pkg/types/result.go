package types

import "time"

// Result defines the result of asynchronous execution
type Result[R any] struct {
	// Value is the execution result
	Value R

	// Error is the execution error
	Error error

	// Duration is the execution time
	Duration time.Duration
}

// Unpack returns the value and error, mirroring a synchronous call
func (r Result[R]) Unpack() (R, error) {
	return r.Value, r.Error
}
