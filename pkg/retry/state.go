package retry

import "time"

// State is a step of the retry state machine
type State int

const (
	// StateRunning is the initial state while an attempt is in flight
	StateRunning State = iota
	// StateRetrying means a retryable failure occurred and the executor is backing off
	StateRetrying
	// StateSucceeded means an attempt returned without error
	StateSucceeded
	// StateFailedFatal means the failure was propagated to the caller
	StateFailedFatal
	// StateGracefullyExited means the failure was suppressed by graceful error handling
	StateGracefullyExited
	// StateCancelled means the context ended the run
	StateCancelled
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateRetrying:
		return "retrying"
	case StateSucceeded:
		return "succeeded"
	case StateFailedFatal:
		return "failed"
	case StateGracefullyExited:
		return "graceful_exit"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends a run
func (s State) Terminal() bool {
	return s >= StateSucceeded && s <= StateCancelled
}

// Reason explains why a run left the retry loop
type Reason int

const (
	// ReasonNone is used for successful runs
	ReasonNone Reason = iota
	// ReasonNotRetryable means no callback was registered for the failure kind
	ReasonNotRetryable
	// ReasonBudgetExhausted means the retry budget was used up
	ReasonBudgetExhausted
	// ReasonCallbackStop means a callback asked to stop
	ReasonCallbackStop
	// ReasonCancelled means the context was cancelled or the maximum duration elapsed
	ReasonCancelled
	// ReasonInvalidPolicy means the backoff delay could not be computed
	ReasonInvalidPolicy
)

// String returns the string representation of the reason
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNotRetryable:
		return "not_retryable"
	case ReasonBudgetExhausted:
		return "budget_exhausted"
	case ReasonCallbackStop:
		return "callback_stop"
	case ReasonCancelled:
		return "cancelled"
	case ReasonInvalidPolicy:
		return "invalid_policy"
	default:
		return "unknown"
	}
}

// Outcome summarizes a finished run
type Outcome struct {
	// Name is the executor name
	Name string

	// State is the terminal state
	State State

	// Reason explains a non-successful state
	Reason Reason

	// Attempts is the number of times the operation ran
	Attempts int

	// Err is the last operation error, nil on success
	Err error

	// Elapsed is the wall-clock time of the run
	Elapsed time.Duration

	// TotalDelay is the time spent backing off
	TotalDelay time.Duration
}

// RetryEvent describes a retry that is about to wait
type RetryEvent struct {
	// Name is the executor name
	Name string

	// Attempt is the retry number, starting at 1
	Attempt int

	// Delay is the backoff before the retry
	Delay time.Duration

	// Err is the failure that triggered the retry
	Err error
}
