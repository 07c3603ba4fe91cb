package retry

import (
	"context"

	"github.com/go-logr/logr"
)

// EventHandler handles retry events. Handlers are called synchronously from
// the retry loop; a handler shared between executions must be safe for
// concurrent use.
type EventHandler interface {
	// OnRetryAttempt is called after a retryable failure, before backing off
	OnRetryAttempt(ctx context.Context, event RetryEvent)

	// OnComplete is called once when a run reaches a terminal state
	OnComplete(ctx context.Context, outcome Outcome)
}

// LogEventHandler logs retry events through a logr.Logger
type LogEventHandler struct {
	logger logr.Logger
}

// NewLogEventHandler creates an event handler that logs to logger
func NewLogEventHandler(logger logr.Logger) *LogEventHandler {
	return &LogEventHandler{logger: logger}
}

// OnRetryAttempt logs a pending retry at verbosity 1
func (h *LogEventHandler) OnRetryAttempt(ctx context.Context, event RetryEvent) {
	h.logger.V(1).Info("Retrying after failure",
		"executor", event.Name,
		"attempt", event.Attempt,
		"delay", event.Delay,
		"error", event.Err)
}

// OnComplete logs the outcome of a run
func (h *LogEventHandler) OnComplete(ctx context.Context, outcome Outcome) {
	kv := []interface{}{
		"executor", outcome.Name,
		"state", outcome.State.String(),
		"attempts", outcome.Attempts,
		"elapsed", outcome.Elapsed,
	}

	switch outcome.State {
	case StateSucceeded:
		h.logger.V(1).Info("Operation succeeded", kv...)
	case StateGracefullyExited:
		h.logger.Info("Operation gave up gracefully", append(kv, "reason", outcome.Reason.String(), "error", outcome.Err)...)
	default:
		h.logger.Error(outcome.Err, "Operation failed", append(kv, "reason", outcome.Reason.String())...)
	}
}

// multiHandler fans events out to several handlers in order
type multiHandler []EventHandler

func (m multiHandler) OnRetryAttempt(ctx context.Context, event RetryEvent) {
	for _, h := range m {
		h.OnRetryAttempt(ctx, event)
	}
}

func (m multiHandler) OnComplete(ctx context.Context, outcome Outcome) {
	for _, h := range m {
		h.OnComplete(ctx, outcome)
	}
}
