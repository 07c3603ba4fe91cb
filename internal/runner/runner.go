// Package runner retries external commands.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/jzx17/endure/pkg/retry"
)

// ExitCodeKind matches commands that exited with one of codes, or with any
// non-zero code when codes is empty. Failures to start a command never match.
func ExitCodeKind(codes ...int) retry.Kind {
	name := "exit code"
	if len(codes) > 0 {
		parts := make([]string, len(codes))
		for i, code := range codes {
			parts[i] = strconv.Itoa(code)
		}
		name = "exit code " + strings.Join(parts, ",")
	}

	return retry.KindFunc(name, func(err error) bool {
		code, ok := ExitCode(err)
		if !ok || code == 0 {
			return false
		}
		return len(codes) == 0 || slices.Contains(codes, code)
	})
}

// ExitCode extracts the exit code of a command that ran and failed
func ExitCode(err error) (int, bool) {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 0, false
	}
	return exitErr.ExitCode(), true
}

// DefaultWaitDelay bounds how long a run waits for output after the command
// exits or its context is done
const DefaultWaitDelay = 2 * time.Second

// Result describes a finished command run
type Result struct {
	// Attempts is how many times the command was started
	Attempts int

	// ExitCode is the exit code of the last attempt, -1 if it never ran
	ExitCode int
}

// Runner runs a command under a retry executor
type Runner struct {
	executor  retry.Executor
	stdout    io.Writer
	stderr    io.Writer
	logger    logr.Logger
	waitDelay time.Duration
}

// Option configures a Runner
type Option func(*Runner)

// WithOutput sets where the command output goes; nil discards it
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithLogger sets the logger used for per-attempt messages
func WithLogger(logger logr.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithWaitDelay bounds how long an attempt waits for the command's output to
// close once the command has exited or been killed on cancellation. Zero
// waits indefinitely.
func WithWaitDelay(d time.Duration) Option {
	return func(r *Runner) {
		r.waitDelay = d
	}
}

// New creates a runner that retries through executor
func New(executor retry.Executor, opts ...Option) *Runner {
	r := &Runner{
		executor:  executor,
		stdout:    io.Discard,
		stderr:    io.Discard,
		logger:    logr.Discard(),
		waitDelay: DefaultWaitDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.stdout == nil {
		r.stdout = io.Discard
	}
	if r.stderr == nil {
		r.stderr = io.Discard
	}
	return r
}

// Run starts name with args until it exits successfully or the executor
// gives up. The returned error is the executor's verdict: nil on success or
// graceful exit, otherwise the last *exec.ExitError, a start failure, or a
// *retry.CancelledError.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	result := Result{ExitCode: -1}

	err := retry.Run(r.executor, ctx, func(ctx context.Context) error {
		result.Attempts++
		r.logger.V(1).Info("Starting command", "command", name, "attempt", result.Attempts)

		err := r.runOnce(ctx, name, args)
		switch code, ok := ExitCode(err); {
		case err == nil:
			result.ExitCode = 0
		case ok:
			result.ExitCode = code
			r.logger.V(1).Info("Command failed", "command", name, "attempt", result.Attempts, "exitCode", code)
		}
		return err
	})

	return result, err
}

// runOnce runs a single attempt. A command that exits successfully while a
// child it spawned still holds its output open counts as a success.
func (r *Runner) runOnce(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	cmd.WaitDelay = r.waitDelay

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	err := cmd.Wait()
	if errors.Is(err, exec.ErrWaitDelay) {
		r.logger.Info("Command left output open after exiting", "command", name, "waitDelay", r.waitDelay)
		return nil
	}
	return err
}
