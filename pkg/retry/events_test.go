package retry

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/endure/internal/testutils"
)

func TestLogEventHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := funcr.New(func(prefix, args string) {
		fmt.Fprintln(&buf, prefix, args)
	}, funcr.Options{Verbosity: 1})

	policy, err := NewPolicyBuilder().
		WithMaxRetries(1).
		WithExpectedError(KindIs(errTransient)).
		Policy()
	require.NoError(t, err)

	executor := NewRetryExecutor(policy,
		WithName("fetch"),
		WithLogger(logger),
		WithClock(testutils.NewRecordingClock()))

	require.NoError(t, executor.Do(testutils.Context(t), testutils.NewFlaky(1, errTransient).Call))
	out := buf.String()
	assert.Contains(t, out, "Retrying after failure")
	assert.Contains(t, out, `"executor"="fetch"`)
	assert.Contains(t, out, "Operation succeeded")

	buf.Reset()
	require.Error(t, executor.Do(testutils.Context(t), testutils.NewFlaky(-1, errTransient).Call))
	out = buf.String()
	assert.Contains(t, out, "Operation failed")
	assert.Contains(t, out, `"reason"="budget_exhausted"`)
}

func TestLogEventHandler_Graceful(t *testing.T) {
	var buf bytes.Buffer
	logger := funcr.New(func(prefix, args string) {
		fmt.Fprintln(&buf, prefix, args)
	}, funcr.Options{})

	executor := NewRetryExecutor(mustPolicy(t, NewPolicyBuilder().WithGracefulErrorHandling()),
		WithLogger(logger),
		WithClock(testutils.NewRecordingClock()))

	require.NoError(t, executor.Do(testutils.Context(t), testutils.NewFlaky(-1, errTransient).Call))
	assert.Contains(t, buf.String(), "Operation gave up gracefully")
	assert.Contains(t, buf.String(), `"reason"="not_retryable"`)
}

func TestLogEventHandler_TestLogger(t *testing.T) {
	executor := NewRetryExecutor(mustPolicy(t, NewPolicyBuilder().
		WithMaxRetries(2).
		WithExpectedError(KindIs(errTransient))),
		WithLogger(testr.NewWithOptions(t, testr.Options{Verbosity: 1})),
		WithClock(testutils.NewRecordingClock()))

	assert.NoError(t, executor.Do(testutils.Context(t), testutils.NewFlaky(2, errTransient).Call))
}

func TestWithEventHandler_FanOut(t *testing.T) {
	first, second := &recordingHandler{}, &recordingHandler{}

	executor := NewRetryExecutor(mustPolicy(t, NewPolicyBuilder().
		WithMaxRetries(1).
		WithExpectedError(KindIs(errTransient))),
		WithEventHandler(first),
		WithEventHandler(nil),
		WithEventHandler(second),
		WithClock(testutils.NewRecordingClock()))

	require.NoError(t, executor.Do(testutils.Context(t), testutils.NewFlaky(1, errTransient).Call))

	for _, h := range []*recordingHandler{first, second} {
		assert.Len(t, h.retries, 1)
		assert.Len(t, h.outcomes, 1)
	}
}

func mustPolicy(t *testing.T, builder *PolicyBuilder) *Policy {
	t.Helper()
	policy, err := builder.Policy()
	require.NoError(t, err)
	return policy
}
