package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/endure/internal/testutils"
	"github.com/jzx17/endure/pkg/retry"
)

var errUnavailable = errors.New("unavailable")

func newExecutor(t *testing.T, collector *Collector, name string) retry.Executor {
	t.Helper()

	executor, err := retry.NewPolicyBuilder().
		WithMaxRetries(2).
		WithDelay(50*time.Millisecond).
		WithBackoff(retry.BackoffLinear).
		WithExpectedError(retry.KindIs(errUnavailable)).
		Build(
			retry.WithName(name),
			retry.WithEventHandler(collector),
			retry.WithClock(testutils.NewRecordingClock()))
	require.NoError(t, err)
	return executor
}

func TestCollector_Success(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	require.NoError(t, err)

	executor := newExecutor(t, collector, "fetch")
	require.NoError(t, executor.Do(testutils.Context(t), testutils.NewFlaky(2, errUnavailable).Call))

	assert.Equal(t, float64(2), testutil.ToFloat64(collector.retriesTotal.WithLabelValues("fetch")))
	assert.InDelta(t, 0.15, testutil.ToFloat64(collector.backoffTotals.WithLabelValues("fetch")), 1e-9)
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.runsTotal.WithLabelValues("fetch", "succeeded", "none")))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.attempts))
}

func TestCollector_OutcomesByState(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := MustNewCollector(reg)

	executor := newExecutor(t, collector, "push")
	ctx := testutils.Context(t)

	assert.Error(t, executor.Do(ctx, testutils.NewFlaky(-1, errUnavailable).Call))
	assert.Error(t, executor.Do(ctx, testutils.NewFlaky(-1, errors.New("bad request")).Call))
	assert.NoError(t, executor.Do(ctx, testutils.NewFlaky(0, errUnavailable).Call))

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.runsTotal.WithLabelValues("push", "failed", "budget_exhausted")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.runsTotal.WithLabelValues("push", "failed", "not_retryable")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.runsTotal.WithLabelValues("push", "succeeded", "none")))
	assert.Equal(t, 3, testutil.CollectAndCount(collector.runsTotal))

	count, err := testutil.GatherAndCount(reg, "endure_retry_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCollector_SharedBetweenExecutors(t *testing.T) {
	collector := MustNewCollector(prometheus.NewRegistry())

	first := newExecutor(t, collector, "first")
	second := newExecutor(t, collector, "second")
	ctx := testutils.Context(t)

	require.NoError(t, first.Do(ctx, testutils.NewFlaky(1, errUnavailable).Call))
	require.NoError(t, second.Do(ctx, testutils.NewFlaky(2, errUnavailable).Call))

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.retriesTotal.WithLabelValues("first")))
	assert.Equal(t, float64(2), testutil.ToFloat64(collector.retriesTotal.WithLabelValues("second")))
}

func TestNewCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	var already prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &already)

	assert.Panics(t, func() { MustNewCollector(reg) })
}
