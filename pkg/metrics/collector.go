// Package metrics exports retry events as Prometheus metrics.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jzx17/endure/pkg/retry"
)

const namespace = "endure"

// Collector is a retry.EventHandler that records Prometheus metrics.
// It is safe for concurrent use and can be shared between executors; the
// executor name is used as a label.
type Collector struct {
	retriesTotal  *prometheus.CounterVec
	runsTotal     *prometheus.CounterVec
	attempts      *prometheus.HistogramVec
	runDuration   *prometheus.HistogramVec
	backoffDelay  *prometheus.HistogramVec
	backoffTotals *prometheus.CounterVec
}

var _ retry.EventHandler = (*Collector)(nil)

// NewCollector creates a collector and registers its metrics on reg
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retry",
				Name:      "retries_total",
				Help:      "Total number of retries by executor",
			},
			[]string{"executor"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retry",
				Name:      "runs_total",
				Help:      "Total number of finished runs by executor, state and reason",
			},
			[]string{"executor", "state", "reason"},
		),
		attempts: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "retry",
				Name:      "attempts",
				Help:      "Attempts per finished run",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 8), // 1 to 128
			},
			[]string{"executor"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "retry",
				Name:      "run_duration_seconds",
				Help:      "Duration of finished runs in seconds, backoff included",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
			},
			[]string{"executor", "state"},
		),
		backoffDelay: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "retry",
				Name:      "backoff_delay_seconds",
				Help:      "Backoff delay before each retry in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"executor"},
		),
		backoffTotals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retry",
				Name:      "backoff_seconds_total",
				Help:      "Total time spent backing off in seconds",
			},
			[]string{"executor"},
		),
	}

	for _, collector := range []prometheus.Collector{
		c.retriesTotal,
		c.runsTotal,
		c.attempts,
		c.runDuration,
		c.backoffDelay,
		c.backoffTotals,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// MustNewCollector is like NewCollector but panics if registration fails
func MustNewCollector(reg prometheus.Registerer) *Collector {
	c, err := NewCollector(reg)
	if err != nil {
		panic(err)
	}
	return c
}

// OnRetryAttempt records a retry and its backoff delay
func (c *Collector) OnRetryAttempt(_ context.Context, event retry.RetryEvent) {
	c.retriesTotal.WithLabelValues(event.Name).Inc()
	c.backoffDelay.WithLabelValues(event.Name).Observe(event.Delay.Seconds())
	c.backoffTotals.WithLabelValues(event.Name).Add(event.Delay.Seconds())
}

// OnComplete records the outcome of a run
func (c *Collector) OnComplete(_ context.Context, outcome retry.Outcome) {
	state := outcome.State.String()
	c.runsTotal.WithLabelValues(outcome.Name, state, outcome.Reason.String()).Inc()
	c.attempts.WithLabelValues(outcome.Name).Observe(float64(outcome.Attempts))
	c.runDuration.WithLabelValues(outcome.Name, state).Observe(outcome.Elapsed.Seconds())
}
