package testutils

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/endure/pkg/types"
)

// NewMockClock creates a mock clock for testing
func NewMockClock(t testing.TB) *quartz.Mock {
	return quartz.NewMock(t)
}

// ClockWrapper wraps quartz.Mock to implement our Clock interface
type ClockWrapper struct {
	*quartz.Mock
}

// NewClockWrapper creates a new ClockWrapper
func NewClockWrapper(mock *quartz.Mock) *ClockWrapper {
	return &ClockWrapper{Mock: mock}
}

// Now returns the current time
func (c *ClockWrapper) Now() time.Time {
	return c.Mock.Now()
}

// Since returns the time elapsed since t
func (c *ClockWrapper) Since(t time.Time) time.Duration {
	return c.Mock.Since(t)
}

// NewTimer creates a new Timer
func (c *ClockWrapper) NewTimer(d time.Duration) types.Timer {
	timer := c.Mock.NewTimer(d)
	return &TimerWrapper{timer: timer}
}

// TimerWrapper wraps quartz timer
type TimerWrapper struct {
	timer *quartz.Timer
}

func (t *TimerWrapper) C() <-chan time.Time {
	return t.timer.C
}

func (t *TimerWrapper) Stop() bool {
	return t.timer.Stop()
}

func (t *TimerWrapper) Reset(d time.Duration) bool {
	return t.timer.Reset(d)
}

// WaitForTimer blocks until the mock clock has a pending timer and returns
// the duration until it fires
func WaitForTimer(t testing.TB, mock *quartz.Mock) time.Duration {
	t.Helper()

	var next time.Duration
	require.Eventually(t, func() bool {
		d, ok := mock.Peek()
		next = d
		return ok
	}, 5*time.Second, time.Millisecond, "no timer was scheduled on the mock clock")
	return next
}

// WaitForTimerIn blocks until the next pending timer on the mock clock fires
// exactly d from now
func WaitForTimerIn(t testing.TB, mock *quartz.Mock, d time.Duration) {
	t.Helper()

	require.Eventually(t, func() bool {
		next, ok := mock.Peek()
		return ok && next == d
	}, 5*time.Second, time.Millisecond, "no timer due in %v was scheduled on the mock clock", d)
}

// AdvanceToNextTimer waits for a pending timer, fires it and waits for the
// timer callbacks to complete
func AdvanceToNextTimer(ctx context.Context, t testing.TB, mock *quartz.Mock) time.Duration {
	t.Helper()

	WaitForTimer(t, mock)
	d, waiter := mock.AdvanceNext()
	waiter.MustWait(ctx)
	return d
}

// RecordingClock is a Clock whose timers fire immediately. It records every
// requested timer duration, so tests can assert exact backoff schedules
// without sleeping.
type RecordingClock struct {
	mu     sync.Mutex
	now    time.Time
	delays []time.Duration
}

// NewRecordingClock creates a recording clock starting at a fixed instant
func NewRecordingClock() *RecordingClock {
	return &RecordingClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the virtual time
func (c *RecordingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Since returns the virtual time elapsed since t
func (c *RecordingClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// NewTimer records d, advances the virtual time and returns a fired timer
func (c *RecordingClock) NewTimer(d time.Duration) types.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.delays = append(c.delays, d)
	c.now = c.now.Add(d)

	ch := make(chan time.Time, 1)
	ch <- c.now
	return &firedTimer{c: ch}
}

// Delays returns the recorded timer durations in order
func (c *RecordingClock) Delays() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.delays...)
}

type firedTimer struct {
	c chan time.Time
}

func (t *firedTimer) C() <-chan time.Time {
	return t.c
}

func (t *firedTimer) Stop() bool {
	return false
}

func (t *firedTimer) Reset(time.Duration) bool {
	return false
}
