package handlers

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/jzx17/endure/pkg/retry"
)

// Schedule renders the delay before each of the first count retries and the
// cumulative wait. Rows past the maximum duration are flagged and end the table.
func Schedule(w io.Writer, opts PolicyOptions, count uint) error {
	cfg, err := opts.Resolve()
	if err != nil {
		return err
	}
	policy, err := cfg.Apply(retry.NewPolicyBuilder()).Policy()
	if err != nil {
		return err
	}

	if maxRetries, ok := policy.MaxRetries(); ok && maxRetries < count {
		count = maxRetries
	}
	maxDuration, bounded := policy.MaxDuration()
	exceeded := color.New(color.FgYellow).SprintFunc()

	table := tablewriter.NewWriter(w)
	table.Header("Retry", "Delay", "Total")

	var total time.Duration
	for attempt := uint(1); attempt <= count; attempt++ {
		delay, err := policy.NextDelay(attempt)
		if err != nil {
			return err
		}
		if delay > math.MaxInt64-total {
			total = math.MaxInt64
		} else {
			total += delay
		}

		if bounded && total > maxDuration {
			if err := table.Append(fmt.Sprint(attempt), delay.String(),
				exceeded(fmt.Sprintf("%v > max duration %v", total, maxDuration))); err != nil {
				return err
			}
			break
		}
		if err := table.Append(fmt.Sprint(attempt), delay.String(), total.String()); err != nil {
			return err
		}
	}

	return table.Render()
}

// Fibonacci prints the first count Fibonacci numbers, one per line
func Fibonacci(w io.Writer, count uint) error {
	for i, n := range retry.FibonacciSequence(count) {
		if _, err := fmt.Fprintf(w, "%d\t%d\n", i, n); err != nil {
			return err
		}
	}
	return nil
}
