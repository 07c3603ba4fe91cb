// Package retry provides backoff algorithm implementations
package retry

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// BackoffStrategy selects how the delay grows between retries
type BackoffStrategy int

const (
	// BackoffFixed waits the base delay before every retry
	BackoffFixed BackoffStrategy = iota
	// BackoffLinear multiplies the base delay by the retry count
	BackoffLinear
	// BackoffExponential multiplies the base delay by the square of the retry count
	BackoffExponential
	// BackoffFibonacci multiplies the base delay by the Fibonacci number of the retry count
	BackoffFibonacci
	// BackoffPolynomial multiplies the base delay by the retry count raised to the polynomial factor
	BackoffPolynomial
)

// DefaultPolynomialFactor is the exponent used by BackoffPolynomial unless configured
const DefaultPolynomialFactor = 2.0

const maxDelay = time.Duration(math.MaxInt64)

var strategyNames = map[BackoffStrategy]string{
	BackoffFixed:       "fixed",
	BackoffLinear:      "linear",
	BackoffExponential: "exponential",
	BackoffFibonacci:   "fibonacci",
	BackoffPolynomial:  "polynomial",
}

// String returns the string representation of the strategy
func (s BackoffStrategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("BackoffStrategy(%d)", int(s))
}

// Valid reports whether s is a known strategy
func (s BackoffStrategy) Valid() bool {
	_, ok := strategyNames[s]
	return ok
}

// MarshalText implements encoding.TextMarshaler
func (s BackoffStrategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, errRange("backoff strategy", int(s), "is not a valid backoff strategy")
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *BackoffStrategy) UnmarshalText(text []byte) error {
	parsed, err := ParseBackoffStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseBackoffStrategy parses a strategy name, ignoring case
func ParseBackoffStrategy(name string) (BackoffStrategy, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for strategy, candidate := range strategyNames {
		if candidate == normalized {
			return strategy, nil
		}
	}
	return 0, errRange("backoff strategy", fmt.Sprintf("%q", name), "is not one of linear, exponential, fixed, fibonacci, polynomial")
}

// Delay calculates the wait before the given retry attempt. attempt counts
// retries starting at 1; factor is only used by BackoffPolynomial. Results
// that overflow time.Duration saturate at its maximum.
func Delay(strategy BackoffStrategy, attempt uint, base time.Duration, factor float64) (time.Duration, error) {
	if attempt == 0 {
		return 0, errRange("attempt", attempt, "must be at least 1")
	}

	switch strategy {
	case BackoffFixed:
		return base, nil
	case BackoffLinear:
		return mulDuration(base, uint64(attempt)), nil
	case BackoffExponential:
		n := uint64(attempt)
		if n > math.MaxUint32 {
			return saturate(base), nil
		}
		return mulDuration(base, n*n), nil
	case BackoffFibonacci:
		return mulDuration(base, Fibonacci(attempt)), nil
	case BackoffPolynomial:
		if !(factor > 0) {
			return 0, errRange("polynomial factor", factor, "must be greater than zero")
		}
		scaled := float64(base) * math.Pow(float64(attempt), factor)
		if math.Abs(scaled) >= float64(maxDelay) {
			return saturate(base), nil
		}
		return time.Duration(scaled), nil
	default:
		return 0, errRange("backoff strategy", int(strategy), "is not a valid backoff strategy")
	}
}

// mulDuration multiplies d by n, saturating instead of overflowing
func mulDuration(d time.Duration, n uint64) time.Duration {
	if d == 0 || n == 0 {
		return 0
	}
	abs := uint64(d)
	if d < 0 {
		abs = uint64(-d)
	}
	if n > uint64(maxDelay)/abs {
		return saturate(d)
	}
	return d * time.Duration(n)
}

func saturate(d time.Duration) time.Duration {
	if d < 0 {
		return -maxDelay
	}
	return maxDelay
}
