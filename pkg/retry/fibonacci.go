package retry

import "math"

// maxFibonacciIndex is the largest n whose Fibonacci number fits in a uint64
const maxFibonacciIndex = 93

// Fibonacci returns the nth Fibonacci number, with Fibonacci(0) = 0 and
// Fibonacci(1) = 1. Values past index 93 saturate at math.MaxUint64.
func Fibonacci(n uint) uint64 {
	if n > maxFibonacciIndex {
		return math.MaxUint64
	}

	var prev, curr uint64 = 0, 1
	if n == 0 {
		return prev
	}
	for i := uint(1); i < n; i++ {
		prev, curr = curr, prev+curr
	}
	return curr
}

// FibonacciSequence returns the first count Fibonacci numbers, starting at index 0
func FibonacciSequence(count uint) []uint64 {
	seq := make([]uint64, 0, count)
	var prev, curr uint64 = 0, 1
	for i := uint(0); i < count; i++ {
		if i > maxFibonacciIndex {
			seq = append(seq, math.MaxUint64)
			continue
		}
		seq = append(seq, prev)
		prev, curr = curr, prev+curr
	}
	return seq
}
