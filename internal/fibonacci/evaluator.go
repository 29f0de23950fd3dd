package fibonacci

import (
	"context"
	"math/big"
	"math/bits"
	"sync"
)

// Evaluator is a memoized Fibonacci evaluator over uint64.
//
// Its cache is the prefix values[0..len-1] with values[k] == F(k). Misses are
// filled iteratively from the end of that prefix up to the requested index, so
// each index is computed once, entries are never overwritten, and the entry
// count never decreases. Call depth stays constant regardless of n.
//
// An Evaluator is safe for concurrent use.
type Evaluator struct {
	mu       sync.Mutex
	values   []uint64
	observer Observer
}

// NewEvaluator returns an Evaluator with an empty cache.
func NewEvaluator(opts ...Option) *Evaluator {
	o := buildOptions(opts)
	return &Evaluator{observer: o.observer}
}

// Name identifies the evaluator in reports and metrics.
func (e *Evaluator) Name() string { return "memo" }

// Evaluate returns F(n).
//
// A negative n yields an apperrors.ValidationError. An n above
// MaxUint64Index yields an OverflowError; in both cases the cache is left
// untouched.
func (e *Evaluator) Evaluate(n int) (uint64, error) {
	if n < 0 {
		return 0, negativeIndexError(n)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if n < len(e.values) {
		e.observer.ObserveLookup(e.Name(), true, len(e.values))
		return e.values[n], nil
	}
	if n > MaxUint64Index {
		return 0, OverflowError{Index: n, Limit: MaxUint64Index}
	}

	e.fill(n)
	e.observer.ObserveLookup(e.Name(), false, len(e.values))
	return e.values[n], nil
}

// fill extends the cache so that it covers index n. Caller holds e.mu and
// has checked n <= MaxUint64Index.
func (e *Evaluator) fill(n int) {
	if cap(e.values) <= n {
		grown := make([]uint64, len(e.values), n+1)
		copy(grown, e.values)
		e.values = grown
	}
	for k := len(e.values); k <= n; k++ {
		if k <= 1 {
			e.values = append(e.values, uint64(k))
			continue
		}
		sum, carry := bits.Add64(e.values[k-1], e.values[k-2], 0)
		if carry != 0 {
			// Unreachable while MaxUint64Index is correct.
			panic("fibonacci: uint64 overflow below MaxUint64Index")
		}
		e.values = append(e.values, sum)
	}
}

// Cached returns F(n) if n is already in the cache, without computing it.
func (e *Evaluator) Cached(n int) (uint64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n < 0 || n >= len(e.values) {
		return 0, false
	}
	return e.values[n], true
}

// Len returns the number of cached entries.
func (e *Evaluator) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.values)
}

// Calculate implements Calculator.
func (e *Evaluator) Calculate(ctx context.Context, n uint64) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n > MaxUint64Index {
		return nil, OverflowError{Index: clampIndex(n), Limit: MaxUint64Index}
	}
	v, err := e.Evaluate(int(n))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(v), nil
}

// clampIndex converts a uint64 index to int for error reporting.
func clampIndex(n uint64) int {
	const maxInt = int(^uint(0) >> 1)
	if n > uint64(maxInt) {
		return maxInt
	}
	return int(n)
}
