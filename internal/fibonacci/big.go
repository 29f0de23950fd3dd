package fibonacci

import (
	"context"
	"math/big"
	"sync"
)

// BigEvaluator is the math/big counterpart of Evaluator for indices past
// MaxUint64Index. It memoizes every term up to the largest index requested,
// bounded by a maximum index (DefaultMaxBigIndex unless WithMaxIndex is set).
//
// Returned values are copies; cache entries cannot be mutated by callers.
// A BigEvaluator is safe for concurrent use.
type BigEvaluator struct {
	mu       sync.Mutex
	values   []*big.Int
	maxIndex int
	observer Observer
}

// NewBigEvaluator returns a BigEvaluator with an empty cache.
func NewBigEvaluator(opts ...Option) *BigEvaluator {
	o := buildOptions(opts)
	return &BigEvaluator{observer: o.observer, maxIndex: o.maxIndex}
}

// Name identifies the evaluator in reports and metrics.
func (e *BigEvaluator) Name() string { return "big" }

// MaxIndex returns the largest index the evaluator accepts.
func (e *BigEvaluator) MaxIndex() int { return e.maxIndex }

// Evaluate returns F(n), filling the cache up to n if needed.
//
// The context is checked periodically while filling; on cancellation the
// terms computed so far stay cached and ctx.Err() is returned.
func (e *BigEvaluator) Evaluate(ctx context.Context, n int) (*big.Int, error) {
	if n < 0 {
		return nil, negativeIndexError(n)
	}
	if n > e.maxIndex {
		return nil, IndexLimitError{Index: n, Limit: e.maxIndex}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if n < len(e.values) {
		e.observer.ObserveLookup(e.Name(), true, len(e.values))
		return new(big.Int).Set(e.values[n]), nil
	}

	err := e.fill(ctx, n)
	e.observer.ObserveLookup(e.Name(), false, len(e.values))
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(e.values[n]), nil
}

func (e *BigEvaluator) fill(ctx context.Context, n int) error {
	for k := len(e.values); k <= n; k++ {
		if k%cancellationCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if k <= 1 {
			e.values = append(e.values, big.NewInt(int64(k)))
			continue
		}
		e.values = append(e.values, new(big.Int).Add(e.values[k-1], e.values[k-2]))
	}
	return nil
}

// Len returns the number of cached entries.
func (e *BigEvaluator) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.values)
}

// Calculate implements Calculator.
func (e *BigEvaluator) Calculate(ctx context.Context, n uint64) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n > uint64(e.maxIndex) {
		return nil, IndexLimitError{Index: clampIndex(n), Limit: e.maxIndex}
	}
	return e.Evaluate(ctx, int(n))
}
