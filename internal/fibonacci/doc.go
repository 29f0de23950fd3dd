// Package fibonacci evaluates terms of the Fibonacci sequence
// (F(0)=0, F(1)=1, F(n)=F(n-1)+F(n-2)).
//
// The central type is Evaluator, a memoized evaluator over uint64 that fills
// its cache bottom-up so every index is computed at most once for the lifetime
// of the instance. BigEvaluator applies the same scheme to math/big values for
// indices past the uint64 range, and FastDoubling provides a cache-free oracle
// used to cross-check both.
package fibonacci
