package fibonacci

import (
	"context"
	"math/big"
	"testing"
)

// FuzzGeneralizedCassini verifies the generalized Cassini identity on the
// big evaluator:
//
//	F(n+1)^2 - F(n)*F(n+2) = (-1)^n
func FuzzGeneralizedCassini(f *testing.F) {
	seeds := []uint64{0, 2, 5, 10, 50, 93, 100, 500, 1000, 5000}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, n uint64) {
		if n > 10000 {
			n %= 10000
		}

		calc := NewBigEvaluator()
		ctx := context.Background()

		fn, err := calc.Calculate(ctx, n)
		if err != nil {
			t.Fatalf("F(%d): %v", n, err)
		}
		fn1, err := calc.Calculate(ctx, n+1)
		if err != nil {
			t.Fatalf("F(%d): %v", n+1, err)
		}
		fn2, err := calc.Calculate(ctx, n+2)
		if err != nil {
			t.Fatalf("F(%d): %v", n+2, err)
		}

		fn1sq := new(big.Int).Mul(fn1, fn1)
		fnfn2 := new(big.Int).Mul(fn, fn2)
		diff := new(big.Int).Sub(fn1sq, fnfn2)

		expected := big.NewInt(1)
		if n%2 == 1 {
			expected.SetInt64(-1)
		}
		if diff.Cmp(expected) != 0 {
			t.Errorf("Generalized Cassini failed for n=%d: got %s, want %s", n, diff, expected)
		}
	})
}

// FuzzSumIdentity verifies the odd-indexed sum identity on the memoized
// evaluators:
//
//	F(1) + F(3) + ... + F(2n-1) = F(2n)
//
// Any wrong cached term makes the sum drift from F(2n).
func FuzzSumIdentity(f *testing.F) {
	seeds := []uint64{1, 2, 5, 10, 46, 50, 100, 500}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, n uint64) {
		if n < 1 {
			n = 1
		}
		if n > 2000 {
			n = n%1999 + 1
		}

		factory := NewDefaultFactory()
		name := "big"
		if 2*n <= MaxUint64Index {
			name = "memo"
		}
		calc, err := factory.Get(name)
		if err != nil {
			t.Fatalf("failed to get calculator: %v", err)
		}
		ctx := context.Background()

		sum := new(big.Int)
		for k := uint64(1); k <= 2*n-1; k += 2 {
			fk, err := calc.Calculate(ctx, k)
			if err != nil {
				t.Fatalf("F(%d): %v", k, err)
			}
			sum.Add(sum, fk)
		}

		f2n, err := calc.Calculate(ctx, 2*n)
		if err != nil {
			t.Fatalf("F(%d): %v", 2*n, err)
		}
		if sum.Cmp(f2n) != 0 {
			t.Errorf("Sum identity failed for n=%d with %s: sum=%s, F(2n)=%s", n, name, sum, f2n)
		}
	})
}

// FuzzMemoVsDoubling compares every evaluator in the default factory with
// the cache-free fast doubling oracle.
func FuzzMemoVsDoubling(f *testing.F) {
	seeds := []uint64{0, 1, 2, 10, 92, 93, 94, 100, 1000, 5000}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, n uint64) {
		if n > DefaultMaxBigIndex {
			n %= DefaultMaxBigIndex
		}
		ctx := context.Background()

		want, err := FastDoubling(ctx, n)
		if err != nil {
			t.Fatalf("FastDoubling(%d): %v", n, err)
		}
		for _, calc := range NewDefaultFactory().All() {
			if calc.Name() == "memo" && n > MaxUint64Index {
				continue
			}
			got, err := calc.Calculate(ctx, n)
			if err != nil {
				t.Fatalf("%s: F(%d): %v", calc.Name(), n, err)
			}
			if got.Cmp(want) != 0 {
				t.Errorf("%s: F(%d) disagrees with fast doubling", calc.Name(), n)
			}
		}
	})
}
