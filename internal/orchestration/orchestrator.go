package orchestration

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/labwork/internal/errors"
	"github.com/agbru/labwork/internal/fibonacci"
)

// ProgressBufferMultiplier sizes the progress channel relative to the number
// of calculators.
const ProgressBufferMultiplier = 5

// calcState accumulates the per-calculator outcome while tasks run.
type calcState struct {
	mu       sync.Mutex
	done     int
	duration time.Duration
	err      error
}

// ExecuteEvaluations runs every calculator over every index.
//
// One task per (calculator, index) pair is scheduled on an errgroup limited
// to workers goroutines, so each calculator instance is shared by several
// goroutines at once. Calculator errors are recorded in the results rather
// than aborting the other tasks.
//
// Parameters:
//   - ctx: The context for cancellation and deadlines.
//   - calculators: The calculators to run.
//   - indices: The indices to evaluate.
//   - workers: The maximum number of concurrent tasks (values < 1 mean 1).
//   - progressReporter: Receives per-calculator progress.
//   - out: The writer passed to the progress reporter.
//
// Returns:
//   - []EvaluationResult: One result per calculator, in input order.
func ExecuteEvaluations(ctx context.Context, calculators []fibonacci.Calculator, indices []uint64, workers int, progressReporter ProgressReporter, out io.Writer) []EvaluationResult {
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	results := make([]EvaluationResult, len(calculators))
	states := make([]*calcState, len(calculators))
	for i, calc := range calculators {
		results[i] = EvaluationResult{Name: calc.Name(), Values: make([]*big.Int, len(indices))}
		states[i] = &calcState{}
	}

	progressChan := make(chan ProgressUpdate, len(calculators)*ProgressBufferMultiplier)
	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go progressReporter.DisplayProgress(&displayWg, progressChan, len(calculators), out)

	for pos, n := range indices {
		for ci, calc := range calculators {
			g.Go(func() error {
				start := time.Now()
				v, err := calc.Calculate(ctx, n)
				elapsed := time.Since(start)

				st := states[ci]
				st.mu.Lock()
				st.duration += elapsed
				st.done++
				if err != nil && st.err == nil {
					st.err = fmt.Errorf("F(%d): %w", n, err)
				}
				progress := float64(st.done) / float64(len(indices))
				st.mu.Unlock()

				if err == nil {
					results[ci].Values[pos] = v
				}
				progressChan <- ProgressUpdate{CalculatorIndex: ci, Value: progress}
				return nil
			})
		}
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	for i, st := range states {
		results[i].Duration = st.duration
		results[i].Err = st.err
	}
	return results
}

// AnalyzeComparisonResults sorts the results (successes first, then by
// duration), presents them as a table and checks that every successful
// calculator produced the same values.
//
// Returns:
//   - int: ExitSuccess, ExitErrorMismatch, or the presenter's exit code when
//     no calculator succeeded.
func AnalyzeComparisonResults(results []EvaluationResult, indices []uint64, presenter ResultPresenter, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var reference *EvaluationResult
	var firstError error
	for i := range results {
		if results[i].Err != nil {
			if firstError == nil {
				firstError = results[i].Err
			}
			continue
		}
		if reference == nil {
			reference = &results[i]
		}
	}

	presenter.PresentComparisonTable(results, out)

	if reference == nil {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No algorithm could evaluate the requested indices.\n")
		return presenter.HandleError(firstError, 0, out)
	}

	for _, res := range results {
		if res.Err != nil {
			continue
		}
		if pos, ok := firstMismatch(reference.Values, res.Values); ok {
			fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! %s and %s disagree on F(%d).\n",
				reference.Name, res.Name, indices[pos])
			return apperrors.ExitErrorMismatch
		}
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All valid results are consistent over %d indices.\n", len(indices))
	return apperrors.ExitSuccess
}

func firstMismatch(a, b []*big.Int) (int, bool) {
	for i := range a {
		if i >= len(b) || a[i] == nil || b[i] == nil || a[i].Cmp(b[i]) != 0 {
			return i, true
		}
	}
	return 0, len(a) != len(b)
}

// IndexRange returns the indices 0..count-1.
func IndexRange(count int) []uint64 {
	if count <= 0 {
		return nil
	}
	out := make([]uint64, count)
	for i := range out {
		out[i] = uint64(i)
	}
	return out
}
