package orchestration

import (
	"io"
	"math/big"
	"sync"
	"time"
)

// EvaluationResult is the outcome of running one calculator over every
// compared index. It is the shared type between orchestration and
// presentation.
type EvaluationResult struct {
	// Name is the calculator name (e.g. "memo").
	Name string
	// Values holds F(indices[i]) at position i. Entries are nil for indices
	// that failed.
	Values []*big.Int
	// Duration is the summed evaluation time across indices.
	Duration time.Duration
	// Err is the first error the calculator returned, if any.
	Err error
}

// ProgressUpdate reports the fraction of indices a calculator has finished.
type ProgressUpdate struct {
	CalculatorIndex int
	Value           float64
}

// ProgressReporter displays evaluation progress.
//
// Implementations handle the visual representation (spinners, plain text)
// while the orchestration layer coordinates the evaluations.
type ProgressReporter interface {
	// DisplayProgress consumes updates until progressChan is closed, then
	// calls wg.Done.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numCalculators int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numCalculators int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numCalculators int, out io.Writer) {
	f(wg, progressChan, numCalculators, out)
}

// NullProgressReporter drains the progress channel without displaying
// anything. Useful for quiet mode or testing.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter presents comparison results.
type ResultPresenter interface {
	// PresentComparisonTable displays one row per calculator.
	PresentComparisonTable(results []EvaluationResult, out io.Writer)
	// HandleError reports err and returns the matching exit code.
	HandleError(err error, duration time.Duration, out io.Writer) int
}
