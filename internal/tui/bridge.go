package tui

import (
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/labwork/internal/errors"
	"github.com/agbru/labwork/internal/orchestration"
)

// programRef lets the orchestration goroutines reach the tea.Program.
// bubbletea copies the model on every Update, so the reference lives behind
// a pointer.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

// SetProgram sets the program messages are sent to.
func (r *programRef) SetProgram(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Send forwards msg to the program. It is a no-op before SetProgram.
func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// ProgressReporter implements orchestration.ProgressReporter by forwarding
// aggregated updates to the dashboard.
type ProgressReporter struct {
	ref *programRef
}

var _ orchestration.ProgressReporter = (*ProgressReporter)(nil)

// DisplayProgress drains progressChan, sending a ProgressMsg per update and
// a ProgressDoneMsg at the end.
func (r *ProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numCalculators int, _ io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numCalculators)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}
	for update := range progressChan {
		ap := agg.Update(update)
		r.ref.Send(ProgressMsg{
			CalculatorIndex: ap.CalculatorIndex,
			Value:           ap.Value,
			AverageProgress: ap.AverageProgress,
		})
	}
	r.ref.Send(ProgressDoneMsg{})
}

// ResultPresenter implements orchestration.ResultPresenter by sending the
// results to the dashboard instead of writing them.
type ResultPresenter struct {
	ref *programRef
}

var _ orchestration.ResultPresenter = (*ResultPresenter)(nil)

// PresentComparisonTable sends the results to the dashboard.
func (p *ResultPresenter) PresentComparisonTable(results []orchestration.EvaluationResult, _ io.Writer) {
	p.ref.Send(ComparisonResultsMsg{Results: results})
}

// HandleError sends err to the dashboard and returns its exit code.
func (p *ResultPresenter) HandleError(err error, _ time.Duration, _ io.Writer) int {
	if err == nil {
		return apperrors.ExitSuccess
	}
	p.ref.Send(ErrorMsg{Err: err})
	return apperrors.ExitCodeFor(err)
}
