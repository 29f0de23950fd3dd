//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/labwork/internal/orchestration"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the spinner.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner abstracts a terminal spinner so DisplayProgress and WithSpinner
// can be tested without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	//
	// Parameters:
	//   - suffix: The text string to display.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	*spinner.Spinner
}

func (rs realSpinner) UpdateSuffix(suffix string) {
	rs.Lock()
	rs.Suffix = suffix
	rs.Unlock()
}

var newSpinner = func(out io.Writer) Spinner {
	return realSpinner{spinner.New(spinner.CharSets[11], ProgressRefreshRate, spinner.WithWriter(out))}
}

// DisplayProgress shows a spinner with an aggregated progress bar until
// progressChan is closed, then calls wg.Done.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numCalculators int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numCalculators)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	s := newSpinner(out)
	s.UpdateSuffix(progressSuffix(0, agg))
	s.Start()
	defer s.Stop()

	for update := range progressChan {
		ap := agg.Update(update)
		s.UpdateSuffix(progressSuffix(ap.AverageProgress, agg))
	}
}

func progressSuffix(avg float64, agg *orchestration.ProgressAggregator) string {
	label := "Evaluating"
	if agg.IsMultiCalculator() {
		label = fmt.Sprintf("Comparing %d evaluators", agg.NumCalculators())
	}
	return fmt.Sprintf(" %s %s %3.0f%%", label, progressBar(avg, ProgressBarWidth), avg*100)
}

// WithSpinner runs fn while a spinner labelled msg is displayed on out.
// In quiet mode fn runs without a spinner.
func WithSpinner(out io.Writer, quiet bool, msg string, fn func() error) error {
	if quiet {
		return fn()
	}
	s := newSpinner(out)
	s.UpdateSuffix(" " + msg)
	s.Start()
	defer s.Stop()
	return fn()
}

// progressBar renders progress, clamped to [0, 1], as a bar of width cells.
func progressBar(progress float64, width int) string {
	progress = max(0, min(progress, 1))
	filled := int(progress * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
