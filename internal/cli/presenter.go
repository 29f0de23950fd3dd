package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	apperrors "github.com/agbru/labwork/internal/errors"
	"github.com/agbru/labwork/internal/format"
	"github.com/agbru/labwork/internal/metrics"
	"github.com/agbru/labwork/internal/orchestration"
	"github.com/agbru/labwork/internal/sysmon"
	"github.com/agbru/labwork/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with a
// spinner and progress bar.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner and progress bar for ongoing evaluations.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numCalculators int, out io.Writer) {
	DisplayProgress(wg, progressChan, numCalculators, out)
}

// CLIResultPresenter implements orchestration.ResultPresenter for colorized
// console output.
type CLIResultPresenter struct{}

var _ orchestration.ResultPresenter = CLIResultPresenter{}

// PresentComparisonTable displays the comparison summary table with
// calculator names, durations, and status. Padding is computed on the plain
// text so ANSI color codes do not break alignment.
func (CLIResultPresenter) PresentComparisonTable(results []orchestration.EvaluationResult, out io.Writer) {
	fmt.Fprintf(out, "\n%s\n", ui.Heading("--- Comparison Summary ---"))

	maxNameLen := len("Evaluator")
	maxDurationLen := len("Duration")
	for _, res := range results {
		maxNameLen = max(maxNameLen, len(res.Name))
		maxDurationLen = max(maxDurationLen, len(displayDuration(res.Duration)))
	}

	fmt.Fprintf(out, "%sEvaluator%s%s   %sDuration%s%s   %sStatus%s\n",
		ui.ColorUnderline(), ui.ColorReset(), padRight("", maxNameLen-len("Evaluator")),
		ui.ColorUnderline(), ui.ColorReset(), padRight("", maxDurationLen-len("Duration")),
		ui.ColorUnderline(), ui.ColorReset())

	for _, res := range results {
		var status string
		if res.Err != nil {
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
		} else {
			status = fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
		}
		duration := displayDuration(res.Duration)
		fmt.Fprintf(out, "%s%s%s%s   %s%s%s%s   %s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(), padRight("", maxNameLen-len(res.Name)),
			ui.ColorYellow(), duration, ui.ColorReset(), padRight("", maxDurationLen-len(duration)),
			status)
	}
}

func displayDuration(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}

// padRight returns s followed by length spaces.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + fmt.Sprintf("%*s", length, "")
}

// HandleError reports err and returns the matching exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleError(err, duration, out, CLIColorProvider{})
}

// CLIColorProvider implements apperrors.ColorProvider with the ui theme.
type CLIColorProvider struct{}

// Red returns the ANSI code for red.
func (CLIColorProvider) Red() string { return ui.ColorRed() }

// Yellow returns the ANSI code for yellow.
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }

// Reset returns the ANSI reset code.
func (CLIColorProvider) Reset() string { return ui.ColorReset() }

// DisplayMemoryStats shows how much memory a run used.
func DisplayMemoryStats(before, after metrics.MemorySnapshot, out io.Writer) {
	allocated, gcCycles := after.Since(before)
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Heap in use:     %s\n", format.FormatBytes(after.HeapAlloc))
	fmt.Fprintf(out, "  Total allocated: %s\n", format.FormatBytes(allocated))
	fmt.Fprintf(out, "  GC cycles:       %d\n", gcCycles)
}

// DisplaySystemStats shows system-wide CPU and memory usage.
func DisplaySystemStats(s sysmon.Stats, out io.Writer) {
	fmt.Fprintf(out, "  System CPU:      %.1f%%\n", s.CPUPercent)
	fmt.Fprintf(out, "  System memory:   %.1f%% of %s\n", s.MemPercent, format.FormatBytes(s.MemTotal))
}
