package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/labwork/internal/config"
	"github.com/agbru/labwork/internal/fibonacci"
	"github.com/agbru/labwork/internal/ui"
)

// PrintExecutionConfig displays the effective configuration: mode, sequence
// length, evaluator, storage and timeout.
//
// Parameters:
//   - cfg: The application configuration.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Mode %s%s%s, %s%d%s terms with the %s%s%s evaluator, timeout %s%s%s.\n",
		ui.ColorMagenta(), cfg.Mode, ui.ColorReset(),
		ui.ColorMagenta(), cfg.Count, ui.ColorReset(),
		ui.ColorGreen(), cfg.Algo, ui.ColorReset(),
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	dsn := cfg.DBDSN
	if dsn == "" {
		dsn = "in-memory"
	}
	fmt.Fprintf(out, "Storage: %s%s%s (%s), %s cache with a TTL of %s.\n",
		ui.ColorCyan(), cfg.DBDriver, ui.ColorReset(), dsn, cfg.CacheDriver, cfg.CacheTTL)
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
}

// PrintExecutionMode announces a comparison run.
//
// Parameters:
//   - calculators: The calculators that will be executed.
//   - count: The number of compared indices.
//   - out: The writer for standard output.
func PrintExecutionMode(calculators []fibonacci.Calculator, count int, out io.Writer) {
	var modeDesc string
	if len(calculators) > 1 {
		modeDesc = fmt.Sprintf("Parallel comparison of %d evaluators", len(calculators))
	} else {
		modeDesc = fmt.Sprintf("Single run of the %s%s%s evaluator",
			ui.ColorGreen(), calculators[0].Name(), ui.ColorReset())
	}
	fmt.Fprintf(out, "Execution mode: %s over F(0)..F(%d).\n", modeDesc, count-1)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
