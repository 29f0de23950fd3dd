package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the escape sequences used when printing errors.
// It keeps this package independent from the ui package.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

// HandleError prints a user-facing description of err and returns the exit
// code that matches it. duration is the elapsed time of the failed operation
// and is only shown for timeouts and cancellations when non-zero.
func HandleError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}

	elapsed := ""
	if duration > 0 {
		elapsed = fmt.Sprintf(" after %s", duration)
	}

	code := ExitCodeFor(err)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(out, "%sStatus: Timeout%s. The execution limit was reached%s.\n",
			colors.Yellow(), colors.Reset(), elapsed)
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(out, "%sStatus: Canceled%s by the user%s.\n",
			colors.Yellow(), colors.Reset(), elapsed)
	default:
		fmt.Fprintf(out, "%sStatus: Failure%s. %v\n", colors.Red(), colors.Reset(), err)
	}
	return code
}
