package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration renders d with a unit suited to its magnitude:
// whole microseconds below a millisecond, whole milliseconds below a
// second, and time.Duration's own format rounded to the millisecond above.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return d.Round(time.Millisecond).String()
	}
}
