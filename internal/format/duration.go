package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration renders a computation time with a precision that
// suits its magnitude: whole microseconds or milliseconds below a second,
// millisecond-rounded seconds below a minute, whole seconds beyond.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}
