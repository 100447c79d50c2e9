package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/format"
	"github.com/agbru/fibseq/internal/orchestration"
	"github.com/agbru/fibseq/internal/sysmon"
	"github.com/agbru/fibseq/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter for CLI output.
// It wraps the DisplayProgress function to provide a spinner and progress bar
// display during computations.
type CLIProgressReporter struct{}

// Verify that CLIProgressReporter implements orchestration.ProgressReporter.
var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner and progress bar for ongoing tasks.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numTasks int, out io.Writer) {
	DisplayProgress(wg, progressChan, numTasks, out)
}

// CLIColorProvider supplies the current theme's escape codes to
// apperrors.HandleCalculationError.
type CLIColorProvider struct{}

var _ apperrors.ColorProvider = CLIColorProvider{}

// Red returns the error colour.
func (CLIColorProvider) Red() string { return ui.ColorRed() }

// Yellow returns the warning colour.
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }

// Reset returns the reset sequence.
func (CLIColorProvider) Reset() string { return ui.ColorReset() }

// CLIResultPresenter implements orchestration.ResultPresenter and
// orchestration.ErrorHandler for the command line.
type CLIResultPresenter struct{}

// Verify interface compliance.
var (
	_ orchestration.ResultPresenter = CLIResultPresenter{}
	_ orchestration.ErrorHandler    = CLIResultPresenter{}
)

// PresentVerificationTable displays one row per task with its duration and
// status. Uses manual padding to correctly handle ANSI color codes.
func (CLIResultPresenter) PresentVerificationTable(results []orchestration.TaskResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Verification Summary ---\n")

	maxNameLen := len("Task")
	maxDurationLen := len("Duration")
	for _, res := range results {
		maxNameLen = max(maxNameLen, len(res.Name))
		maxDurationLen = max(maxDurationLen, len(displayDuration(res.Duration)))
	}

	fmt.Fprintf(out, "%sTask%s%s   %sDuration%s%s   %sStatus%s\n",
		ui.ColorUnderline(), ui.ColorReset(), padRight("", maxNameLen-len("Task")),
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

// HandleError handles computation errors and returns an appropriate exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleCalculationError(err, duration, out, CLIColorProvider{})
}

// DisplayMemoryStats shows memory statistics after a computation.
func DisplayMemoryStats(heapAlloc, totalAlloc uint64, numGC uint32, pauseTotalNs uint64, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Heap in use:     %s\n", format.FormatBytes(heapAlloc))
	fmt.Fprintf(out, "  Total allocated: %s\n", format.FormatBytes(totalAlloc))
	fmt.Fprintf(out, "  GC cycles:       %d\n", numGC)
	if pauseTotalNs > 0 {
		fmt.Fprintf(out, "  GC pause total:  %.2fms\n", float64(pauseTotalNs)/1e6)
	} else {
		fmt.Fprintf(out, "  GC pause total:  0ms (GC disabled)\n")
	}
}

// DisplaySystemStats shows host-wide CPU and memory usage.
func DisplaySystemStats(stats sysmon.Stats, out io.Writer) {
	fmt.Fprintf(out, "  Host CPU:        %.1f%%\n", stats.CPUPercent)
	fmt.Fprintf(out, "  Host memory:     %.1f%%", stats.MemPercent)
	if stats.TotalBytes > 0 {
		fmt.Fprintf(out, " (%s free of %s)", format.FormatBytes(stats.AvailableBytes), format.FormatBytes(stats.TotalBytes))
	}
	fmt.Fprintln(out)
}
