package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/fibseq/internal/config"
	"github.com/agbru/fibseq/internal/format"
	"github.com/agbru/fibseq/internal/sequence"
	"github.com/agbru/fibseq/internal/ui"
)

// PrintExecutionConfig displays the request, the timeout, the environment
// and the pre-flight cost estimate.
func PrintExecutionConfig(cfg config.AppConfig, req sequence.Request, est sequence.Estimate, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Computing %sa(0..%d)%s from %s%s%s with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), req.N(), ui.ColorReset(),
		ui.ColorMagenta(), seedLabel(req), ui.ColorReset(),
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
	fmt.Fprintf(out, "Estimate: a(%d) has about %s%s%s digits; the sequence needs about %s%s%s.\n",
		req.N(),
		ui.ColorCyan(), format.FormatNumberString(fmt.Sprint(est.LastTermDigits)), ui.ColorReset(),
		ui.ColorCyan(), format.FormatBytes(est.TotalBytes), ui.ColorReset())
	if cfg.MemoryLimit != "" {
		fmt.Fprintf(out, "Memory limit: %s%s%s, GC mode: %s%s%s.\n",
			ui.ColorCyan(), format.FormatBytes(cfg.MemoryLimitBytes()), ui.ColorReset(),
			ui.ColorCyan(), cfg.GCMode, ui.ColorReset())
	}
}

func seedLabel(req sequence.Request) string {
	if req.IsStandardSeed() {
		return "the standard seeds (0, 1)"
	}
	return fmt.Sprintf("seeds (%s, %s)",
		FormatTermValue(req.StartX().String(), false), FormatTermValue(req.StartY().String(), false))
}

// PrintExecutionMode displays what the run will do.
func PrintExecutionMode(cfg config.AppConfig, out io.Writer) {
	var modeDesc string
	switch {
	case cfg.LastDigits > 0:
		modeDesc = fmt.Sprintf("Last %s%d%s digits of a(n) by modular fast doubling", ui.ColorGreen(), cfg.LastDigits, ui.ColorReset())
	case cfg.Term:
		modeDesc = fmt.Sprintf("Single term with the %sfast doubling%s algorithm", ui.ColorGreen(), ui.ColorReset())
	case cfg.Verify:
		modeDesc = "Full sequence, cross-checked against fast doubling"
	default:
		modeDesc = fmt.Sprintf("Full sequence by %siterative accumulation%s", ui.ColorGreen(), ui.ColorReset())
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", modeDesc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
