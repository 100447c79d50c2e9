// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplaySequence], [DisplayTerm], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatTermValue].
//
//   - Write* functions write data to files on the filesystem.
//     They handle file creation, directory setup, and error handling.
//     Examples: [WriteSequenceToFile].

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/fibseq/internal/format"
	"github.com/agbru/fibseq/internal/sequence"
	"github.com/agbru/fibseq/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the terms (empty for no file output).
	OutputFile string
	// Quiet prints bare values, one per line, and nothing else.
	Quiet bool
	// Verbose shows every term and full values.
	Verbose bool
	// ShowValue displays the terms; otherwise only the summary is shown.
	ShowValue bool
}

// FormatTermValue renders a term for the terminal. Unless verbose, values
// longer than TruncationLimit digits keep DisplayEdges digits at each end.
func FormatTermValue(s string, verbose bool) string {
	if verbose || len(s) <= TruncationLimit {
		return format.FormatNumberString(s)
	}
	short, dropped := format.TruncateDigits(s, DisplayEdges)
	return fmt.Sprintf("%s (%s digits omitted)", short, format.FormatNumberString(fmt.Sprint(dropped)))
}

// DisplaySequence prints a computed sequence. Quiet mode writes every term
// on its own line. Otherwise a summary is shown and, with ShowValue, the
// terms themselves: all of them when verbose, DisplayedTerms at each end
// otherwise.
func DisplaySequence(ctx context.Context, out io.Writer, seq sequence.Result, req sequence.Request, duration time.Duration, cfg OutputConfig) error {
	if cfg.Quiet {
		return writeTerms(ctx, out, seq)
	}

	n := seq.Len() - 1
	fmt.Fprintf(out, "\n--- Sequence ---\n")
	fmt.Fprintf(out, "Seeds:            a(0) = %s%s%s, a(1) = %s%s%s\n",
		ui.ColorCyan(), FormatTermValue(req.StartX().String(), cfg.Verbose), ui.ColorReset(),
		ui.ColorCyan(), FormatTermValue(req.StartY().String(), cfg.Verbose), ui.ColorReset())
	fmt.Fprintf(out, "Terms:            %s%s%s\n", ui.ColorGreen(), format.FormatNumberString(fmt.Sprint(seq.Len())), ui.ColorReset())
	fmt.Fprintf(out, "Digits of a(%d):  %s%s%s\n", n, ui.ColorGreen(), format.FormatNumberString(fmt.Sprint(seq.DigitCount(n))), ui.ColorReset())
	fmt.Fprintf(out, "Computation time: %s%s%s\n", ui.ColorYellow(), format.FormatExecutionDuration(duration), ui.ColorReset())

	if !cfg.ShowValue {
		fmt.Fprintf(out, "\n%sTip: use -c to display the terms.%s\n", ui.ColorMagenta(), ui.ColorReset())
		return nil
	}

	terms, err := seq.Strings(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n")
	w := bufio.NewWriter(out)
	for i, s := range terms {
		if !cfg.Verbose && len(terms) > 2*DisplayedTerms && i == DisplayedTerms {
			fmt.Fprintf(w, "  ... %s terms omitted (use -v to show all) ...\n",
				format.FormatNumberString(fmt.Sprint(len(terms)-2*DisplayedTerms)))
		}
		if !cfg.Verbose && i >= DisplayedTerms && i < len(terms)-DisplayedTerms {
			continue
		}
		fmt.Fprintf(w, "a(%d) = %s\n", i, FormatTermValue(s, cfg.Verbose))
	}
	return w.Flush()
}

// DisplayTerm prints a single value such as a(n) or a(n) mod 10^K. Quiet
// mode writes the bare value.
func DisplayTerm(out io.Writer, label string, value *big.Int, duration time.Duration, cfg OutputConfig) {
	s := value.String()
	if cfg.Quiet {
		fmt.Fprintln(out, s)
		return
	}
	fmt.Fprintf(out, "\n--- Result ---\n")
	fmt.Fprintf(out, "Digits:           %s%s%s\n", ui.ColorGreen(), format.FormatNumberString(fmt.Sprint(len(new(big.Int).Abs(value).String()))), ui.ColorReset())
	fmt.Fprintf(out, "Computation time: %s%s%s\n", ui.ColorYellow(), format.FormatExecutionDuration(duration), ui.ColorReset())
	fmt.Fprintf(out, "%s%s%s = %s\n", ui.ColorBold(), label, ui.ColorReset(), FormatTermValue(s, cfg.Verbose))
}

// WriteSequenceToFile writes a header followed by every term, one per line.
func WriteSequenceToFile(ctx context.Context, seq sequence.Result, req sequence.Request, duration time.Duration, path string) error {
	if path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	fmt.Fprintf(file, "# Generalized Fibonacci sequence\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Duration: %s\n", duration)
	fmt.Fprintf(file, "# Request: %s\n", req)
	fmt.Fprintf(file, "# Terms: %d\n", seq.Len())
	fmt.Fprintf(file, "\n")

	if err := writeTerms(ctx, file, seq); err != nil {
		file.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func writeTerms(ctx context.Context, out io.Writer, seq sequence.Result) error {
	terms, err := seq.Strings(ctx)
	if err != nil {
		return err
	}
	w := bufio.NewWriterSize(out, 64<<10)
	for _, s := range terms {
		if _, err := w.WriteString(s); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}
