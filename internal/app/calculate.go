package app

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/big"
	"os/signal"
	"syscall"
	"time"

	"github.com/agbru/fibseq/internal/cli"
	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/metrics"
	"github.com/agbru/fibseq/internal/orchestration"
	"github.com/agbru/fibseq/internal/sequence"
	"github.com/agbru/fibseq/internal/sysmon"
	"github.com/agbru/fibseq/internal/ui"
)

// runCalculate orchestrates the one-shot computation.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	// Setup lifecycle (timeout + signals)
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	switch {
	case a.Config.LastDigits > 0:
		return a.runLastDigits(ctx, out)
	case a.Config.Term:
		return a.runTerm(ctx, out)
	}

	presenter := cli.CLIResultPresenter{}
	errOut := a.errorOutput(out)

	req, err := sequence.Limits{MaxN: a.Config.MaxN}.ParseRequest(a.Config.N, a.Config.StartX, a.Config.StartY)
	if err != nil {
		return presenter.HandleError(err, 0, errOut)
	}

	// Skip verbose output in quiet mode
	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, req, sequence.EstimateRequest(req), out)
		cli.PrintExecutionMode(a.Config, out)
	}

	// Choose progress reporter based on quiet mode
	var progressReporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if a.Config.Quiet {
		progressOut = io.Discard
		progressReporter = orchestration.NullProgressReporter{}
	}

	before := metrics.ReadMemStats()
	engine := a.newEngine()

	var seq sequence.Result
	var elapsed time.Duration
	if a.Config.Verify {
		v := orchestration.VerifyLastTerm(ctx, engine, req, progressReporter, progressOut)
		if code := orchestration.AnalyzeVerification(v.Results, presenter, presenter, errOut); code != apperrors.ExitSuccess {
			return code
		}
		seq, elapsed = v.Sequence, v.Results[0].Duration
	} else {
		var res orchestration.TaskResult
		seq, res = orchestration.RunSequence(ctx, engine, req, progressReporter, progressOut)
		if res.Err != nil {
			return presenter.HandleError(res.Err, res.Duration, errOut)
		}
		elapsed = res.Duration
	}
	usage := metrics.Since(before)

	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
		ShowValue:  a.Config.ShowValue,
	}
	if err := cli.DisplaySequence(ctx, out, seq, req, elapsed, outputCfg); err != nil {
		return presenter.HandleError(err, elapsed, errOut)
	}
	if outputCfg.OutputFile != "" {
		if err := cli.WriteSequenceToFile(ctx, seq, req, elapsed, outputCfg.OutputFile); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving sequence: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		if !outputCfg.Quiet {
			fmt.Fprintf(out, "\n%s✓ Sequence saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), outputCfg.OutputFile, ui.ColorReset())
		}
	}
	if a.Config.Verbose {
		cli.DisplayMemoryStats(usage.HeapAlloc, usage.TotalAlloc, usage.NumGC, usage.PauseTotalNs, out)
		cli.DisplaySystemStats(sysmon.Sample(ctx), out)
	}
	return apperrors.ExitSuccess
}

// runTerm computes a(n) alone with fast doubling.
func (a *Application) runTerm(ctx context.Context, out io.Writer) int {
	presenter := cli.CLIResultPresenter{}
	errOut := a.errorOutput(out)

	req, err := sequence.Limits{MaxN: a.Config.MaxTermN}.ParseRequest(a.Config.N, a.Config.StartX, a.Config.StartY)
	if err != nil {
		return presenter.HandleError(err, 0, errOut)
	}
	if !a.Config.Quiet {
		cli.PrintExecutionMode(a.Config, out)
	}

	start := time.Now()
	term, err := a.newEngine().Term(ctx, req, sequence.TermOptions{})
	elapsed := time.Since(start)
	if err != nil {
		return presenter.HandleError(err, elapsed, errOut)
	}

	cli.DisplayTerm(out, fmt.Sprintf("a(%d)", req.N()), term, elapsed, cli.OutputConfig{
		Quiet:   a.Config.Quiet,
		Verbose: a.Config.Verbose,
	})
	return apperrors.ExitSuccess
}

// runLastDigits computes only the last K decimal digits of a(n) using
// modular arithmetic, requiring O(K) memory regardless of n.
func (a *Application) runLastDigits(ctx context.Context, out io.Writer) int {
	presenter := cli.CLIResultPresenter{}
	errOut := a.errorOutput(out)

	// O(log n) steps on K-digit residues: any int64 index is affordable.
	req, err := sequence.Limits{MaxN: math.MaxInt}.ParseRequest(a.Config.N, a.Config.StartX, a.Config.StartY)
	if err != nil {
		return presenter.HandleError(err, 0, errOut)
	}
	if err := ctx.Err(); err != nil {
		return presenter.HandleError(apperrors.FromContext(err, "last-digits", a.Config.Timeout), 0, errOut)
	}

	k := a.Config.LastDigits
	n := req.N()
	mod := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(k)), nil)

	if !a.Config.Quiet {
		fmt.Fprintf(out, "Computing last %d digits of a(%d)...\n", k, n)
	}

	start := time.Now()
	result, err := sequence.TermMod(uint64(n), req.StartX(), req.StartY(), mod)
	elapsed := time.Since(start)
	if err != nil {
		return presenter.HandleError(err, elapsed, errOut)
	}

	// Format with leading zeros to exactly k digits
	digits := fmt.Sprintf("%0*s", k, result.String())

	if a.Config.Quiet {
		fmt.Fprintln(out, digits)
	} else {
		fmt.Fprintf(out, "Last %d digits of a(%d): %s\n", k, n, digits)
		fmt.Fprintf(out, "Computed in %s\n", elapsed.Round(time.Millisecond))
	}
	return apperrors.ExitSuccess
}

// errorOutput keeps diagnostics off stdout in quiet mode so scripts only
// ever read values there.
func (a *Application) errorOutput(out io.Writer) io.Writer {
	if a.Config.Quiet {
		return a.ErrWriter
	}
	return out
}
