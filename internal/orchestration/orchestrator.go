package orchestration

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/sequence"
)

// ProgressBufferMultiplier defines the buffer size multiplier for the progress
// channel. A larger buffer reduces the likelihood of dropping updates when
// the UI is slow to consume them.
const ProgressBufferMultiplier = 5

// Task is one unit of work run by ExecuteTasks. Run must honour ctx and
// report progress through the callback.
type Task struct {
	Name string
	Run  func(ctx context.Context, progress sequence.ProgressCallback) (*big.Int, error)
}

// ExecuteTasks runs tasks concurrently and collects their results in the
// order of tasks. Progress is forwarded to progressReporter; updates are
// dropped rather than blocking a task when the reporter lags. A failing
// task does not cancel the others.
func ExecuteTasks(ctx context.Context, tasks []Task, progressReporter ProgressReporter, out io.Writer) []TaskResult {
	var g errgroup.Group
	results := make([]TaskResult, len(tasks))
	progressChan := make(chan ProgressUpdate, len(tasks)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go progressReporter.DisplayProgress(&displayWg, progressChan, len(tasks), out)

	for i, task := range tasks {
		g.Go(func() error {
			report := func(p float64) {
				select {
				case progressChan <- ProgressUpdate{TaskIndex: i, Value: p}:
				default:
				}
			}
			startTime := time.Now()
			value, err := task.Run(ctx, report)
			results[i] = TaskResult{Name: task.Name, Value: value, Duration: time.Since(startTime), Err: err}
			return nil
		})
	}

	g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

// RunSequence computes the full sequence for req as a single task with
// progress reporting.
func RunSequence(ctx context.Context, engine *sequence.Engine, req sequence.Request, reporter ProgressReporter, out io.Writer) (sequence.Result, TaskResult) {
	var seq sequence.Result
	results := ExecuteTasks(ctx, []Task{{
		Name: EngineTaskName,
		Run: func(ctx context.Context, progress sequence.ProgressCallback) (*big.Int, error) {
			res, err := engine.WithProgress(progress).Compute(ctx, req)
			if err != nil {
				return nil, err
			}
			seq = res
			return res.Last(), nil
		},
	}}, reporter, out)
	return seq, results[0]
}

// Verification is the outcome of VerifyLastTerm.
type Verification struct {
	// Sequence is the engine's result; empty when the engine failed.
	Sequence sequence.Result
	// Results holds one entry per task: the engine first, then fast
	// doubling.
	Results []TaskResult
}

// Task names used by VerifyLastTerm.
const (
	EngineTaskName   = "Sequence engine"
	DoublingTaskName = "Fast doubling"
)

// VerifyLastTerm computes the full sequence with engine and, concurrently,
// a(n) alone with fast doubling. AnalyzeVerification compares the two.
func VerifyLastTerm(ctx context.Context, engine *sequence.Engine, req sequence.Request, reporter ProgressReporter, out io.Writer) Verification {
	var seq sequence.Result
	tasks := []Task{
		{
			Name: EngineTaskName,
			Run: func(ctx context.Context, progress sequence.ProgressCallback) (*big.Int, error) {
				res, err := engine.WithProgress(progress).Compute(ctx, req)
				if err != nil {
					return nil, err
				}
				seq = res
				return res.Last(), nil
			},
		},
		{
			Name: DoublingTaskName,
			Run: func(ctx context.Context, progress sequence.ProgressCallback) (*big.Int, error) {
				return sequence.Term(ctx, uint64(req.N()), req.StartX(), req.StartY(), sequence.TermOptions{Progress: progress})
			},
		},
	}
	results := ExecuteTasks(ctx, tasks, reporter, out)
	return Verification{Sequence: seq, Results: results}
}

// AnalyzeVerification presents the verification table and returns the exit
// code: success when every task agrees, ExitErrorMismatch when two
// successful tasks disagree, and the first error's code when a task
// failed.
func AnalyzeVerification(results []TaskResult, presenter ResultPresenter, errHandler ErrorHandler, out io.Writer) int {
	sorted := append([]TaskResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if (sorted[i].Err == nil) != (sorted[j].Err == nil) {
			return sorted[i].Err == nil
		}
		return sorted[i].Duration < sorted[j].Duration
	})

	presenter.PresentVerificationTable(sorted, out)

	var reference *big.Int
	for _, res := range sorted {
		if res.Err != nil {
			fmt.Fprintf(out, "\nVerification Status: Failure. %s did not complete.\n", res.Name)
			return errHandler.HandleError(res.Err, res.Duration, out)
		}
		if reference == nil {
			reference = res.Value
			continue
		}
		if res.Value.Cmp(reference) != 0 {
			fmt.Fprintf(out, "\nVerification Status: CRITICAL ERROR! The last term differs between tasks.\n")
			return apperrors.ExitErrorMismatch
		}
	}
	if reference == nil {
		fmt.Fprintf(out, "\nVerification Status: Failure. Nothing was computed.\n")
		return apperrors.ExitErrorGeneric
	}

	fmt.Fprintf(out, "\nVerification Status: Success. The last term is consistent.\n")
	return apperrors.ExitSuccess
}
