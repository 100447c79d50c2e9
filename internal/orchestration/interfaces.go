package orchestration

import (
	"io"
	"math/big"
	"sync"
	"time"
)

// TaskResult is the outcome of one task.
type TaskResult struct {
	// Name identifies the task (e.g., "Sequence engine").
	Name string
	// Value is a(n) as computed by the task. It is nil if an error occurred.
	Value *big.Int
	// Duration is the time taken by the task.
	Duration time.Duration
	// Err contains any error that occurred during the task.
	Err error
}

// ProgressUpdate is one progress report sent by a running task.
type ProgressUpdate struct {
	// TaskIndex is the position of the task in the slice passed to
	// ExecuteTasks.
	TaskIndex int
	// Value is the completed fraction, 0.0 to 1.0.
	Value float64
}

// ProgressReporter defines the interface for displaying task progress.
// Implementations handle the visual representation of progress (spinners,
// progress bars, etc.) while the orchestration layer coordinates the
// tasks.
type ProgressReporter interface {
	// DisplayProgress consumes progressChan until it is closed and then
	// calls wg.Done. It runs in its own goroutine.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numTasks int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numTasks int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numTasks int, out io.Writer) {
	f(wg, progressChan, numTasks, out)
}

// NullProgressReporter drains the progress channel without displaying
// anything. Used in quiet mode and tests.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter presents the outcome of a verification run.
type ResultPresenter interface {
	// PresentVerificationTable displays the per-task summary.
	PresentVerificationTable(results []TaskResult, out io.Writer)
}

// ErrorHandler handles task errors and returns exit codes.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
