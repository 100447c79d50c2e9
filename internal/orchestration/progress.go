package orchestration

import (
	"time"

	"github.com/agbru/fibseq/internal/format"
)

// ProgressAggregator folds the updates of concurrent tasks into one
// average and a remaining-time estimate for the progress display.
type ProgressAggregator struct {
	tracker *format.Tracker
}

// NewProgressAggregator returns nil when there is nothing to track.
func NewProgressAggregator(numTasks int) *ProgressAggregator {
	if numTasks <= 0 {
		return nil
	}
	return &ProgressAggregator{tracker: format.NewTracker(numTasks)}
}

// ProgressSnapshot is the combined state after an update.
type ProgressSnapshot struct {
	Average float64
	ETA     time.Duration // 0 while unknown
}

// Update records one task's progress. Updates for unknown task indices
// leave the state unchanged.
func (a *ProgressAggregator) Update(update ProgressUpdate) ProgressSnapshot {
	avg, eta := a.tracker.Set(update.TaskIndex, update.Value)
	return ProgressSnapshot{Average: avg, ETA: eta}
}

// NumTasks returns the number of tasks being tracked.
func (a *ProgressAggregator) NumTasks() int { return a.tracker.NumTasks() }

// IsMultiTask reports whether several tasks share the display.
func (a *ProgressAggregator) IsMultiTask() bool { return a.tracker.NumTasks() > 1 }

// DrainChannel consumes progressChan until it is closed.
func DrainChannel(progressChan <-chan ProgressUpdate) {
	for range progressChan {
	}
}
