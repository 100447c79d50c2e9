package format

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// MaxETA caps the remaining-time estimate while progress is still tiny.
const MaxETA = 24 * time.Hour

// minProgressForETA is the average progress below which no estimate is
// given; the first checkpoints say little about the total.
const minProgressForETA = 0.01

// Tracker aggregates the progress of concurrent tasks and estimates the
// remaining time. Engine progress is weighted by the cost of each addition,
// so it grows roughly linearly with wall time and the estimate can simply
// extrapolate the elapsed time.
type Tracker struct {
	mu     sync.Mutex
	values []float64
	start  time.Time
	now    func() time.Time
}

// NewTracker creates a tracker for numTasks tasks, starting the clock now.
func NewTracker(numTasks int) *Tracker {
	return newTrackerWithClock(numTasks, time.Now)
}

func newTrackerWithClock(numTasks int, now func() time.Time) *Tracker {
	return &Tracker{values: make([]float64, max(numTasks, 0)), start: now(), now: now}
}

// NumTasks returns the number of tracked tasks.
func (t *Tracker) NumTasks() int { return len(t.values) }

// Set records the progress of task index, clamped to [0, 1], and returns
// the new average with the estimate. Out-of-range indices only read.
func (t *Tracker) Set(index int, value float64) (float64, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index >= 0 && index < len(t.values) {
		t.values[index] = clamp01(value)
	}
	avg := t.averageLocked()
	return avg, t.etaLocked(avg)
}

// Average returns the mean progress across tasks, 0 without tasks.
func (t *Tracker) Average() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.averageLocked()
}

// ETA returns the estimated remaining time, 0 while unknown or done.
func (t *Tracker) ETA() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.etaLocked(t.averageLocked())
}

func (t *Tracker) averageLocked() float64 {
	if len(t.values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range t.values {
		sum += v
	}
	return sum / float64(len(t.values))
}

func (t *Tracker) etaLocked(avg float64) time.Duration {
	if avg < minProgressForETA || avg >= 1 {
		return 0
	}
	elapsed := t.now().Sub(t.start)
	eta := time.Duration(float64(elapsed) * (1 - avg) / avg)
	if eta < 0 || eta > MaxETA {
		return MaxETA
	}
	return eta
}

// FormatETA renders an estimate compactly: "< 1s", "45s", "2m30s", "1h15m".
// Zero means unknown.
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "estimating"
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		return twoUnits(int(eta/time.Minute), "m", int(eta%time.Minute/time.Second), "s")
	default:
		return twoUnits(int(eta/time.Hour), "h", int(eta%time.Hour/time.Minute), "m")
	}
}

// twoUnits renders "3h15m", dropping a zero minor part ("2h").
func twoUnits(major int, majorUnit string, minor int, minorUnit string) string {
	if minor == 0 {
		return fmt.Sprintf("%d%s", major, majorUnit)
	}
	return fmt.Sprintf("%d%s%d%s", major, majorUnit, minor, minorUnit)
}

// ProgressBar renders a bar of width cells for a fraction in [0, 1].
func ProgressBar(progress float64, width int) string {
	filled := int(clamp01(progress) * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// FormatProgressBarWithETA renders "[bar]  42.00% ETA: 1m5s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("[%s] %6.2f%% ETA: %s", ProgressBar(progress, width), clamp01(progress)*100, FormatETA(eta))
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
