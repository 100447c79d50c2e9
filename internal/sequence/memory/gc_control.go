package memory

import (
	"math"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agbru/fibseq/internal/metrics"
)

// GCMode controls the garbage collector during a computation.
type GCMode string

const (
	GCModeAuto       GCMode = "auto"
	GCModeAggressive GCMode = "aggressive"
	GCModeDisabled   GCMode = "disabled"
)

// GCAutoThreshold is the smallest n for which auto mode suspends the
// collector. Below it the whole sequence fits in a few megabytes.
const GCAutoThreshold = 100_000

// ValidGCMode reports whether name is a known mode.
func ValidGCMode(name string) bool {
	switch GCMode(name) {
	case GCModeAuto, GCModeAggressive, GCModeDisabled:
		return true
	}
	return false
}

// suspension is process-wide: GC settings are global, so overlapping
// computations share one suspension and the last to finish restores the
// collector.
var suspension struct {
	sync.Mutex
	depth        int
	savedPercent int
	savedLimit   int64
}

// GCController decides whether a computation of index n runs with the
// collector suspended. Accumulation never frees a term before it returns,
// so collections in the middle of it only rescan a growing live heap.
type GCController struct {
	mode   GCMode
	active bool
	logger zerolog.Logger
}

// NewGCController returns the controller for mode and index n. Unknown
// modes behave like disabled.
func NewGCController(mode string, n int, logger zerolog.Logger) *GCController {
	gc := &GCController{mode: GCMode(mode), logger: logger}
	switch gc.mode {
	case GCModeAggressive:
		gc.active = true
	case GCModeAuto:
		gc.active = n >= GCAutoThreshold
	}
	return gc
}

// Active reports whether Suspend changes GC settings.
func (gc *GCController) Active() bool { return gc.active }

// Suspend turns the collector off and returns the function that turns it
// back on and reports what happened in between. limitBytes, when non-zero
// and below the current soft memory limit, becomes that limit so the
// process still collects before outgrowing the budget the computation was
// admitted under. The last resume restores the previous GOGC and limit. For an
// inactive controller both steps do nothing.
func (gc *GCController) Suspend(limitBytes uint64) (resume func() metrics.MemStats) {
	if !gc.active {
		return func() metrics.MemStats { return metrics.MemStats{} }
	}

	start := metrics.ReadMemStats()

	suspension.Lock()
	if suspension.depth == 0 {
		suspension.savedPercent = debug.SetGCPercent(-1)
		// A negative input only reads the current limit.
		suspension.savedLimit = debug.SetMemoryLimit(-1)
		if limitBytes > 0 && limitBytes < math.MaxInt64 {
			debug.SetMemoryLimit(min(int64(limitBytes), suspension.savedLimit))
		}
	}
	suspension.depth++
	suspension.Unlock()

	gc.logger.Debug().
		Str("mode", string(gc.mode)).
		Uint64("heap_alloc_bytes", start.HeapAlloc).
		Uint64("soft_limit_bytes", limitBytes).
		Msg("gc suspended")

	var once sync.Once
	var stats metrics.MemStats
	return func() metrics.MemStats {
		once.Do(func() {
			stats = metrics.Since(start)

			suspension.Lock()
			suspension.depth--
			last := suspension.depth == 0
			if last {
				debug.SetGCPercent(suspension.savedPercent)
				debug.SetMemoryLimit(suspension.savedLimit)
			}
			suspension.Unlock()
			if last {
				runtime.GC()
			}

			gc.logger.Debug().
				Str("mode", string(gc.mode)).
				Uint64("total_alloc_bytes", stats.TotalAlloc).
				Uint32("gc_cycles", stats.NumGC).
				Bool("restored", last).
				Msg("gc resumed")
		})
		return stats
	}
}
