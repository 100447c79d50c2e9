// Package metrics measures what a computation costs in runtime memory.
package metrics

import "runtime"

// MemStats is the subset of runtime.MemStats the CLI reports. As a
// reading it is absolute; as a difference (see Since) every counter is the
// growth over the interval except HeapAlloc, which stays the live heap at
// the end.
type MemStats struct {
	HeapAlloc    uint64
	TotalAlloc   uint64
	NumGC        uint32
	PauseTotalNs uint64
}

// ReadMemStats reads the current runtime counters. It stops the world
// briefly, so call it around a computation, not inside one.
func ReadMemStats() MemStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemStats{
		HeapAlloc:    m.HeapAlloc,
		TotalAlloc:   m.TotalAlloc,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
	}
}

// Since returns what happened between before and now.
func Since(before MemStats) MemStats {
	now := ReadMemStats()
	return MemStats{
		HeapAlloc:    now.HeapAlloc,
		TotalAlloc:   now.TotalAlloc - before.TotalAlloc,
		NumGC:        now.NumGC - before.NumGC,
		PauseTotalNs: now.PauseTotalNs - before.PauseTotalNs,
	}
}
