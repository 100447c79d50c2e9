// Package sysmon reads host resource usage and the memory ceilings that
// bound how large a computation the process may admit.
package sysmon

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats is one host snapshot. Fields the host would not report stay zero.
type Stats struct {
	CPUPercent     float64
	MemPercent     float64
	AvailableBytes uint64
	TotalBytes     uint64
}

// Sample reads host CPU and memory usage. CPU usage is measured since the
// previous call, so the first sample of a process may read 0.
func Sample(ctx context.Context) Stats {
	var s Stats
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) == 1 {
		s.CPUPercent = pcts[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm != nil {
		s.MemPercent = vm.UsedPercent
		s.AvailableBytes = vm.Available
		s.TotalBytes = vm.Total
	}
	return s
}

// AvailableMemory is the memory the host can allocate without swapping,
// or 0 when unknown.
func AvailableMemory() uint64 {
	vm, err := mem.VirtualMemory()
	if err != nil || vm == nil {
		return 0
	}
	return vm.Available
}
