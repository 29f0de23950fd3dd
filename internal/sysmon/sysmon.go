// Package sysmon samples system-wide CPU and memory usage for the verbose
// run report.
package sysmon

import (
	"context"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/agbru/labwork/internal/logging"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
	MemTotal   uint64  // bytes
}

// Sample collects a system-wide CPU and memory snapshot. CPU uses
// interval=0 (delta since the previous call). Fields are left at zero when
// the platform cannot report them.
func Sample(ctx context.Context) Stats {
	var s Stats
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		s.CPUPercent = pcts[0]
	}
	if vmem, err := mem.VirtualMemoryWithContext(ctx); err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
		s.MemTotal = vmem.Total
	}
	return s
}

// Fields renders the snapshot as structured log fields.
func (s Stats) Fields() []logging.Field {
	return []logging.Field{
		logging.Float64("system_cpu_percent", s.CPUPercent),
		logging.Float64("system_mem_percent", s.MemPercent),
		logging.Uint64("system_mem_total", s.MemTotal),
	}
}
