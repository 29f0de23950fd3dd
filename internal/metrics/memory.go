package metrics

import (
	"runtime"

	"github.com/agbru/labwork/internal/logging"
)

// MemorySnapshot holds a point-in-time memory reading.
type MemorySnapshot struct {
	HeapAlloc   uint64 // bytes in use by the application
	Sys         uint64 // total bytes obtained from the OS
	NumGC       uint32 // completed GC cycles
	HeapObjects uint64 // allocated heap objects
	TotalAlloc  uint64 // cumulative bytes allocated
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:   m.HeapAlloc,
		Sys:         m.Sys,
		NumGC:       m.NumGC,
		HeapObjects: m.HeapObjects,
		TotalAlloc:  m.TotalAlloc,
	}
}

// Since reports how much was allocated and how many GC cycles ran between
// before and s.
func (s MemorySnapshot) Since(before MemorySnapshot) (allocated uint64, gcCycles uint32) {
	return s.TotalAlloc - before.TotalAlloc, s.NumGC - before.NumGC
}

// Fields renders the snapshot as structured log fields.
func (s MemorySnapshot) Fields() []logging.Field {
	return []logging.Field{
		logging.Uint64("heap_alloc", s.HeapAlloc),
		logging.Uint64("sys", s.Sys),
		logging.Uint64("heap_objects", s.HeapObjects),
		logging.Int("num_gc", int(s.NumGC)),
	}
}
