package util

import (
	"fmt"
	"runtime"
)

const bytesPerMB = 1024 * 1024

// HeapStats is the process memory view reported by the health check.
type HeapStats struct {
	AllocMB uint64
	SysMB   uint64
	NumGC   uint32
}

func ReadHeapStats() HeapStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return HeapStats{
		AllocMB: m.Alloc / bytesPerMB,
		SysMB:   m.Sys / bytesPerMB,
		NumGC:   m.NumGC,
	}
}

func (h HeapStats) String() string {
	return fmt.Sprintf("%d MB heap, %d MB sys, %d gc", h.AllocMB, h.SysMB, h.NumGC)
}
