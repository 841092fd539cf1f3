package collector

import (
	"runtime"
)

type MockMemStatsReader struct{}

func (m *MockMemStatsReader) ReadMemStats(ms *runtime.MemStats) {
	*ms = runtime.MemStats{
		HeapAlloc:     5000,
		NumGC:         20000,
		GCCPUFraction: 0.1,
	}
}
