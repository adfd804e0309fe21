package heap

import (
	"errors"
	"runtime"

	"github.com/promdump/promdump/internal/graph"
)

// ErrStatsUnavailable signals that the runtime does not expose collector
// statistics. Captures proceed with stats absent.
var ErrStatsUnavailable = errors.New("collector statistics unavailable")

// RuntimeStats reads the Go collector's counters. The collector is not
// generational, so exactly one record is reported.
type RuntimeStats struct{}

func (RuntimeStats) Collect() {
	runtime.GC()
}

func (RuntimeStats) Stats() ([]graph.GenStats, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return []graph.GenStats{{
		"collections":        uint64(ms.NumGC),
		"forced-collections": uint64(ms.NumForcedGC),
		"pause-total-ns":     ms.PauseTotalNs,
		"heap-objects":       ms.HeapObjects,
		"heap-alloc-bytes":   ms.HeapAlloc,
		"heap-sys-bytes":     ms.HeapSys,
		"next-gc-bytes":      ms.NextGC,
	}}, nil
}
