//go:build !windows

package debug

// Non-Windows variant of the memory logger. RSS comes from /proc/self/statm
// where available; zero otherwise.

import (
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// StartMemLogger launches a goroutine that logs memory stats every interval.
func StartMemLogger(interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	pageSize := uint64(os.Getpagesize())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			logger.Info("memstats",
				slog.Int("goroutines", runtime.NumGoroutine()),
				slog.Uint64("heap_alloc", ms.HeapAlloc),
				slog.Uint64("heap_inuse", ms.HeapInuse),
				slog.Uint64("heap_idle", ms.HeapIdle),
				slog.Uint64("heap_sys", ms.HeapSys),
				slog.Uint64("next_gc", ms.NextGC),
				slog.Uint64("rss", readRSS(pageSize)),
				slog.Uint64("num_gc", uint64(ms.NumGC)),
			)
		}
	}()
}

func readRSS(pageSize uint64) uint64 {
	raw, err := os.ReadFile("/proc/self/statm")
	if err != nil {
		return 0
	}
	fields := strings.Fields(string(raw))
	if len(fields) < 2 {
		return 0
	}
	pages, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return pages * pageSize
}
