package metrics

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// StartSystemMetricsCollector samples process metrics every interval until ctx is done
func StartSystemMetricsCollector(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	if logger == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		collectSystemMetrics()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				collectSystemMetrics()
			}
		}
	}()

	logger.Info("System metrics collector started", zap.Duration("interval", interval))
}

func collectSystemMetrics() {
	m := Get()
	if m == nil {
		return
	}

	m.ProcessGoroutines.Set(float64(runtime.NumGoroutine()))

	var mStats runtime.MemStats
	runtime.ReadMemStats(&mStats)

	m.ProcessMemoryBytes.WithLabelValues("heap").Set(float64(mStats.HeapAlloc))
	m.ProcessMemoryBytes.WithLabelValues("stack").Set(float64(mStats.StackInuse))
	m.ProcessMemoryBytes.WithLabelValues("sys").Set(float64(mStats.Sys))
}
