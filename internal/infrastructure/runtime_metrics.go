package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics records a Go runtime snapshot at the end of a run
type RuntimeMetrics struct {
	goroutines   metric.Int64Gauge
	heapAlloc    metric.Int64Gauge
	totalAlloc   metric.Int64Gauge
	memorySystem metric.Int64Gauge
	gcCount      metric.Int64Gauge
	gcPause      metric.Float64Histogram
	uptime       metric.Float64Gauge

	startTime time.Time
}

// RuntimeStats is one snapshot taken by RuntimeMetrics.Record
type RuntimeStats struct {
	Goroutines   int64
	HeapAlloc    int64
	TotalAlloc   int64
	MemorySystem int64
	GCCount      uint32
	LastGCPause  time.Duration
	Uptime       time.Duration
}

// NewRuntimeMetrics creates the runtime instruments on meter
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	goroutines, err := meter.Int64Gauge(
		"hrreport.runtime.goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, err
	}

	heapAlloc, err := meter.Int64Gauge(
		"hrreport.runtime.heap_alloc",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	totalAlloc, err := meter.Int64Gauge(
		"hrreport.runtime.total_alloc",
		metric.WithDescription("Cumulative bytes allocated for heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	memorySystem, err := meter.Int64Gauge(
		"hrreport.runtime.memory_system",
		metric.WithDescription("Bytes of memory obtained from the OS"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCount, err := meter.Int64Gauge(
		"hrreport.runtime.gc_count",
		metric.WithDescription("Completed GC cycles"),
	)
	if err != nil {
		return nil, err
	}

	gcPause, err := meter.Float64Histogram(
		"hrreport.runtime.gc_pause",
		metric.WithDescription("Most recent GC pause in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	uptime, err := meter.Float64Gauge(
		"hrreport.runtime.uptime",
		metric.WithDescription("Seconds since the metrics were created"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RuntimeMetrics{
		goroutines:   goroutines,
		heapAlloc:    heapAlloc,
		totalAlloc:   totalAlloc,
		memorySystem: memorySystem,
		gcCount:      gcCount,
		gcPause:      gcPause,
		uptime:       uptime,
		startTime:    time.Now(),
	}, nil
}

// Record reads the runtime memory statistics and records them
func (rm *RuntimeMetrics) Record(ctx context.Context) RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := RuntimeStats{
		Goroutines:   int64(runtime.NumGoroutine()),
		HeapAlloc:    int64(memStats.HeapAlloc),
		TotalAlloc:   int64(memStats.TotalAlloc),
		MemorySystem: int64(memStats.Sys),
		GCCount:      memStats.NumGC,
		LastGCPause:  time.Duration(memStats.PauseNs[(memStats.NumGC+255)%256]),
		Uptime:       time.Since(rm.startTime),
	}

	rm.goroutines.Record(ctx, stats.Goroutines)
	rm.heapAlloc.Record(ctx, stats.HeapAlloc)
	rm.totalAlloc.Record(ctx, stats.TotalAlloc)
	rm.memorySystem.Record(ctx, stats.MemorySystem)
	rm.gcCount.Record(ctx, int64(stats.GCCount))
	rm.uptime.Record(ctx, stats.Uptime.Seconds())

	// Record GC pause only if there was a collection
	if stats.GCCount > 0 {
		rm.gcPause.Record(ctx, stats.LastGCPause.Seconds())
	}

	return stats
}
