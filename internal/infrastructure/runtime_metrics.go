package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// StoreSizer reports the on-disk size of the record store.
type StoreSizer func() (lsm, vlog int64)

// RuntimeMetrics records process and record store gauges
type RuntimeMetrics struct {
	goroutines    metric.Int64Gauge
	heapAlloc     metric.Int64Gauge
	heapSys       metric.Int64Gauge
	gcPause       metric.Float64Histogram
	processUptime metric.Float64Gauge
	storeBytes    metric.Int64Gauge
}

// NewRuntimeMetrics creates the runtime instruments on meter
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	var (
		m   RuntimeMetrics
		err error
	)

	gauges := []struct {
		dst  *metric.Int64Gauge
		name string
		desc string
		unit string
	}{
		{&m.goroutines, "runtime_goroutines", "Number of active goroutines", ""},
		{&m.heapAlloc, "runtime_heap_alloc_bytes", "Bytes of allocated heap objects", "By"},
		{&m.heapSys, "runtime_heap_sys_bytes", "Heap memory obtained from the OS", "By"},
		{&m.storeBytes, "store_size_bytes", "Record store size on disk by table kind", "By"},
	}
	for _, g := range gauges {
		opts := []metric.Int64GaugeOption{metric.WithDescription(g.desc)}
		if g.unit != "" {
			opts = append(opts, metric.WithUnit(g.unit))
		}
		if *g.dst, err = meter.Int64Gauge(g.name, opts...); err != nil {
			return nil, err
		}
	}

	m.gcPause, err = meter.Float64Histogram(
		"runtime_gc_pause_seconds",
		metric.WithDescription("Most recent garbage collection pause"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.processUptime, err = meter.Float64Gauge(
		"process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// RuntimeStats is one snapshot of the process and record store
type RuntimeStats struct {
	Goroutines     int           `json:"goroutines"`
	HeapAlloc      uint64        `json:"heap_alloc_bytes"`
	HeapSys        uint64        `json:"heap_sys_bytes"`
	GCCount        uint32        `json:"gc_count"`
	LastGCPause    time.Duration `json:"last_gc_pause_ns"`
	CPUCount       int           `json:"cpu_count"`
	Uptime         time.Duration `json:"uptime_ns"`
	StoreLSMBytes  int64         `json:"store_lsm_bytes"`
	StoreVLogBytes int64         `json:"store_vlog_bytes"`
	GoVersion      string        `json:"go_version"`
	OS             string        `json:"os"`
	Arch           string        `json:"arch"`
	Timestamp      time.Time     `json:"timestamp"`
}

// RuntimeCollector snapshots runtime stats, on demand or on an interval, and
// records them when metrics are configured.
type RuntimeCollector struct {
	metrics   *RuntimeMetrics
	sizer     StoreSizer
	startTime time.Time
	interval  time.Duration

	mu   sync.Mutex
	last *RuntimeStats
}

// NewRuntimeCollector creates a collector. meter and sizer may be nil.
func NewRuntimeCollector(meter metric.Meter, sizer StoreSizer, interval time.Duration) (*RuntimeCollector, error) {
	c := &RuntimeCollector{
		sizer:     sizer,
		startTime: time.Now(),
		interval:  interval,
	}
	if meter != nil {
		m, err := NewRuntimeMetrics(meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
		}
		c.metrics = m
	}
	return c, nil
}

// Collect takes a fresh snapshot and records it
func (c *RuntimeCollector) Collect(ctx context.Context) *RuntimeStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	stats := &RuntimeStats{
		Goroutines:  runtime.NumGoroutine(),
		HeapAlloc:   ms.HeapAlloc,
		HeapSys:     ms.HeapSys,
		GCCount:     ms.NumGC,
		LastGCPause: time.Duration(ms.PauseNs[(ms.NumGC+255)%256]),
		CPUCount:    runtime.NumCPU(),
		Uptime:      time.Since(c.startTime),
		GoVersion:   runtime.Version(),
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		Timestamp:   time.Now(),
	}
	if c.sizer != nil {
		stats.StoreLSMBytes, stats.StoreVLogBytes = c.sizer()
	}

	if m := c.metrics; m != nil {
		m.goroutines.Record(ctx, int64(stats.Goroutines))
		m.heapAlloc.Record(ctx, int64(stats.HeapAlloc))
		m.heapSys.Record(ctx, int64(stats.HeapSys))
		m.processUptime.Record(ctx, stats.Uptime.Seconds())
		m.storeBytes.Record(ctx, stats.StoreLSMBytes, metric.WithAttributes(attribute.String("kind", "lsm")))
		m.storeBytes.Record(ctx, stats.StoreVLogBytes, metric.WithAttributes(attribute.String("kind", "vlog")))
		if ms.NumGC > 0 {
			m.gcPause.Record(ctx, stats.LastGCPause.Seconds())
		}
	}

	c.mu.Lock()
	c.last = stats
	c.mu.Unlock()
	return stats
}

// Last returns the most recent snapshot, collecting one if none exists yet
func (c *RuntimeCollector) Last(ctx context.Context) *RuntimeStats {
	c.mu.Lock()
	last := c.last
	c.mu.Unlock()
	if last == nil {
		return c.Collect(ctx)
	}
	return last
}

// StartTime is when the collector was created
func (c *RuntimeCollector) StartTime() time.Time { return c.startTime }

// Run collects on every interval tick until ctx is done
func (c *RuntimeCollector) Run(ctx context.Context) error {
	if c.interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.Collect(ctx)
	for {
		select {
		case <-ticker.C:
			c.Collect(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}
