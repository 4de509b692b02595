// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`
}

// CacheSnapshot reports annotation cache effectiveness.
type CacheSnapshot struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Snapshot represents the full server statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64            `json:"uptime_seconds"`
	TreeBuild     *OperationSnapshot `json:"tree_build,omitempty"`
	Analyze       *OperationSnapshot `json:"analyze,omitempty"`
	DBQuery       *OperationSnapshot `json:"db_query,omitempty"`
	Request       *OperationSnapshot `json:"request,omitempty"`
	Cache         CacheSnapshot      `json:"cache"`
}

// Operation names for the collector.
const (
	OpTreeBuild = "tree_build"
	OpAnalyze   = "analyze"
	OpDBQuery   = "db_query"
	OpRequest   = "request"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe and a nil *Collector discards everything.
type Collector struct {
	mu          sync.RWMutex
	startTime   time.Time
	ops         map[string]*OperationMetrics
	cacheHits   int64
	cacheMisses int64
	prom        *exporter
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
		prom:      newExporter(),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records timing for an operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	if c == nil {
		return
	}
	c.prom.durations.WithLabelValues(op).Observe(duration.Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// Time returns a func that records the elapsed time for op when called.
//
//	defer c.Time(metrics.OpAnalyze)()
func (c *Collector) Time(op string) func() {
	start := time.Now()
	return func() { c.RecordTiming(op, time.Since(start)) }
}

// RecordCacheHit counts an annotation cache hit.
func (c *Collector) RecordCacheHit() {
	if c == nil {
		return
	}
	c.prom.cache.WithLabelValues("hit").Inc()
	c.mu.Lock()
	c.cacheHits++
	c.mu.Unlock()
}

// RecordCacheMiss counts an annotation cache miss.
func (c *Collector) RecordCacheMiss() {
	if c == nil {
		return
	}
	c.prom.cache.WithLabelValues("miss").Inc()
	c.mu.Lock()
	c.cacheMisses++
	c.mu.Unlock()
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	return &OperationSnapshot{
		Count:       m.Count,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	cache := CacheSnapshot{Hits: c.cacheHits, Misses: c.cacheMisses}
	if total := c.cacheHits + c.cacheMisses; total > 0 {
		cache.HitRate = float64(c.cacheHits) / float64(total)
	}

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		TreeBuild:     snapshotOp(c.ops[OpTreeBuild]),
		Analyze:       snapshotOp(c.ops[OpAnalyze]),
		DBQuery:       snapshotOp(c.ops[OpDBQuery]),
		Request:       snapshotOp(c.ops[OpRequest]),
		Cache:         cache,
	}
}
