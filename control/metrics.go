// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for interop and pool monitoring.
// Exposes counters in a thread-safe map with dynamic registration.

package control

import (
	"sync"
	"time"
)

// Well-known counter keys published by the library.
const (
	MetricAllocs          = "bridge.allocs"
	MetricPins            = "bridge.pins"
	MetricUnpins          = "bridge.unpins"
	MetricRefsAcquired    = "bridge.refs_acquired"
	MetricRefsReleased    = "bridge.refs_released"
	MetricFramesAcquired  = "pool.frames_acquired"
	MetricFramesDelivered = "pool.frames_delivered"
	MetricFramesDropped   = "pool.frames_dropped"
	MetricFramesRecycled  = "pool.frames_recycled"
)

// MetricsRegistry holds named counters and gauges.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]int64
	gauges   map[string]any
	updated  time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]int64),
		gauges:   make(map[string]any),
	}
}

// Inc adds delta to the named counter.
func (mr *MetricsRegistry) Inc(key string, delta int64) {
	mr.mu.Lock()
	mr.counters[key] += delta
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Counter returns the current value of the named counter.
func (mr *MetricsRegistry) Counter(key string) int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.counters[key]
}

// Set sets or updates a gauge key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.gauges[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// GetSnapshot returns the latest counters and gauges as one map.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.counters)+len(mr.gauges))
	for k, v := range mr.counters {
		out[k] = v
	}
	for k, v := range mr.gauges {
		out[k] = v
	}
	return out
}

// Updated reports the time of the last registry mutation.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}
