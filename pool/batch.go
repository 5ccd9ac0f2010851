// File: pool/batch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Frame batching for consumers that process frames in bursts rather
// than one at a time.

package pool

import (
	"sync"

	"github.com/eapache/queue"
)

// Collector accumulates delivered frames and drains them in batches.
// It is safe for one producer and one drainer running concurrently.
type Collector struct {
	mu  sync.Mutex
	q   *queue.Queue
	max int
}

// NewCollector creates a collector holding at most max frames; a
// non-positive max means unbounded.
func NewCollector(max int) *Collector {
	return &Collector{
		q:   queue.New(),
		max: max,
	}
}

// Add enqueues a frame. When the collector is at capacity the oldest
// frame is evicted and returned with ok=true so the caller can recycle
// its buffer.
func (c *Collector) Add(f Frame) (evicted Frame, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.max > 0 && c.q.Length() >= c.max {
		evicted, ok = c.q.Remove().(Frame), true
	}
	c.q.Add(f)
	return evicted, ok
}

// Drain removes and returns up to limit frames in arrival order; a
// non-positive limit drains everything.
func (c *Collector) Drain(limit int) []Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.q.Length()
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Frame, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, c.q.Remove().(Frame))
	}
	return out
}

// Len returns the number of frames currently held.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.q.Length()
}
