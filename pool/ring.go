// File: pool/ring.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Lock-free fixed-capacity ring used as the pool's free list.
// Single-producer/single-consumer per side is sufficient there; the
// pool serializes multi-producer access around it.

package pool

import "sync/atomic"

// Ring is a lock-free fixed-capacity ring buffer (power-of-two size).
type Ring[T any] struct {
	data []T
	mask uint64
	head uint64
	tail uint64
	_    [64]byte // Padding for hot/cold separation
}

// NewRing allocates a ring sized to the next power of two >= capacity.
func NewRing[T any](capacity int) *Ring[T] {
	size := nextPow2(uint64(capacity))
	return &Ring[T]{
		data: make([]T, size),
		mask: size - 1,
	}
}

// Push adds an item; returns false if full.
func (r *Ring[T]) Push(val T) bool {
	head := atomic.LoadUint64(&r.head)
	tail := atomic.LoadUint64(&r.tail)
	if (tail - head) == uint64(len(r.data)) {
		return false
	}
	r.data[tail&r.mask] = val
	atomic.AddUint64(&r.tail, 1)
	return true
}

// Pop removes and returns (item, ok); ok==false if empty.
func (r *Ring[T]) Pop() (res T, ok bool) {
	head := atomic.LoadUint64(&r.head)
	tail := atomic.LoadUint64(&r.tail)
	if head == tail {
		return res, false
	}
	res = r.data[head&r.mask]
	atomic.AddUint64(&r.head, 1)
	return res, true
}

// Len returns the number of items currently held.
func (r *Ring[T]) Len() int {
	head := atomic.LoadUint64(&r.head)
	tail := atomic.LoadUint64(&r.tail)
	return int(tail - head)
}

// Cap returns the ring capacity.
func (r *Ring[T]) Cap() int { return len(r.data) }

func nextPow2(v uint64) uint64 {
	if v < 2 {
		return 2
	}
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	return v + 1
}
