// File: pool/framepool.go
// Author: momentics <momentics@gmail.com>
//
// FramePool: fixed population of foreign buffers cycled between a
// producer and consumers without per-frame allocation or disposal.

package pool

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/momentics/foreignbuf/api"
	"github.com/momentics/foreignbuf/buffer"
	"github.com/momentics/foreignbuf/control"
)

type config struct {
	capacity   int
	frameSize  int
	queueDepth int
	store      *control.ConfigStore
}

// Stats aggregates pool accounting.
type Stats struct {
	Population int
	Free       int
	Pending    int
	Delivered  uint64
	Dropped    uint64
	Recycled   uint64
}

// FramePool owns its buffer population. Buffers leave the pool through
// Acquire or inside delivered Frames and come back through Recycle;
// they are disposed exactly once, in Close.
type FramePool struct {
	cfg     config
	bridge  api.HostBridge
	log     *slog.Logger
	metrics *control.MetricsRegistry

	mu         sync.Mutex
	free       *Ring[*buffer.Foreign]
	population []*buffer.Foreign
	owned      map[*buffer.Foreign]struct{} // fixed after New, read without mu
	frames     chan Frame

	seq       atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
	recycled  atomic.Uint64
	closed    atomic.Bool
}

// New allocates the buffer population over the given bridge and
// returns a running pool. Partially allocated populations are rolled
// back on failure.
func New(b api.HostBridge, opts ...Option) (*FramePool, error) {
	p := &FramePool{
		bridge: b,
		log:    slog.Default(),
		cfg: config{
			capacity:  8,
			frameSize: 64 << 10,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	if b == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "nil host bridge")
	}
	if p.cfg.capacity <= 0 || p.cfg.frameSize <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "capacity and frame size must be positive").
			WithContext("capacity", p.cfg.capacity).
			WithContext("frameSize", p.cfg.frameSize)
	}
	if p.cfg.queueDepth <= 0 {
		p.cfg.queueDepth = p.cfg.capacity
	}

	p.free = NewRing[*buffer.Foreign](p.cfg.capacity)
	p.frames = make(chan Frame, p.cfg.queueDepth)
	p.population = make([]*buffer.Foreign, 0, p.cfg.capacity)
	p.owned = make(map[*buffer.Foreign]struct{}, p.cfg.capacity)
	for i := 0; i < p.cfg.capacity; i++ {
		buf, err := buffer.Allocate(b, p.cfg.frameSize)
		if err != nil {
			for _, allocated := range p.population {
				_ = allocated.Dispose()
			}
			return nil, err
		}
		p.population = append(p.population, buf)
		p.owned[buf] = struct{}{}
		p.free.Push(buf)
	}
	p.log.Info("foreignbuf: frame pool ready",
		"capacity", p.cfg.capacity, "frameSize", p.cfg.frameSize)
	return p, nil
}

// Acquire hands a free buffer to the producer for filling. Fails with
// ErrExhausted when every buffer is in flight.
func (p *FramePool) Acquire() (*buffer.Foreign, error) {
	if p.closed.Load() {
		return nil, api.ErrPoolClosed
	}
	p.mu.Lock()
	buf, ok := p.free.Pop()
	p.mu.Unlock()
	if !ok {
		return nil, api.ErrExhausted
	}
	p.count(control.MetricFramesAcquired)
	return buf, nil
}

// Deliver publishes a filled buffer to consumers as a tagged frame.
// On a full queue the frame is dropped (or, with the drop_oldest knob,
// the oldest pending frame is evicted) and its buffer returns to the
// free list; delivery never blocks the producer.
func (p *FramePool) Deliver(buf *buffer.Foreign) error {
	if p.closed.Load() {
		return api.ErrPoolClosed
	}
	if buf == nil || buf.Disposed() {
		return api.NewError(api.ErrCodeInvalidArgument, "cannot deliver a nil or disposed buffer")
	}
	if _, ok := p.owned[buf]; !ok {
		return api.NewError(api.ErrCodeInvalidArgument, "buffer does not belong to this pool")
	}
	frame := newFrame(p.seq.Add(1), buf)
	for {
		select {
		case p.frames <- frame:
			p.delivered.Add(1)
			p.count(control.MetricFramesDelivered)
			return nil
		default:
		}
		if p.cfg.store != nil && p.cfg.store.GetBool("pool.drop_oldest", false) {
			select {
			case stale := <-p.frames:
				p.dropFrame(stale)
				continue
			default:
				continue
			}
		}
		p.dropFrame(frame)
		return nil
	}
}

func (p *FramePool) dropFrame(f Frame) {
	p.dropped.Add(1)
	p.count(control.MetricFramesDropped)
	p.mu.Lock()
	ok := p.free.Push(f.Buf)
	p.mu.Unlock()
	if !ok {
		// Every owned buffer fits in the ring; a full ring means this
		// buffer is already on the free list.
		p.log.Error("foreignbuf: dropped frame buffer already free", "seq", f.Seq)
	}
}

// Frames is the consumer side: one Frame per successful Deliver, in
// order. The channel closes when the pool closes.
func (p *FramePool) Frames() <-chan Frame {
	return p.frames
}

// Recycle hands a consumed frame's buffer back for reuse. The buffer
// is not disposed; its pin and global ref stay with the pool. Buffers
// the pool does not own are rejected with ErrInvalidArgument, as is a
// recycle that would overfill the free list.
func (p *FramePool) Recycle(f Frame) error {
	if f.Buf == nil {
		return api.NewError(api.ErrCodeInvalidArgument, "recycle of nil buffer")
	}
	if _, ok := p.owned[f.Buf]; !ok {
		return api.NewError(api.ErrCodeInvalidArgument, "buffer does not belong to this pool")
	}
	if p.closed.Load() {
		// Pool is closing; Close disposes the population.
		return api.ErrPoolClosed
	}
	p.mu.Lock()
	ok := p.free.Push(f.Buf)
	p.mu.Unlock()
	if !ok {
		return api.NewError(api.ErrCodeInvalidArgument, "buffer already recycled").
			WithContext("seq", f.Seq)
	}
	p.recycled.Add(1)
	p.count(control.MetricFramesRecycled)
	return nil
}

// Stats returns a point-in-time accounting snapshot.
func (p *FramePool) Stats() Stats {
	p.mu.Lock()
	freeLen := p.free.Len()
	p.mu.Unlock()
	return Stats{
		Population: len(p.population),
		Free:       freeLen,
		Pending:    len(p.frames),
		Delivered:  p.delivered.Load(),
		Dropped:    p.dropped.Load(),
		Recycled:   p.recycled.Load(),
	}
}

// Close drains pending frames and disposes the whole population
// exactly once. Idempotent. The producer must have stopped calling
// Deliver before Close; the pool does not synchronize against an
// actively producing goroutine.
func (p *FramePool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(p.frames)
	for range p.frames {
		// Pending frames are abandoned; their buffers are disposed
		// below with the rest of the population.
	}
	var first error
	for _, buf := range p.population {
		if err := buf.Dispose(); err != nil && first == nil {
			first = err
		}
	}
	p.log.Info("foreignbuf: frame pool closed",
		"delivered", p.delivered.Load(),
		"dropped", p.dropped.Load(),
		"recycled", p.recycled.Load())
	return first
}

func (p *FramePool) count(key string) {
	if p.metrics != nil {
		p.metrics.Inc(key, 1)
	}
}
