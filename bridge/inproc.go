// File: bridge/inproc.go
// Author: momentics <momentics@gmail.com>
//
// In-process host runtime emulation: byte arrays with a global-ref
// table, pin accounting and an explicit collection pass standing in
// for the foreign collector.

package bridge

import (
	"log/slog"
	"sync"
	"unsafe"

	"github.com/momentics/foreignbuf/api"
	"github.com/momentics/foreignbuf/control"
)

type hostArray struct {
	data   []byte
	mapped bool // platform-allocated outside the Go heap
	refs   int
	pins   int
}

// Inproc implements api.HostBridge against process-local storage.
// Arrays without live global refs are reclaimed by Collect, mirroring
// a foreign collector's behavior; arrays with refs or pins survive it.
type Inproc struct {
	mu      sync.Mutex
	log     *slog.Logger
	metrics *control.MetricsRegistry
	arrays  map[api.ArrayHandle]*hostArray
	refs    map[api.GlobalRef]api.ArrayHandle
	nextID  uintptr
}

var _ api.HostBridge = (*Inproc)(nil)

// InprocOption customizes bridge initialization.
type InprocOption func(*Inproc)

// WithLogger attaches a structured logger for lifecycle events.
func WithLogger(l *slog.Logger) InprocOption {
	return func(b *Inproc) { b.log = l }
}

// WithMetrics publishes primitive call counters into reg.
func WithMetrics(reg *control.MetricsRegistry) InprocOption {
	return func(b *Inproc) { b.metrics = reg }
}

// NewInproc creates an empty in-process host.
func NewInproc(opts ...InprocOption) *Inproc {
	b := &Inproc{
		log:    slog.Default(),
		arrays: make(map[api.ArrayHandle]*hostArray),
		refs:   make(map[api.GlobalRef]api.ArrayHandle),
		nextID: 1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Inproc) count(key string) {
	if b.metrics != nil {
		b.metrics.Inc(key, 1)
	}
}

// AllocByteArray implements api.HostBridge.
func (b *Inproc) AllocByteArray(n int) (api.ArrayHandle, error) {
	if n <= 0 {
		return 0, api.NewError(api.ErrCodeInvalidArgument, "non-positive array length").
			WithContext("length", n)
	}
	data, mapped, err := allocBytes(n)
	if err != nil {
		return 0, api.NewError(api.ErrCodeAllocationFailed, "backing allocation failed").
			WithContext("length", n).WithContext("cause", err.Error())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count(control.MetricAllocs)
	h := api.ArrayHandle(b.nextID)
	b.nextID++
	b.arrays[h] = &hostArray{data: data, mapped: mapped}
	return h, nil
}

// NewGlobalRef implements api.HostBridge.
func (b *Inproc) NewGlobalRef(h api.ArrayHandle) (api.GlobalRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	arr, ok := b.arrays[h]
	if !ok {
		return 0, api.NewError(api.ErrCodeInvalidArgument, "unknown array handle")
	}
	b.count(control.MetricRefsAcquired)
	arr.refs++
	r := api.GlobalRef(b.nextID)
	b.nextID++
	b.refs[r] = h
	return r, nil
}

// ArrayLength implements api.HostBridge.
func (b *Inproc) ArrayLength(r api.GlobalRef) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	arr, err := b.arrayFor(r)
	if err != nil {
		return 0, err
	}
	return len(arr.data), nil
}

// PinArray implements api.HostBridge. Storage is never moved, so the
// pin always aliases the true backing store (isCopy is false).
func (b *Inproc) PinArray(r api.GlobalRef) (unsafe.Pointer, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	arr, err := b.arrayFor(r)
	if err != nil {
		return nil, false, err
	}
	b.count(control.MetricPins)
	arr.pins++
	return unsafe.Pointer(&arr.data[0]), false, nil
}

// UnpinArray implements api.HostBridge. Commit mode is a write-back
// only and keeps the pin; the backing store is aliased directly so
// there is nothing to copy.
func (b *Inproc) UnpinArray(r api.GlobalRef, ptr unsafe.Pointer, mode api.ReleaseMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	arr, err := b.arrayFor(r)
	if err != nil {
		return err
	}
	if ptr != unsafe.Pointer(&arr.data[0]) {
		return api.NewError(api.ErrCodeInvalidArgument, "unpin pointer does not match pinned storage")
	}
	if mode == api.Commit {
		return nil
	}
	if arr.pins == 0 {
		return api.NewError(api.ErrCodeInternal, "unpin without matching pin")
	}
	b.count(control.MetricUnpins)
	arr.pins--
	return nil
}

// DeleteGlobalRef implements api.HostBridge. Releasing while still
// pinned is reported and refused, since the pin guarantees would be
// silently violated otherwise.
func (b *Inproc) DeleteGlobalRef(r api.GlobalRef) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	h, ok := b.refs[r]
	if !ok {
		return api.NewError(api.ErrCodeInvalidArgument, "double release of global ref")
	}
	arr := b.arrays[h]
	if arr.pins > 0 {
		b.log.Warn("inproc: global ref released while array still pinned",
			"handle", uintptr(h), "pins", arr.pins)
		return api.NewError(api.ErrCodeInternal, "ref released while pinned")
	}
	b.count(control.MetricRefsReleased)
	delete(b.refs, r)
	arr.refs--
	return nil
}

// Collect reclaims arrays with no live global refs and no pins,
// standing in for the host collector. It returns the number of arrays
// freed.
func (b *Inproc) Collect() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	freed := 0
	for h, arr := range b.arrays {
		if arr.refs > 0 || arr.pins > 0 {
			continue
		}
		if arr.mapped {
			if err := freeBytes(arr.data); err != nil {
				b.log.Warn("inproc: failed to unmap array storage", "error", err)
			}
		}
		delete(b.arrays, h)
		freed++
	}
	return freed
}

// Live returns the number of arrays currently tracked.
func (b *Inproc) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.arrays)
}

func (b *Inproc) arrayFor(r api.GlobalRef) (*hostArray, error) {
	h, ok := b.refs[r]
	if !ok {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "invalid global ref")
	}
	return b.arrays[h], nil
}
