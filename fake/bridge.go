// Package fake
// Author: momentics <momentics@gmail.com>
//
// Counting, fault-injecting fakes of the api contracts for testing.

package fake

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/momentics/foreignbuf/api"
)

type fakeArray struct {
	data []byte
	refs int
}

type fakePin struct {
	handle api.ArrayHandle
	// private non-nil when the pin handed out a copy instead of the
	// backing store; committed back per release mode.
	private []byte
}

// Bridge is an in-memory api.HostBridge that counts every primitive
// call and detects lifecycle misuse (double release, unpin without
// pin). Fault injection flags force individual primitives to fail.
type Bridge struct {
	mu sync.Mutex

	// CopyOnPin makes PinArray hand out a private copy, reporting
	// isCopy=true, so release-mode write-back paths can be exercised.
	CopyOnPin bool

	FailAlloc bool
	FailRef   bool
	FailPin   bool

	arrays map[api.ArrayHandle]*fakeArray
	refs   map[api.GlobalRef]api.ArrayHandle
	pins   map[unsafe.Pointer]*fakePin
	nextID uintptr

	allocs   int
	refCalls int
	pinCalls int
	unpins   int
	releases int
	commits  int
}

var _ api.HostBridge = (*Bridge)(nil)

// NewBridge returns an empty fake host.
func NewBridge() *Bridge {
	return &Bridge{
		arrays: make(map[api.ArrayHandle]*fakeArray),
		refs:   make(map[api.GlobalRef]api.ArrayHandle),
		pins:   make(map[unsafe.Pointer]*fakePin),
		nextID: 1,
	}
}

// NewArray seeds a producer-side array with the given contents and
// returns its handle, as if the host handed it over for adoption.
func (b *Bridge) NewArray(data []byte) api.ArrayHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	h := api.ArrayHandle(b.nextID)
	b.nextID++
	b.arrays[h] = &fakeArray{data: stored}
	return h
}

// ArrayBytes returns a snapshot of the host-visible array contents.
func (b *Bridge) ArrayBytes(h api.ArrayHandle) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	arr, ok := b.arrays[h]
	if !ok {
		return nil
	}
	out := make([]byte, len(arr.data))
	copy(out, arr.data)
	return out
}

// AllocByteArray implements api.HostBridge.
func (b *Bridge) AllocByteArray(n int) (api.ArrayHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allocs++
	if b.FailAlloc {
		return 0, errors.New("fake: allocation refused")
	}
	if n <= 0 {
		return 0, errors.New("fake: non-positive length")
	}
	h := api.ArrayHandle(b.nextID)
	b.nextID++
	b.arrays[h] = &fakeArray{data: make([]byte, n)}
	return h, nil
}

// NewGlobalRef implements api.HostBridge.
func (b *Bridge) NewGlobalRef(h api.ArrayHandle) (api.GlobalRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refCalls++
	if b.FailRef {
		return 0, errors.New("fake: global ref refused")
	}
	arr, ok := b.arrays[h]
	if !ok {
		return 0, errors.New("fake: unknown array handle")
	}
	arr.refs++
	r := api.GlobalRef(b.nextID)
	b.nextID++
	b.refs[r] = h
	return r, nil
}

// ArrayLength implements api.HostBridge.
func (b *Bridge) ArrayLength(r api.GlobalRef) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	arr, err := b.arrayFor(r)
	if err != nil {
		return 0, err
	}
	return len(arr.data), nil
}

// PinArray implements api.HostBridge.
func (b *Bridge) PinArray(r api.GlobalRef) (unsafe.Pointer, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pinCalls++
	if b.FailPin {
		return nil, false, errors.New("fake: pin refused")
	}
	arr, err := b.arrayFor(r)
	if err != nil {
		return nil, false, err
	}
	p := &fakePin{handle: b.refs[r]}
	var base []byte
	if b.CopyOnPin {
		p.private = make([]byte, len(arr.data))
		copy(p.private, arr.data)
		base = p.private
	} else {
		base = arr.data
	}
	ptr := unsafe.Pointer(&base[0])
	b.pins[ptr] = p
	return ptr, b.CopyOnPin, nil
}

// UnpinArray implements api.HostBridge.
func (b *Bridge) UnpinArray(r api.GlobalRef, ptr unsafe.Pointer, mode api.ReleaseMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if mode == api.Commit {
		b.commits++
	} else {
		b.unpins++
	}
	p, ok := b.pins[ptr]
	if !ok {
		return errors.New("fake: unpin of unknown pointer")
	}
	arr, err := b.arrayFor(r)
	if err != nil {
		return err
	}
	if p.private != nil && mode != api.Abort {
		copy(arr.data, p.private)
	}
	if mode != api.Commit {
		delete(b.pins, ptr)
	}
	return nil
}

// DeleteGlobalRef implements api.HostBridge.
func (b *Bridge) DeleteGlobalRef(r api.GlobalRef) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releases++
	h, ok := b.refs[r]
	if !ok {
		return errors.New("fake: double release of global ref")
	}
	delete(b.refs, r)
	b.arrays[h].refs--
	return nil
}

func (b *Bridge) arrayFor(r api.GlobalRef) (*fakeArray, error) {
	h, ok := b.refs[r]
	if !ok {
		return nil, errors.New("fake: invalid global ref")
	}
	return b.arrays[h], nil
}

// Allocs returns the AllocByteArray call count.
func (b *Bridge) Allocs() int { b.mu.Lock(); defer b.mu.Unlock(); return b.allocs }

// Pins returns the PinArray call count.
func (b *Bridge) Pins() int { b.mu.Lock(); defer b.mu.Unlock(); return b.pinCalls }

// Unpins returns the count of releasing UnpinArray calls.
func (b *Bridge) Unpins() int { b.mu.Lock(); defer b.mu.Unlock(); return b.unpins }

// Commits returns the count of Commit-mode UnpinArray calls.
func (b *Bridge) Commits() int { b.mu.Lock(); defer b.mu.Unlock(); return b.commits }

// Releases returns the DeleteGlobalRef call count, including rejected
// double releases.
func (b *Bridge) Releases() int { b.mu.Lock(); defer b.mu.Unlock(); return b.releases }

// LiveRefs returns the number of global refs not yet released.
func (b *Bridge) LiveRefs() int { b.mu.Lock(); defer b.mu.Unlock(); return len(b.refs) }

// LivePins returns the number of pins not yet released.
func (b *Bridge) LivePins() int { b.mu.Lock(); defer b.mu.Unlock(); return len(b.pins) }
