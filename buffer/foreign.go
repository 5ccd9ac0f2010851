// File: buffer/foreign.go
// Author: momentics <momentics@gmail.com>
//
// Foreign is the zero-copy view over a host-runtime byte array.
// It is the exclusive coordinator of the array's pin and global-ref
// lifecycle for as long as it is live in-process.

package buffer

import (
	"iter"
	"log/slog"
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/momentics/foreignbuf/api"
)

// Foreign exposes a foreign-owned, pinned byte array as a fixed-length
// indexable sequence. Concurrent readers are safe; writers require
// caller-supplied synchronization. Dispose is safe to call from any
// goroutine and is idempotent.
type Foreign struct {
	bridge   api.HostBridge
	ref      api.GlobalRef
	handle   api.ArrayHandle
	ptr      unsafe.Pointer
	length   int
	readOnly bool
	isCopy   bool
	disposed atomic.Bool
}

var _ api.ByteView = (*Foreign)(nil)

// Option customizes buffer construction.
type Option func(*Foreign)

// Writable marks an adopted buffer as mutable. Adoption defaults to
// read-only because the producer usually retains an interest in the
// bytes.
func Writable() Option {
	return func(f *Foreign) { f.readOnly = false }
}

// Allocate requests a brand-new foreign byte array of length n from the
// host, acquires a global reference to it and pins it for direct
// pointer access. The returned buffer is writable.
func Allocate(b api.HostBridge, n int) (*Foreign, error) {
	if b == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "nil host bridge")
	}
	if n <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "non-positive length").
			WithContext("length", n)
	}
	h, err := b.AllocByteArray(n)
	if err != nil || h == 0 {
		e := api.NewError(api.ErrCodeAllocationFailed, "host could not allocate byte array").
			WithContext("length", n)
		if err != nil {
			e = e.WithContext("cause", err.Error())
		}
		return nil, e
	}
	f, err := wrap(b, h, n)
	if err != nil {
		return nil, err
	}
	f.readOnly = false
	return f, nil
}

// Adopt wraps an existing foreign array handle, acquired from a
// producer, for zero-copy local reads. The array's length is queried
// from the host. Adopted buffers are read-only unless Writable is
// passed.
func Adopt(b api.HostBridge, h api.ArrayHandle, opts ...Option) (*Foreign, error) {
	if b == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "nil host bridge")
	}
	if h == 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "null array handle")
	}
	f, err := wrap(b, h, -1)
	if err != nil {
		return nil, err
	}
	f.readOnly = true
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// wrap performs the shared ref-then-pin sequence. n < 0 means the
// length must be queried from the host. Partially acquired resources
// are rolled back on every failure path.
func wrap(b api.HostBridge, h api.ArrayHandle, n int) (*Foreign, error) {
	ref, err := b.NewGlobalRef(h)
	if err != nil || ref == 0 {
		e := api.NewError(api.ErrCodeInvalidArgument, "could not acquire global reference")
		if err != nil {
			e = e.WithContext("cause", err.Error())
		}
		return nil, e
	}
	if n < 0 {
		n, err = b.ArrayLength(ref)
		if err != nil {
			_ = b.DeleteGlobalRef(ref)
			return nil, api.NewError(api.ErrCodeInvalidArgument, "could not query array length").
				WithContext("cause", err.Error())
		}
	}
	if n <= 0 {
		_ = b.DeleteGlobalRef(ref)
		return nil, api.NewError(api.ErrCodeInvalidArgument, "non-positive array length").
			WithContext("length", n)
	}
	ptr, isCopy, err := b.PinArray(ref)
	if err != nil || ptr == nil {
		_ = b.DeleteGlobalRef(ref)
		e := api.NewError(api.ErrCodeAllocationFailed, "could not pin array storage")
		if err != nil {
			e = e.WithContext("cause", err.Error())
		}
		return nil, e
	}
	f := &Foreign{
		bridge: b,
		ref:    ref,
		handle: h,
		ptr:    ptr,
		length: n,
		isCopy: isCopy,
	}
	// Leak guard only. Deterministic Dispose is the contract; reaching
	// this finalizer means the owner lost track of a live global ref.
	runtime.SetFinalizer(f, finalize)
	return f, nil
}

func finalize(f *Foreign) {
	if f.disposed.Load() {
		return
	}
	slog.Warn("foreignbuf: reclaiming leaked buffer in finalizer, Dispose was never called",
		"length", f.length, "readOnly", f.readOnly)
	_ = f.dispose(api.CommitAndRelease)
}

// Len returns the fixed element count.
func (f *Foreign) Len() int { return f.length }

// ReadOnly reports whether SetAt is permitted.
func (f *Foreign) ReadOnly() bool { return f.readOnly }

// PinnedCopy reports whether the host pinned a private copy rather
// than the array's true backing store. When true, writes only become
// visible to the host after Commit or a committing disposal.
func (f *Foreign) PinnedCopy() bool { return f.isCopy }

// At returns the byte at index i via direct pointer dereference.
func (f *Foreign) At(i int) (byte, error) {
	if f.disposed.Load() {
		return 0, api.ErrDisposed
	}
	if i < 0 || i >= f.length {
		return 0, api.ErrIndexOutOfRange
	}
	return *(*byte)(unsafe.Add(f.ptr, i)), nil
}

// SetAt stores v at index i.
func (f *Foreign) SetAt(i int, v byte) error {
	if f.disposed.Load() {
		return api.ErrDisposed
	}
	if f.readOnly {
		return api.ErrReadOnly
	}
	if i < 0 || i >= f.length {
		return api.ErrIndexOutOfRange
	}
	*(*byte)(unsafe.Add(f.ptr, i)) = v
	return nil
}

// IndexOf returns the first index holding v, or -1 when absent.
// O(Len) scan. A disposed buffer fails with ErrDisposed so a stale
// scan is never mistaken for a miss.
func (f *Foreign) IndexOf(v byte) (int, error) {
	if f.disposed.Load() {
		return -1, api.ErrDisposed
	}
	for i := 0; i < f.length; i++ {
		if *(*byte)(unsafe.Add(f.ptr, i)) == v {
			return i, nil
		}
	}
	return -1, nil
}

// Contains reports whether some index holds v.
func (f *Foreign) Contains(v byte) (bool, error) {
	i, err := f.IndexOf(v)
	return i >= 0, err
}

// CopyOut bulk-copies up to min(Len, len(dst)-off) bytes into dst
// starting at off, in one pass, and returns the count copied. This is
// the only sanctioned copy; use it when data must outlive the buffer.
func (f *Foreign) CopyOut(dst []byte, off int) (int, error) {
	if f.disposed.Load() {
		return 0, api.ErrDisposed
	}
	if off < 0 || off > len(dst) {
		return 0, api.ErrIndexOutOfRange
	}
	n := f.length
	if room := len(dst) - off; n > room {
		n = room
	}
	if n == 0 {
		return 0, nil
	}
	copy(dst[off:off+n], unsafe.Slice((*byte)(f.ptr), f.length)[:n])
	return n, nil
}

// Cursor returns a fresh forward-only cursor positioned before the
// first element. Each call yields an independent cursor.
func (f *Foreign) Cursor() *Cursor {
	return &Cursor{src: f, pos: -1}
}

// All returns an index/value iterator over the live buffer. Iteration
// stops early if the buffer is disposed mid-range; range-over-func has
// no error channel, so callers that must observe use-after-dispose use
// Cursor or At, which surface ErrDisposed.
func (f *Foreign) All() iter.Seq2[int, byte] {
	return func(yield func(int, byte) bool) {
		for i := 0; i < f.length; i++ {
			if f.disposed.Load() {
				return
			}
			if !yield(i, *(*byte)(unsafe.Add(f.ptr, i))) {
				return
			}
		}
	}
}

// Handle returns the foreign array handle so a producer can requeue
// the array host-side without this buffer being disposed first. The
// handle is borrowed; ownership of pin and ref stays here.
func (f *Foreign) Handle() (api.ArrayHandle, error) {
	if f.disposed.Load() {
		return 0, api.ErrDisposed
	}
	return f.handle, nil
}

// Pointer borrows the pinned base address and length for handing to a
// foreign-code consumer expecting a plain address + size. The pointer
// is valid only until disposal and must not be retained past it.
func (f *Foreign) Pointer() (unsafe.Pointer, int, error) {
	if f.disposed.Load() {
		return nil, 0, api.ErrDisposed
	}
	return f.ptr, f.length, nil
}

// Commit writes pinned storage back to the host (a no-op unless the
// host pinned a private copy) while keeping the buffer live and pinned.
func (f *Foreign) Commit() error {
	if f.disposed.Load() {
		return api.ErrDisposed
	}
	return f.bridge.UnpinArray(f.ref, f.ptr, api.Commit)
}

// Dispose unpins the array in the default committing mode and releases
// the global reference. Idempotent; repeated calls are no-ops.
func (f *Foreign) Dispose() error {
	return f.dispose(api.CommitAndRelease)
}

// DisposeMode disposes with explicit release-mode control. Only the
// releasing modes are accepted; Commit keeps the pin and therefore
// cannot end the lifecycle.
func (f *Foreign) DisposeMode(mode api.ReleaseMode) error {
	if mode != api.CommitAndRelease && mode != api.Abort {
		return api.NewError(api.ErrCodeInvalidArgument, "disposal requires a releasing mode").
			WithContext("mode", mode.String())
	}
	return f.dispose(mode)
}

func (f *Foreign) dispose(mode api.ReleaseMode) error {
	if !f.disposed.CompareAndSwap(false, true) {
		return nil
	}
	runtime.SetFinalizer(f, nil)
	err := f.bridge.UnpinArray(f.ref, f.ptr, mode)
	if derr := f.bridge.DeleteGlobalRef(f.ref); err == nil {
		err = derr
	}
	f.ptr = nil
	return err
}

// Disposed reports whether the buffer has been disposed.
func (f *Foreign) Disposed() bool { return f.disposed.Load() }
