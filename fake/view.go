// File: fake/view.go
// Author: momentics <momentics@gmail.com>
//
// Heap-backed fake of api.ByteView for consumer-side tests that do not
// need a host bridge.

package fake

import (
	"sync"

	"github.com/momentics/foreignbuf/api"
)

// View is a fake implementation of api.ByteView over a private slice.
type View struct {
	mu       sync.Mutex
	data     []byte
	readOnly bool
	disposed bool
}

var _ api.ByteView = (*View)(nil)

// NewView creates a fake view holding a copy of data.
func NewView(data []byte, readOnly bool) *View {
	stored := make([]byte, len(data))
	copy(stored, data)
	return &View{data: stored, readOnly: readOnly}
}

// Len returns the element count.
func (v *View) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.data)
}

// ReadOnly reports whether SetAt is permitted.
func (v *View) ReadOnly() bool { return v.readOnly }

// At returns the byte at index i.
func (v *View) At(i int) (byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return 0, api.ErrDisposed
	}
	if i < 0 || i >= len(v.data) {
		return 0, api.ErrIndexOutOfRange
	}
	return v.data[i], nil
}

// SetAt stores v at index i.
func (v *View) SetAt(i int, val byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return api.ErrDisposed
	}
	if v.readOnly {
		return api.ErrReadOnly
	}
	if i < 0 || i >= len(v.data) {
		return api.ErrIndexOutOfRange
	}
	v.data[i] = val
	return nil
}

// IndexOf returns the first index holding val, or -1 when absent.
func (v *View) IndexOf(val byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return -1, api.ErrDisposed
	}
	for i, b := range v.data {
		if b == val {
			return i, nil
		}
	}
	return -1, nil
}

// Contains reports whether some index holds val.
func (v *View) Contains(val byte) (bool, error) {
	i, err := v.IndexOf(val)
	return i >= 0, err
}

// CopyOut copies the view contents into dst at off.
func (v *View) CopyOut(dst []byte, off int) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return 0, api.ErrDisposed
	}
	if off < 0 || off > len(dst) {
		return 0, api.ErrIndexOutOfRange
	}
	return copy(dst[off:], v.data), nil
}

// Dispose marks the view disposed; idempotent.
func (v *View) Dispose() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.disposed = true
	v.data = nil
	return nil
}
