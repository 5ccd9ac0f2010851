// Package api
// Author: momentics <momentics@gmail.com>
//
// Safe byte-view surface over pinned foreign memory.
//
// A view is fixed-length by contract: there is deliberately no grow,
// insert, remove or clear surface. Element access is zero-copy; CopyOut
// is the only sanctioned copy, for data that must outlive the view.

package api

// ByteView is a bounds-checked, fixed-length random-access surface over
// a byte buffer whose storage is owned elsewhere.
type ByteView interface {
	// Len returns the element count, fixed at construction.
	Len() int

	// ReadOnly reports whether SetAt is permitted.
	ReadOnly() bool

	// At returns the byte at index i.
	At(i int) (byte, error)

	// SetAt stores v at index i. Fails with ErrReadOnly on read-only
	// views and ErrIndexOutOfRange on a bad index.
	SetAt(i int, v byte) error

	// IndexOf returns the first index holding v, or -1 when absent.
	// A disposed view fails with ErrDisposed rather than reporting a
	// false miss.
	IndexOf(v byte) (int, error)

	// Contains reports whether some index holds v.
	Contains(v byte) (bool, error)

	// CopyOut bulk-copies min(Len, len(dst)-off) bytes into dst
	// starting at off and returns the count copied.
	CopyOut(dst []byte, off int) (int, error)

	// Dispose releases the view's hold on the underlying storage.
	// Idempotent; every other method fails with ErrDisposed afterwards.
	Dispose() error
}
