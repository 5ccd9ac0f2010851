//go:build !linux && !darwin

// File: bridge/native_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub for platforms without a dynamic-loading path.

package bridge

import (
	"unsafe"

	"github.com/momentics/foreignbuf/api"
)

// Native is unavailable on this platform. The type still satisfies
// api.HostBridge so cross-platform callers compile; every primitive
// reports ErrNotSupported.
type Native struct{}

var _ api.HostBridge = (*Native)(nil)

var errUnsupported = api.NewError(api.ErrCodeNotSupported, "native host bridge is not supported on this platform")

// AllocByteArray implements api.HostBridge.
func (n *Native) AllocByteArray(sz int) (api.ArrayHandle, error) { return 0, errUnsupported }

// NewGlobalRef implements api.HostBridge.
func (n *Native) NewGlobalRef(h api.ArrayHandle) (api.GlobalRef, error) { return 0, errUnsupported }

// ArrayLength implements api.HostBridge.
func (n *Native) ArrayLength(r api.GlobalRef) (int, error) { return 0, errUnsupported }

// PinArray implements api.HostBridge.
func (n *Native) PinArray(r api.GlobalRef) (unsafe.Pointer, bool, error) {
	return nil, false, errUnsupported
}

// UnpinArray implements api.HostBridge.
func (n *Native) UnpinArray(r api.GlobalRef, ptr unsafe.Pointer, mode api.ReleaseMode) error {
	return errUnsupported
}

// DeleteGlobalRef implements api.HostBridge.
func (n *Native) DeleteGlobalRef(r api.GlobalRef) error { return errUnsupported }

// NativeOption customizes library loading.
type NativeOption func(*Native)

// OpenNative reports that dynamic host loading is unsupported here.
func OpenNative(path string, opts ...NativeOption) (*Native, error) {
	return nil, api.NewError(api.ErrCodeNotSupported, "native host bridge is not supported on this platform")
}

// Close is a no-op on this platform.
func (n *Native) Close() error { return nil }
