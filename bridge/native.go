//go:build linux || darwin

// File: bridge/native.go
// Author: momentics <momentics@gmail.com>
//
// Native host bridge: resolves the interop primitives from an
// embedder-supplied shared library via purego, without cgo.
//
// The library must export six C-ABI symbols (default prefix
// "foreignbuf_", see Symbols):
//
//	uint64_t foreignbuf_alloc_byte_array(int64_t length);   // 0 on failure
//	uint64_t foreignbuf_new_global_ref(uint64_t handle);    // 0 on failure
//	int64_t  foreignbuf_array_length(uint64_t ref);         // < 0 on failure
//	void    *foreignbuf_pin_array(uint64_t ref, uint8_t *is_copy);
//	void     foreignbuf_unpin_array(uint64_t ref, void *ptr, int32_t mode);
//	void     foreignbuf_delete_global_ref(uint64_t ref);

package bridge

import (
	"log/slog"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/momentics/foreignbuf/api"
)

// Symbols names the six primitives resolved from the host library.
type Symbols struct {
	Alloc      string
	GlobalRef  string
	Length     string
	Pin        string
	Unpin      string
	ReleaseRef string
}

// DefaultSymbols returns the symbol set for the given prefix.
func DefaultSymbols(prefix string) Symbols {
	return Symbols{
		Alloc:      prefix + "alloc_byte_array",
		GlobalRef:  prefix + "new_global_ref",
		Length:     prefix + "array_length",
		Pin:        prefix + "pin_array",
		Unpin:      prefix + "unpin_array",
		ReleaseRef: prefix + "delete_global_ref",
	}
}

// Native implements api.HostBridge over a dynamically loaded host
// library. All calls are direct foreign invocations; the bridge itself
// holds no array state.
type Native struct {
	log *slog.Logger
	lib uintptr
	sym Symbols
	fns [6]uintptr
}

var _ api.HostBridge = (*Native)(nil)

// NativeOption customizes library loading.
type NativeOption func(*Native)

// WithSymbols overrides the default symbol names.
func WithSymbols(s Symbols) NativeOption {
	return func(n *Native) { n.sym = s }
}

// WithNativeLogger attaches a structured logger.
func WithNativeLogger(l *slog.Logger) NativeOption {
	return func(n *Native) { n.log = l }
}

const (
	fnAlloc = iota
	fnGlobalRef
	fnLength
	fnPin
	fnUnpin
	fnReleaseRef
)

// OpenNative loads the host library at path and resolves the interop
// primitives. The returned bridge stays valid until Close.
func OpenNative(path string, opts ...NativeOption) (*Native, error) {
	n := &Native{
		log: slog.Default(),
		sym: DefaultSymbols("foreignbuf_"),
	}
	for _, opt := range opts {
		opt(n)
	}
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "could not load host library").
			WithContext("path", path).WithContext("cause", err.Error())
	}
	n.lib = lib
	names := [6]string{
		n.sym.Alloc, n.sym.GlobalRef, n.sym.Length,
		n.sym.Pin, n.sym.Unpin, n.sym.ReleaseRef,
	}
	for i, name := range names {
		addr, err := purego.Dlsym(lib, name)
		if err != nil || addr == 0 {
			_ = purego.Dlclose(lib)
			return nil, api.NewError(api.ErrCodeNotSupported, "host library is missing a primitive").
				WithContext("symbol", name)
		}
		n.fns[i] = addr
	}
	n.log.Info("foreignbuf: native host bridge loaded", "path", path)
	return n, nil
}

// Close unloads the host library. No buffer constructed over this
// bridge may be used afterwards.
func (n *Native) Close() error {
	if n.lib == 0 {
		return nil
	}
	err := purego.Dlclose(n.lib)
	n.lib = 0
	return err
}

// AllocByteArray implements api.HostBridge.
func (n *Native) AllocByteArray(sz int) (api.ArrayHandle, error) {
	r1, _, _ := purego.SyscallN(n.fns[fnAlloc], uintptr(int64(sz)))
	if r1 == 0 {
		return 0, api.NewError(api.ErrCodeAllocationFailed, "host allocation returned null").
			WithContext("length", sz)
	}
	return api.ArrayHandle(r1), nil
}

// NewGlobalRef implements api.HostBridge.
func (n *Native) NewGlobalRef(h api.ArrayHandle) (api.GlobalRef, error) {
	r1, _, _ := purego.SyscallN(n.fns[fnGlobalRef], uintptr(h))
	if r1 == 0 {
		return 0, api.NewError(api.ErrCodeInvalidArgument, "host refused global ref")
	}
	return api.GlobalRef(r1), nil
}

// ArrayLength implements api.HostBridge.
func (n *Native) ArrayLength(r api.GlobalRef) (int, error) {
	r1, _, _ := purego.SyscallN(n.fns[fnLength], uintptr(r))
	length := int64(r1)
	if length < 0 {
		return 0, api.NewError(api.ErrCodeInvalidArgument, "host reported invalid array length")
	}
	return int(length), nil
}

// PinArray implements api.HostBridge.
func (n *Native) PinArray(r api.GlobalRef) (unsafe.Pointer, bool, error) {
	var isCopy uint8
	r1, _, _ := purego.SyscallN(n.fns[fnPin], uintptr(r), uintptr(unsafe.Pointer(&isCopy)))
	if r1 == 0 {
		return nil, false, api.NewError(api.ErrCodeAllocationFailed, "host could not pin array")
	}
	return unsafe.Pointer(r1), isCopy != 0, nil
}

// UnpinArray implements api.HostBridge.
func (n *Native) UnpinArray(r api.GlobalRef, ptr unsafe.Pointer, mode api.ReleaseMode) error {
	purego.SyscallN(n.fns[fnUnpin], uintptr(r), uintptr(ptr), uintptr(mode))
	return nil
}

// DeleteGlobalRef implements api.HostBridge.
func (n *Native) DeleteGlobalRef(r api.GlobalRef) error {
	purego.SyscallN(n.fns[fnReleaseRef], uintptr(r))
	return nil
}
