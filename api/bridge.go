// File: api/bridge.go
// Author: momentics <momentics@gmail.com>
//
// Host-runtime interop boundary: the primitive operations a foreign
// managed runtime (JVM-class host, in-process emulation, test fake)
// must provide for zero-copy byte-array access.

package api

import "unsafe"

// ArrayHandle is an opaque reference to a foreign-owned byte array,
// as handed out by the host runtime (e.g. a JNI local reference).
// A zero handle is never valid.
type ArrayHandle uintptr

// GlobalRef is an owned, strong reference into the host runtime's
// object table. While held, the referenced array is protected from
// the host collector. A zero ref is never valid.
type GlobalRef uintptr

// ReleaseMode governs write-back and unpin policy when releasing
// pinned array storage. Values follow the JNI convention.
type ReleaseMode int32

const (
	// CommitAndRelease writes back any private copy the host made at
	// pin time, then releases the pin. This is the default disposal mode.
	CommitAndRelease ReleaseMode = 0

	// Commit writes back a private copy but keeps the array pinned.
	Commit ReleaseMode = 1

	// Abort releases the pin and discards any pending write-back.
	Abort ReleaseMode = 2
)

// String returns the symbolic mode name.
func (m ReleaseMode) String() string {
	switch m {
	case CommitAndRelease:
		return "commit+release"
	case Commit:
		return "commit"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// HostBridge is the call bridge into the host runtime's array
// management primitives. All methods are synchronous and must return
// promptly; none of them retries on failure.
//
// Implementations must tolerate concurrent calls: a bridge instance is
// shared by every buffer constructed over it.
type HostBridge interface {
	// AllocByteArray allocates a new foreign byte array of n bytes and
	// returns a handle to it. A zero handle with nil error must never
	// be returned; allocation failure is reported as an error.
	AllocByteArray(n int) (ArrayHandle, error)

	// NewGlobalRef promotes an array handle to an owned strong
	// reference that survives until DeleteGlobalRef.
	NewGlobalRef(h ArrayHandle) (GlobalRef, error)

	// ArrayLength reports the element count of the referenced array.
	ArrayLength(r GlobalRef) (int, error)

	// PinArray fixes the array's backing storage at a stable address
	// and returns its base pointer. isCopy reports whether the host
	// handed out a private copy rather than the true backing store.
	// Every successful pin must be paired with exactly one UnpinArray
	// call in a releasing mode.
	PinArray(r GlobalRef) (ptr unsafe.Pointer, isCopy bool, err error)

	// UnpinArray releases (or, for Commit, only writes back) storage
	// previously returned by PinArray.
	UnpinArray(r GlobalRef, ptr unsafe.Pointer, mode ReleaseMode) error

	// DeleteGlobalRef releases a strong reference obtained from
	// NewGlobalRef. Releasing the same ref twice is undefined behavior
	// in real hosts; callers must guarantee exactly-once release.
	DeleteGlobalRef(r GlobalRef) error
}
