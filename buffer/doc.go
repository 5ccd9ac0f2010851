// Package buffer
// Author: momentics <momentics@gmail.com>
//
// Zero-copy views over byte arrays owned by a foreign managed runtime.
//
// Foreign wraps a host-runtime byte array behind a pinned raw pointer
// and an owned global reference, exposing bounds-checked random access,
// linear scan, bulk copy-out and forward iteration without copying the
// underlying storage. Disposal unpins the array and releases the
// reference exactly once; a finalizer guards leaked instances but
// deterministic Dispose is the contract.
package buffer
