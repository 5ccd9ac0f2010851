//go:build !linux

// File: bridge/alloc_stub.go
// Author: momentics <momentics@gmail.com>
//
// Heap-backed array storage for platforms without the mmap path.

package bridge

func allocBytes(n int) ([]byte, bool, error) {
	return make([]byte, n), false, nil
}

func freeBytes(data []byte) error {
	return nil
}
