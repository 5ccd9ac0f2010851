//go:build linux

// File: bridge/alloc_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux array storage: anonymous private mappings outside the Go heap,
// so in-process arrays behave like genuinely foreign memory (stable
// addresses, explicit reclamation).

package bridge

import "golang.org/x/sys/unix"

func allocBytes(n int) ([]byte, bool, error) {
	data, err := unix.Mmap(-1, 0, n,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		// Fall back to the Go heap when the mapping is refused.
		return make([]byte, n), false, nil
	}
	return data[:n], true, nil
}

func freeBytes(data []byte) error {
	return unix.Munmap(data[:cap(data)])
}
