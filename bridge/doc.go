// Package bridge
// Author: momentics <momentics@gmail.com>
//
// HostBridge implementations.
//
// Inproc is a process-local host runtime with a real global-ref table,
// pin accounting and (on Linux) mmap-backed array storage; it gives
// examples, benchmarks and embedders without a foreign runtime a full
// lifecycle to run against. Native resolves the interop primitives
// from an embedder-supplied shared library at runtime via purego,
// without cgo.
package bridge
