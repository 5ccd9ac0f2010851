// Package api
// Author: momentics <momentics@gmail.com>
//
// Public contracts of the foreignbuf library.
//
// api defines the host-runtime interop boundary (HostBridge and the
// pin/unpin release modes), the safe byte-view surface exposed over
// pinned foreign memory, the frame-pool producer contract, and the
// shared error taxonomy. Implementations live in the buffer, bridge,
// fake and pool packages.
package api
