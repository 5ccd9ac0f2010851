// Package pool
// Author: momentics <momentics@gmail.com>
//
// Frame-buffer pooling over foreign byte arrays.
//
// FramePool owns a fixed population of writable foreign buffers and
// cycles them through an acquire → deliver → recycle loop: a producer
// (typically a camera-frame callback) acquires a buffer, fills it
// through the pinned pointer, and delivers it; consumers receive
// uuid-tagged frames and hand the buffer back for reuse without
// disposing it. Buffers are disposed exactly once, when the pool
// closes.
package pool
