// File: buffer/cursor.go
// Author: momentics <momentics@gmail.com>
//
// Forward-only, restartable cursor over a Foreign buffer.

package buffer

import "github.com/momentics/foreignbuf/api"

// Cursor walks a Foreign buffer one byte at a time, delegating index
// reads to the buffer so every access stays bounds- and lifetime-
// checked.
//
// A fresh cursor starts before the first element: Next must be called
// (and return true) before the first Current. After Next has returned
// false the cursor is exhausted until Reset. A cursor owns nothing and
// must not outlive its buffer's disposal; cursor calls on a disposed
// buffer report ErrDisposed rather than touching stale memory.
//
// A single cursor is not safe for concurrent use.
type Cursor struct {
	src *Foreign
	pos int
}

// Next advances one position and reports whether a valid element
// exists there. It returns false exactly once per pass, after the last
// valid index, and keeps returning false (without advancing further)
// until Reset.
func (c *Cursor) Next() bool {
	if c.src.Disposed() {
		return false
	}
	if c.pos >= c.src.Len() {
		return false
	}
	c.pos++
	return c.pos < c.src.Len()
}

// Current returns the byte at the cursor position. Calling it before
// the first Next, or after Next has reported exhaustion, fails with
// ErrIndexOutOfRange; a disposed source fails with ErrDisposed.
func (c *Cursor) Current() (byte, error) {
	if c.pos < 0 {
		return 0, api.ErrIndexOutOfRange
	}
	return c.src.At(c.pos)
}

// Reset returns the cursor to its initial before-first position.
func (c *Cursor) Reset() {
	c.pos = -1
}
