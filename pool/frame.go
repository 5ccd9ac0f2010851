// File: pool/frame.go
// Author: momentics <momentics@gmail.com>
//
// Frame metadata attached to a delivered foreign buffer.

package pool

import (
	"time"

	"github.com/google/uuid"

	"github.com/momentics/foreignbuf/api"
	"github.com/momentics/foreignbuf/buffer"
)

// Frame is one delivered buffer plus producer metadata. The buffer is
// shared by reference: consumers must treat it as read-only and must
// Recycle (never Dispose) it when done; the pool owns disposal.
type Frame struct {
	// Seq is a monotonically increasing delivery sequence number,
	// assigned by the pool. Gaps indicate drops.
	Seq uint64

	// TraceID correlates a frame across pipeline stages.
	TraceID string

	// Captured is the delivery timestamp (producer time).
	Captured time.Time

	// Buf is the pooled foreign buffer carrying the payload.
	Buf *buffer.Foreign
}

// View exposes the frame payload behind the safe read surface.
func (f Frame) View() api.ByteView { return f.Buf }

func newFrame(seq uint64, buf *buffer.Foreign) Frame {
	return Frame{
		Seq:      seq,
		TraceID:  uuid.NewString(),
		Captured: time.Now(),
		Buf:      buf,
	}
}
