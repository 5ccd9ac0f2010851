package buffer_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/foreignbuf/api"
	"github.com/momentics/foreignbuf/buffer"
	"github.com/momentics/foreignbuf/fake"
)

func TestAllocateRejectsNonPositiveLength(t *testing.T) {
	host := fake.NewBridge()
	for _, n := range []int{0, -1, -1000} {
		_, err := buffer.Allocate(host, n)
		assert.ErrorIs(t, err, api.ErrInvalidArgument, "length %d", n)
	}
	assert.Equal(t, 0, host.LiveRefs(), "failed construction must not leak refs")
}

func TestAllocateSurfacesHostFailure(t *testing.T) {
	host := fake.NewBridge()
	host.FailAlloc = true
	_, err := buffer.Allocate(host, 16)
	assert.ErrorIs(t, err, api.ErrAllocationFailed)
}

func TestAdoptRejectsNullHandle(t *testing.T) {
	host := fake.NewBridge()
	_, err := buffer.Adopt(host, 0)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestConstructionRollsBackOnPinFailure(t *testing.T) {
	host := fake.NewBridge()
	host.FailPin = true
	_, err := buffer.Allocate(host, 8)
	require.Error(t, err)
	assert.Equal(t, 0, host.LiveRefs(), "global ref must be rolled back when pin fails")
}

func TestFixedLength(t *testing.T) {
	host := fake.NewBridge()
	buf, err := buffer.Allocate(host, 32)
	require.NoError(t, err)
	defer buf.Dispose()

	require.Equal(t, 32, buf.Len())
	_ = buf.SetAt(5, 0xAA)
	_, _ = buf.At(5)
	_, _ = buf.IndexOf(0xAA)
	assert.Equal(t, 32, buf.Len(), "length must never change")
	assert.False(t, buf.ReadOnly())
}

func TestBoundsChecking(t *testing.T) {
	host := fake.NewBridge()
	buf, err := buffer.Allocate(host, 8)
	require.NoError(t, err)
	defer buf.Dispose()

	for _, i := range []int{-1, -100, 8, 9, 1 << 20} {
		_, err := buf.At(i)
		assert.ErrorIs(t, err, api.ErrIndexOutOfRange, "At(%d)", i)
		assert.ErrorIs(t, buf.SetAt(i, 1), api.ErrIndexOutOfRange, "SetAt(%d)", i)
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, buf.SetAt(i, byte(i)))
		v, err := buf.At(i)
		require.NoError(t, err)
		assert.Equal(t, byte(i), v)
	}
}

func TestReadOnlyEnforcement(t *testing.T) {
	host := fake.NewBridge()
	h := host.NewArray([]byte{1, 2, 3, 4})
	buf, err := buffer.Adopt(host, h)
	require.NoError(t, err)
	defer buf.Dispose()

	require.True(t, buf.ReadOnly(), "adoption defaults to read-only")
	for i := 0; i < buf.Len(); i++ {
		err := buf.SetAt(i, 0xFF)
		assert.ErrorIs(t, err, api.ErrReadOnly)
		assert.ErrorIs(t, err, api.ErrNotSupported)
		v, rerr := buf.At(i)
		require.NoError(t, rerr)
		assert.Equal(t, byte(i+1), v, "rejected write must leave the byte unchanged")
	}
}

func TestWritableAdoption(t *testing.T) {
	host := fake.NewBridge()
	h := host.NewArray(make([]byte, 4))
	buf, err := buffer.Adopt(host, h, buffer.Writable())
	require.NoError(t, err)
	defer buf.Dispose()

	require.False(t, buf.ReadOnly())
	require.NoError(t, buf.SetAt(2, 0x7E))
	v, err := buf.At(2)
	require.NoError(t, err)
	assert.Equal(t, byte(0x7E), v)
}

func TestSetAtRoundTripAllByteValues(t *testing.T) {
	host := fake.NewBridge()
	buf, err := buffer.Allocate(host, 256)
	require.NoError(t, err)
	defer buf.Dispose()

	for v := 0; v <= 255; v++ {
		require.NoError(t, buf.SetAt(v, byte(v)))
		got, err := buf.At(v)
		require.NoError(t, err)
		require.Equal(t, byte(v), got)
	}
}

func TestIndexOf(t *testing.T) {
	host := fake.NewBridge()
	buf, err := buffer.Allocate(host, 16)
	require.NoError(t, err)
	defer buf.Dispose()

	require.NoError(t, buf.SetAt(11, 0x5C))
	idx, err := buf.IndexOf(0x5C)
	require.NoError(t, err)
	assert.Equal(t, 11, idx)
	found, err := buf.Contains(0x5C)
	require.NoError(t, err)
	assert.True(t, found)

	idx, err = buf.IndexOf(0x99)
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
	found, err = buf.Contains(0x99)
	require.NoError(t, err)
	assert.False(t, found)

	// first match wins
	require.NoError(t, buf.SetAt(3, 0x5C))
	idx, err = buf.IndexOf(0x5C)
	require.NoError(t, err)
	assert.Equal(t, 3, idx)
}

func TestCopyOutFidelity(t *testing.T) {
	host := fake.NewBridge()
	h := host.NewArray([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	buf, err := buffer.Adopt(host, h)
	require.NoError(t, err)
	defer buf.Dispose()

	dst := make([]byte, 6)
	n, err := buf.CopyOut(dst, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{0, 0xDE, 0xAD, 0xBE, 0xEF, 0}, dst)

	// destination shorter than the buffer: single truncated pass
	short := make([]byte, 2)
	n, err = buf.CopyOut(short, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0xDE, 0xAD}, short)

	_, err = buf.CopyOut(dst, -1)
	assert.ErrorIs(t, err, api.ErrIndexOutOfRange)
	_, err = buf.CopyOut(dst, 7)
	assert.ErrorIs(t, err, api.ErrIndexOutOfRange)
}

func TestDisposeIdempotent(t *testing.T) {
	host := fake.NewBridge()
	buf, err := buffer.Allocate(host, 8)
	require.NoError(t, err)

	require.NoError(t, buf.Dispose())
	require.NoError(t, buf.Dispose())
	require.NoError(t, buf.Dispose())

	assert.Equal(t, 1, host.Unpins(), "exactly one unpin per construction")
	assert.Equal(t, 1, host.Releases(), "exactly one ref release per construction")
	assert.Equal(t, 0, host.LiveRefs())
	assert.Equal(t, 0, host.LivePins())
}

func TestUseAfterDisposeRejected(t *testing.T) {
	host := fake.NewBridge()
	buf, err := buffer.Allocate(host, 4)
	require.NoError(t, err)
	require.NoError(t, buf.Dispose())

	_, err = buf.At(0)
	assert.ErrorIs(t, err, api.ErrDisposed)
	assert.ErrorIs(t, buf.SetAt(0, 1), api.ErrDisposed)
	_, err = buf.IndexOf(1)
	assert.ErrorIs(t, err, api.ErrDisposed)
	_, err = buf.Contains(1)
	assert.ErrorIs(t, err, api.ErrDisposed)
	_, err = buf.CopyOut(make([]byte, 4), 0)
	assert.ErrorIs(t, err, api.ErrDisposed)
	_, err = buf.Handle()
	assert.ErrorIs(t, err, api.ErrDisposed)
	_, _, err = buf.Pointer()
	assert.ErrorIs(t, err, api.ErrDisposed)
	assert.ErrorIs(t, buf.Commit(), api.ErrDisposed)
	assert.False(t, buf.Cursor().Next(), "cursor over disposed buffer must not advance")
	assert.True(t, buf.Disposed())
}

func TestDisposeModeRejectsCommit(t *testing.T) {
	host := fake.NewBridge()
	buf, err := buffer.Allocate(host, 4)
	require.NoError(t, err)
	defer buf.Dispose()

	err = buf.DisposeMode(api.Commit)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	assert.False(t, buf.Disposed(), "rejected mode must not start disposal")
}

func TestReleaseModesOnPinnedCopy(t *testing.T) {
	host := fake.NewBridge()
	host.CopyOnPin = true

	// Abort discards local writes.
	h := host.NewArray([]byte{9, 9, 9})
	buf, err := buffer.Adopt(host, h, buffer.Writable())
	require.NoError(t, err)
	require.True(t, buf.PinnedCopy())
	require.NoError(t, buf.SetAt(0, 1))
	require.NoError(t, buf.DisposeMode(api.Abort))
	assert.Equal(t, []byte{9, 9, 9}, host.ArrayBytes(h))

	// Default disposal commits local writes back to the host.
	h2 := host.NewArray([]byte{9, 9, 9})
	buf2, err := buffer.Adopt(host, h2, buffer.Writable())
	require.NoError(t, err)
	require.NoError(t, buf2.SetAt(0, 1))
	require.NoError(t, buf2.Dispose())
	assert.Equal(t, []byte{1, 9, 9}, host.ArrayBytes(h2))
}

func TestCommitWritesBackAndStaysLive(t *testing.T) {
	host := fake.NewBridge()
	host.CopyOnPin = true
	h := host.NewArray(make([]byte, 2))
	buf, err := buffer.Adopt(host, h, buffer.Writable())
	require.NoError(t, err)
	defer buf.Dispose()

	require.NoError(t, buf.SetAt(0, 0x42))
	require.NoError(t, buf.Commit())
	assert.Equal(t, []byte{0x42, 0}, host.ArrayBytes(h))
	assert.Equal(t, 1, host.Commits())
	assert.False(t, buf.Disposed())
	require.NoError(t, buf.SetAt(1, 0x43), "buffer stays writable after Commit")
}

func TestHandleBorrowForProducerHandBack(t *testing.T) {
	host := fake.NewBridge()
	h := host.NewArray([]byte{1, 2, 3})
	buf, err := buffer.Adopt(host, h)
	require.NoError(t, err)
	defer buf.Dispose()

	got, err := buf.Handle()
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.False(t, buf.Disposed(), "borrowing the handle must not dispose")
}

func TestPointerBorrow(t *testing.T) {
	host := fake.NewBridge()
	buf, err := buffer.Allocate(host, 8)
	require.NoError(t, err)
	defer buf.Dispose()

	ptr, n, err := buf.Pointer()
	require.NoError(t, err)
	assert.NotNil(t, ptr)
	assert.Equal(t, 8, n)
}

func TestAllIterator(t *testing.T) {
	host := fake.NewBridge()
	h := host.NewArray([]byte{10, 20, 30})
	buf, err := buffer.Adopt(host, h)
	require.NoError(t, err)
	defer buf.Dispose()

	var idx []int
	var vals []byte
	for i, v := range buf.All() {
		idx = append(idx, i)
		vals = append(vals, v)
	}
	assert.Equal(t, []int{0, 1, 2}, idx)
	assert.Equal(t, []byte{10, 20, 30}, vals)
}

func TestScenarioAllocateWriteScanCopyDispose(t *testing.T) {
	host := fake.NewBridge()
	buf, err := buffer.Allocate(host, 4)
	require.NoError(t, err)

	for i, v := range []byte{0x10, 0x20, 0x30, 0x40} {
		require.NoError(t, buf.SetAt(i, v))
	}
	idx, err := buf.IndexOf(0x30)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	dst := make([]byte, 4)
	n, err := buf.CopyOut(dst, 0)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	assert.Equal(t, []byte{0x10, 0x20, 0x30, 0x40}, dst)

	require.NoError(t, buf.Dispose())
	_, err = buf.At(0)
	assert.ErrorIs(t, err, api.ErrDisposed)
}

func TestScanAfterDisposeSurfacesError(t *testing.T) {
	host := fake.NewBridge()
	buf, err := buffer.Allocate(host, 4)
	require.NoError(t, err)
	require.NoError(t, buf.SetAt(2, 0x30))

	idx, err := buf.IndexOf(0x30)
	require.NoError(t, err)
	require.Equal(t, 2, idx)

	require.NoError(t, buf.Dispose())

	// A scan on a disposed buffer must fail, never report a miss for
	// a value that was present.
	idx, err = buf.IndexOf(0x30)
	assert.ErrorIs(t, err, api.ErrDisposed)
	assert.Equal(t, -1, idx)
	found, err := buf.Contains(0x30)
	assert.ErrorIs(t, err, api.ErrDisposed)
	assert.False(t, found)
}

func TestFinalizerReclaimsLeakedBuffer(t *testing.T) {
	host := fake.NewBridge()
	leak := func() {
		buf, err := buffer.Allocate(host, 16)
		require.NoError(t, err)
		_ = buf // dropped without Dispose
	}
	leak()

	deadline := time.Now().Add(2 * time.Second)
	for host.LiveRefs() != 0 && time.Now().Before(deadline) {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 0, host.LiveRefs(), "finalizer must release the leaked global ref")
	assert.Equal(t, 1, host.Unpins())
}
