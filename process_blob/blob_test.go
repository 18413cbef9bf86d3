package process_blob

import (
	"testing"

	"memedit/process"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessBlobRegions(t *testing.T) {
	blob := NewProcessBlob(42).
		AddRegion(0x3000, []byte{1, 2, 3}).
		AddUnreadableRegion(0x2000, 0x100).
		AddRegion(0x1000, []byte{9})

	regions, err := blob.ListReadableRegions(42)
	require.NoError(t, err)
	assert.Equal(t, []process.MemoryRegion{
		{Start: 0x1000, Size: 1},
		{Start: 0x3000, Size: 3},
	}, regions)

	_, err = blob.ListReadableRegions(43)
	assert.ErrorIs(t, err, process.ErrProcessUnavailable)

	blob.SetDenied(true)
	_, err = blob.ListReadableRegions(42)
	assert.ErrorIs(t, err, process.ErrAccessDenied)
	_, err = blob.Open(42, process.ReadOnly)
	assert.ErrorIs(t, err, process.ErrAccessDenied)
}

func TestProcessBlobReadAt(t *testing.T) {
	blob := NewProcessBlob(1).
		AddRegion(0x1000, []byte{1, 2, 3, 4}).
		AddUnreadableRegion(0x2000, 16)

	h, err := blob.Open(1, process.ReadOnly)
	require.NoError(t, err)
	defer h.Close()

	data, err := h.ReadAt(0x1002, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 4}, data, "reads stop at the region end")

	_, err = h.ReadAt(0x1004, 1)
	assert.ErrorIs(t, err, process.ErrReadFault)

	_, err = h.ReadAt(0x2000, 4)
	assert.ErrorIs(t, err, process.ErrReadFault)

	assert.Equal(t, 3, blob.Reads())
	assert.Equal(t, 2, blob.Faults())
}

func TestProcessBlobWriteAt(t *testing.T) {
	blob := NewProcessBlob(1).AddRegion(0x1000, make([]byte, 8))

	ro, err := blob.Open(1, process.ReadOnly)
	require.NoError(t, err)
	_, err = ro.WriteAt(0x1000, []byte{1})
	assert.ErrorIs(t, err, process.ErrWriteFailure)
	require.NoError(t, ro.Close())

	rw, err := blob.Open(1, process.ReadWrite)
	require.NoError(t, err)

	n, err := rw.WriteAt(0x1006, []byte{0xAA, 0xBB, 0xCC})
	require.NoError(t, err)
	assert.Equal(t, 2, n, "writes stop at the region end")

	blob.SetWriteLimit(1)
	n, err = rw.WriteAt(0x1000, []byte{0x11, 0x22})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, ok := blob.Bytes(0x1000, 8)
	require.True(t, ok)
	assert.Equal(t, []byte{0x11, 0, 0, 0, 0, 0, 0xAA, 0xBB}, got)

	_, ok = blob.Bytes(0x1004, 8)
	assert.False(t, ok)

	require.NoError(t, rw.Close())
}

func TestProcessBlobHandleLifecycle(t *testing.T) {
	blob := NewProcessBlob(1).AddRegion(0x1000, []byte{1})

	h, err := blob.Open(1, process.ReadOnly)
	require.NoError(t, err)
	assert.Equal(t, 1, blob.OpenHandles())

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.Equal(t, 0, blob.OpenHandles())
	assert.Equal(t, 1, blob.Opened())

	_, err = h.ReadAt(0x1000, 1)
	assert.ErrorIs(t, err, process.ErrHandleClosed)

	h, err = blob.Open(1, process.ReadOnly)
	require.NoError(t, err)
	blob.SetExited(true)
	_, err = h.ReadAt(0x1000, 1)
	assert.ErrorIs(t, err, process.ErrReadFault)
	require.NoError(t, h.Close())

	_, err = blob.Open(1, process.ReadOnly)
	assert.ErrorIs(t, err, process.ErrProcessUnavailable)
}
