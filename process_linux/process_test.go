//go:build linux

package process_linux

import (
	"context"
	"math/rand"
	"os"
	"runtime"
	"testing"
	"unsafe"

	"memedit/editor"
	"memedit/process"
	"memedit/scanvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func self() process.ProcessID {
	return process.ProcessID(os.Getpid())
}

func TestReadWriteSelf(t *testing.T) {
	buf := []byte("memedit-self-test-marker")
	addr := process.ProcessMemoryAddress(uintptr(unsafe.Pointer(&buf[0])))

	b := New()
	h, err := b.Open(self(), process.ReadWrite)
	require.NoError(t, err)
	defer h.Close()

	got, err := h.ReadAt(addr, process.ProcessMemorySize(len(buf)))
	require.NoError(t, err)
	assert.Equal(t, buf, got)

	n, err := h.WriteAt(addr, []byte("M"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte('M'), buf[0])

	runtime.KeepAlive(buf)
}

func TestReadOnlyHandleRefusesWrites(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	addr := process.ProcessMemoryAddress(uintptr(unsafe.Pointer(&buf[0])))

	h, err := New().Open(self(), process.ReadOnly)
	require.NoError(t, err)
	defer h.Close()

	_, err = h.WriteAt(addr, []byte{9})
	assert.ErrorIs(t, err, process.ErrWriteFailure)
	assert.Equal(t, byte(1), buf[0])

	runtime.KeepAlive(buf)
}

func TestReadFaultOnUnmappedAddress(t *testing.T) {
	h, err := New().Open(self(), process.ReadOnly)
	require.NoError(t, err)
	defer h.Close()

	// the zero page is never mapped
	_, err = h.ReadAt(0x10, 4)
	assert.ErrorIs(t, err, process.ErrReadFault)
}

func TestHandleClose(t *testing.T) {
	h, err := New().Open(self(), process.ReadOnly)
	require.NoError(t, err)

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	_, err = h.ReadAt(0x1000, 4)
	assert.ErrorIs(t, err, process.ErrHandleClosed)
}

func TestMissingProcess(t *testing.T) {
	b := New()

	// above the kernel's pid_max limit
	const missing process.ProcessID = 1 << 30

	_, err := b.Open(missing, process.ReadOnly)
	assert.ErrorIs(t, err, process.ErrProcessUnavailable)

	_, err = b.ListReadableRegions(missing)
	assert.ErrorIs(t, err, process.ErrProcessUnavailable)

	_, err = b.Open(0, process.ReadOnly)
	assert.ErrorIs(t, err, process.ErrProcessUnavailable)
}

func TestListReadableRegionsSelf(t *testing.T) {
	buf := make([]byte, 64)
	addr := process.ProcessMemoryAddress(uintptr(unsafe.Pointer(&buf[0])))

	regions, err := New().ListReadableRegions(self())
	require.NoError(t, err)
	require.NotEmpty(t, regions)

	covered := false
	for i, r := range regions {
		assert.NotZero(t, r.Size)
		if i > 0 {
			assert.Greater(t, r.Start, regions[i-1].Start)
		}
		if r.Contains(addr) {
			covered = true
		}
	}
	assert.True(t, covered, "heap buffer at %s not in any readable region", addr.ToString())

	runtime.KeepAlive(buf)
}

func TestEditorScanSelf(t *testing.T) {
	if testing.Short() {
		t.Skip("scans the whole test process")
	}

	marker := rand.New(rand.NewSource(int64(os.Getpid()))).Int63() | 1<<62
	target := make([]int64, 4)
	target[2] = marker
	addr := process.ProcessMemoryAddress(uintptr(unsafe.Pointer(&target[2])))

	b := New()
	e := editor.New(b, b)
	ctx := context.Background()

	found, err := e.Scan(ctx, self(), scanvalue.Int64Value(marker))
	require.NoError(t, err)
	assert.Contains(t, found, addr)

	r, err := e.WriteValue(ctx, self(), addr, scanvalue.Int64Value(marker+1))
	require.NoError(t, err)
	assert.True(t, r.Success())
	assert.Equal(t, marker+1, target[2])

	kept, err := e.Rescan(ctx, self(), []process.ProcessMemoryAddress{addr}, scanvalue.Int64Value(marker+1))
	require.NoError(t, err)
	assert.Equal(t, []process.ProcessMemoryAddress{addr}, kept)

	runtime.KeepAlive(target)
}
