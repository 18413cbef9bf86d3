//go:build windows

package process_windows

import (
	"os"
	"runtime"
	"testing"
	"unsafe"

	"memedit/process"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func self() process.ProcessID {
	return process.ProcessID(os.Getpid())
}

func TestListReadableRegionsSelf(t *testing.T) {
	buf := make([]byte, 64)
	addr := process.ProcessMemoryAddress(uintptr(unsafe.Pointer(&buf[0])))

	regions, err := New().ListReadableRegions(self())
	require.NoError(t, err)
	require.NotEmpty(t, regions)

	covered := false
	for _, r := range regions {
		if r.Contains(addr) {
			covered = true
		}
	}
	assert.True(t, covered, "heap buffer at %s not in any readable region", addr.ToString())

	runtime.KeepAlive(buf)
}

func TestMissingProcess(t *testing.T) {
	b := New()

	// far above any pid windows hands out
	const missing process.ProcessID = 0x7FFFFFF0

	_, err := b.ListReadableRegions(missing)
	assert.ErrorIs(t, err, process.ErrProcessUnavailable)

	_, err = b.Open(missing, process.ReadOnly)
	assert.ErrorIs(t, err, process.ErrProcessUnavailable)

	_, err = b.ListReadableRegions(0)
	assert.ErrorIs(t, err, process.ErrProcessUnavailable)
}

func TestReadWriteSelf(t *testing.T) {
	buf := []byte("memedit-self-test-marker")
	addr := process.ProcessMemoryAddress(uintptr(unsafe.Pointer(&buf[0])))

	h, err := New().Open(self(), process.ReadWrite)
	require.NoError(t, err)
	defer h.Close()

	n, err := h.WriteAt(addr, []byte("M"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte('M'), buf[0])

	runtime.KeepAlive(buf)
}
