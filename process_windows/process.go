//go:build windows

package process_windows

import (
	"errors"
	"fmt"
	"sync"

	"memedit/process"
	"memedit/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/windows"
)

// WindowsBackend implements process.Backend with the kernel32 debugging APIs
type WindowsBackend struct {
	log *logger.Logger
	mm  *memory_map.WindowsMemoryMap
}

var _ process.Backend = (*WindowsBackend)(nil)

// New creates a new WindowsBackend instance
func New() *WindowsBackend {
	return &WindowsBackend{
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "process-windows")),
		mm:  memory_map.NewWindowsMemoryMap(),
	}
}

func (b *WindowsBackend) ListReadableRegions(pid process.ProcessID) ([]process.MemoryRegion, error) {
	if pid <= 0 {
		return nil, fmt.Errorf("%w: invalid pid %d", process.ErrProcessUnavailable, pid)
	}

	mm, err := b.mm.ReadMemoryMap(int(pid))
	if err != nil {
		return nil, classifyError(pid, err)
	}

	var regions []process.MemoryRegion
	for _, item := range memory_map.Scannable(mm) {
		regions = append(regions, process.MemoryRegion{
			Start: process.ProcessMemoryAddress(item.Address),
			Size:  process.ProcessMemorySize(item.Size),
		})
	}

	b.log.Debugln("Process", pid, "has", len(regions), "readable regions of", len(mm))
	return regions, nil
}

func (b *WindowsBackend) Open(pid process.ProcessID, mode process.AccessMode) (process.Handle, error) {
	access := uint32(windows.PROCESS_VM_READ | windows.PROCESS_QUERY_INFORMATION)
	if mode == process.ReadWrite {
		access = windows.PROCESS_VM_WRITE | windows.PROCESS_VM_OPERATION | windows.PROCESS_QUERY_INFORMATION
	}

	handle, err := openProcess(pid, access)
	if err != nil {
		return nil, err
	}

	b.log.Debugln("Opened process", pid, mode.String())

	return &WindowsHandle{
		pid:    pid,
		mode:   mode,
		handle: handle,
		log:    b.log,
	}, nil
}

func openProcess(pid process.ProcessID, access uint32) (windows.Handle, error) {
	if pid <= 0 {
		return 0, fmt.Errorf("%w: invalid pid %d", process.ErrProcessUnavailable, pid)
	}

	handle, err := windows.OpenProcess(access, false, uint32(pid))
	if err != nil {
		return 0, classifyError(pid, err)
	}
	return handle, nil
}

// classifyError maps OpenProcess failures onto the process error taxonomy
func classifyError(pid process.ProcessID, err error) error {
	switch {
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return fmt.Errorf("%w: OpenProcess %d: %v", process.ErrAccessDenied, pid, err)
	case errors.Is(err, windows.ERROR_INVALID_PARAMETER):
		// OpenProcess reports a pid with no process as an invalid parameter
		return fmt.Errorf("%w: OpenProcess %d: %v", process.ErrProcessUnavailable, pid, err)
	default:
		return fmt.Errorf("OpenProcess %d failed: %w", pid, err)
	}
}

// WindowsHandle is an open process handle
type WindowsHandle struct {
	pid  process.ProcessID
	mode process.AccessMode
	log  *logger.Logger

	mu     sync.Mutex
	handle windows.Handle
}

func (h *WindowsHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.handle == 0 {
		return nil
	}

	err := windows.CloseHandle(h.handle)
	h.handle = 0
	if err != nil {
		return fmt.Errorf("CloseHandle failed: %w", err)
	}

	h.log.Debugln("Closed process", h.pid)
	return nil
}

func (h *WindowsHandle) ReadAt(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.handle == 0 {
		return nil, process.ErrHandleClosed
	}

	if size == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, size)
	var n uintptr

	err := windows.ReadProcessMemory(h.handle, uintptr(addr), &buf[0], uintptr(size), &n)
	// ERROR_PARTIAL_COPY still fills the bytes up to the first inaccessible page
	if err != nil && !(errors.Is(err, windows.ERROR_PARTIAL_COPY) && n > 0) {
		return nil, process.ReadFault(addr, err)
	}

	if n == 0 {
		return nil, process.ReadFault(addr, nil)
	}

	return buf[:n], nil
}

func (h *WindowsHandle) WriteAt(addr process.ProcessMemoryAddress, data []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.handle == 0 {
		return 0, process.ErrHandleClosed
	}

	if h.mode != process.ReadWrite {
		return 0, fmt.Errorf("%w: handle for PID %d is %s", process.ErrWriteFailure, h.pid, h.mode)
	}

	if len(data) == 0 {
		return 0, nil
	}

	var n uintptr
	err := windows.WriteProcessMemory(h.handle, uintptr(addr), &data[0], uintptr(len(data)), &n)
	if err != nil && n == 0 {
		return 0, fmt.Errorf("%w at %s: %v", process.ErrWriteFailure, addr.ToString(), err)
	}

	return int(n), nil
}
