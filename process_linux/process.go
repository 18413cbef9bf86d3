//go:build linux

package process_linux

import (
	"fmt"
	"os"
	"sync"

	"memedit/process"
	"memedit/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// LinuxBackend implements process.Backend on top of procfs and the
// process_vm_readv family of syscalls
type LinuxBackend struct {
	log *logger.Logger
	mm  *memory_map.LinuxMemoryMap
}

var _ process.Backend = (*LinuxBackend)(nil)

// New creates a new LinuxBackend instance
func New() *LinuxBackend {
	return &LinuxBackend{
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "process-linux")),
		mm:  memory_map.NewLinuxMemoryMap(),
	}
}

// ListReadableRegions parses /proc/<pid>/maps and keeps the readable mappings
func (b *LinuxBackend) ListReadableRegions(pid process.ProcessID) ([]process.MemoryRegion, error) {
	if err := checkProcess(pid); err != nil {
		return nil, err
	}

	mm, err := b.mm.ReadMemoryMap(int(pid))
	if err != nil {
		return nil, classifyError(pid, "read memory map", err)
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

// Open opens /proc/<pid>/mem with the requested access mode. The open is
// subject to the same ptrace access check as attaching a debugger.
func (b *LinuxBackend) Open(pid process.ProcessID, mode process.AccessMode) (process.Handle, error) {
	if err := checkProcess(pid); err != nil {
		return nil, err
	}

	flags := os.O_RDONLY
	if mode == process.ReadWrite {
		flags = os.O_RDWR
	}

	file, err := os.OpenFile(fmt.Sprintf("/proc/%d/mem", pid), flags, 0)
	if err != nil {
		return nil, classifyError(pid, "open process memory", err)
	}

	b.log.Debugln("Opened process", pid, mode.String())

	return &LinuxHandle{
		pid:  pid,
		mode: mode,
		file: file,
		log:  b.log,
	}, nil
}

// LinuxHandle is an open /proc/<pid>/mem file
type LinuxHandle struct {
	pid  process.ProcessID
	mode process.AccessMode
	log  *logger.Logger

	mu   sync.Mutex
	file *os.File
}

// Close closes the memory file; later calls are no-ops
func (h *LinuxHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return nil
	}

	err := h.file.Close()
	h.file = nil
	h.log.Debugln("Closed process", h.pid)
	return err
}

// fd returns the descriptor of the open memory file, assumes mu is held
func (h *LinuxHandle) fd() (int, error) {
	if h.file == nil {
		return -1, process.ErrHandleClosed
	}
	return int(h.file.Fd()), nil
}
