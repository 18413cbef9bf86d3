//go:build linux

package process_linux

import (
	"fmt"
	"math"
	"unsafe"

	"memedit/process"

	"golang.org/x/sys/unix"
)

// process_vm_writev uses the process_vm_writev syscall to write memory to another process
func process_vm_writev(
	pid process.ProcessID,
	localBuf []byte,
	remoteAddr process.ProcessMemoryAddress,
) (int, error) {
	if len(localBuf) == 0 {
		return 0, nil
	}

	// Create iovec for local buffer
	localIov := unix.Iovec{Base: &localBuf[0]}
	localIov.SetLen(len(localBuf))

	// Create iovec for remote buffer
	remoteIov := unix.RemoteIovec{
		Base: uintptr(remoteAddr),
		Len:  len(localBuf),
	}

	// Call process_vm_writev
	n, _, errno := unix.Syscall6(
		unix.SYS_PROCESS_VM_WRITEV,
		uintptr(pid),                        // Remote process PID
		uintptr(unsafe.Pointer(&localIov)),  // Local iovec
		uintptr(1),                          // Number of local iovecs
		uintptr(unsafe.Pointer(&remoteIov)), // Remote iovec
		uintptr(1),                          // Number of remote iovecs
		uintptr(0),                          // Flags (reserved for future use)
	)

	if errno != 0 {
		return 0, fmt.Errorf("process_vm_writev failed: %w", errno)
	}

	return int(n), nil
}

// pwrite writes through the open /proc/<pid>/mem descriptor. Unlike
// process_vm_writev this also patches read-only mappings such as code pages.
func pwrite(fd int, localBuf []byte, remoteAddr process.ProcessMemoryAddress) (int, error) {
	if uint64(remoteAddr) > math.MaxInt64 {
		return 0, fmt.Errorf("address %s beyond file offset range", remoteAddr.ToString())
	}

	n, err := unix.Pwrite(fd, localBuf, int64(remoteAddr))
	if err != nil {
		return 0, fmt.Errorf("pwrite failed: %w", err)
	}
	return n, nil
}

// WriteAt writes data at addr and reports the number of bytes written.
// Kernels that forbid writes through the memory file fall back to process_vm_writev.
func (h *LinuxHandle) WriteAt(addr process.ProcessMemoryAddress, data []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	fd, err := h.fd()
	if err != nil {
		return 0, err
	}

	if h.mode != process.ReadWrite {
		return 0, fmt.Errorf("%w: handle for PID %d is %s", process.ErrWriteFailure, h.pid, h.mode)
	}

	if len(data) == 0 {
		return 0, nil
	}

	// Create a copy of the data to avoid potential modification during the write
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	n, err := pwrite(fd, dataCopy, addr)
	if n <= 0 {
		h.log.Debugln("pwrite to", addr.ToString(), "failed, trying process_vm_writev:", err)
		n, err = process_vm_writev(h.pid, dataCopy, addr)
	}

	if n <= 0 {
		return 0, fmt.Errorf("%w at %s: %v", process.ErrWriteFailure, addr.ToString(), err)
	}

	return n, nil
}
