//go:build linux

package process_linux

import (
	"fmt"
	"math"
	"unsafe"

	"memedit/process"

	"golang.org/x/sys/unix"
)

// process_vm_readv uses the process_vm_readv syscall to read memory from another process.
// The kernel stops at the first unmapped page, so n may be less than len(localBuf).
func process_vm_readv(
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

	// Call process_vm_readv
	n, _, errno := unix.Syscall6(
		unix.SYS_PROCESS_VM_READV,
		uintptr(pid),                        // Remote process PID
		uintptr(unsafe.Pointer(&localIov)),  // Local iovec
		uintptr(1),                          // Number of local iovecs
		uintptr(unsafe.Pointer(&remoteIov)), // Remote iovec
		uintptr(1),                          // Number of remote iovecs
		uintptr(0),                          // Flags (reserved for future use)
	)

	if errno != 0 {
		return 0, fmt.Errorf("process_vm_readv failed: %w", errno)
	}

	return int(n), nil
}

// pread reads through the open /proc/<pid>/mem descriptor
func pread(fd int, localBuf []byte, remoteAddr process.ProcessMemoryAddress) (int, error) {
	if uint64(remoteAddr) > math.MaxInt64 {
		return 0, fmt.Errorf("address %s beyond file offset range", remoteAddr.ToString())
	}

	n, err := unix.Pread(fd, localBuf, int64(remoteAddr))
	if err != nil {
		return 0, fmt.Errorf("pread failed: %w", err)
	}
	return n, nil
}

// ReadAt reads up to size bytes at addr. process_vm_readv is tried first and
// the memory file is used when the syscall is refused or reads nothing.
func (h *LinuxHandle) ReadAt(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	fd, err := h.fd()
	if err != nil {
		return nil, err
	}

	if size == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, size)

	n, err := process_vm_readv(h.pid, buf, addr)
	if n <= 0 {
		n, err = pread(fd, buf, addr)
	}

	if n <= 0 {
		return nil, process.ReadFault(addr, err)
	}

	return buf[:n], nil
}
