//go:build windows

package memory_map

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// WindowsMemoryMap implements MemoryMap for Windows
type WindowsMemoryMap struct{}

var _ MemoryMap = (*WindowsMemoryMap)(nil)

// NewWindowsMemoryMap creates a new WindowsMemoryMap instance
func NewWindowsMemoryMap() *WindowsMemoryMap {
	return &WindowsMemoryMap{}
}

// ReadMemoryMap opens the process for querying and walks its regions
func (w *WindowsMemoryMap) ReadMemoryMap(pid int) ([]MemoryMapItem, error) {
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_INFORMATION, false, uint32(pid))
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(handle)

	return queryRegions(handle), nil
}

// queryRegions walks the address space with VirtualQueryEx until it stops
// returning regions
func queryRegions(handle windows.Handle) []MemoryMapItem {
	var (
		memoryMap []MemoryMapItem
		mbi       windows.MemoryBasicInformation
		addr      uintptr
	)

	for {
		if err := windows.VirtualQueryEx(handle, addr, &mbi, unsafe.Sizeof(mbi)); err != nil {
			break
		}

		base := mbi.BaseAddress
		size := mbi.RegionSize
		if size == 0 {
			break
		}

		memoryMap = append(memoryMap, MemoryMapItem{
			Address:   uint64(base),
			Size:      uint64(size),
			Perms:     protectToPerms(mbi.Protect),
			Committed: mbi.State == windows.MEM_COMMIT,
		})

		next := base + size
		if next <= base {
			break
		}
		addr = next
	}

	return memoryMap
}

// protectToPerms renders a page protection as a maps style "rwx-" string.
// Guard and no-access pages are reported without read access.
func protectToPerms(protect uint32) string {
	perms := []byte("---p")
	if protect&(windows.PAGE_GUARD|windows.PAGE_NOACCESS) != 0 {
		return string(perms)
	}

	switch protect & 0xFF {
	case windows.PAGE_READONLY:
		perms[0] = 'r'
	case windows.PAGE_READWRITE, windows.PAGE_WRITECOPY:
		perms[0], perms[1] = 'r', 'w'
	case windows.PAGE_EXECUTE:
		perms[2] = 'x'
	case windows.PAGE_EXECUTE_READ:
		perms[0], perms[2] = 'r', 'x'
	case windows.PAGE_EXECUTE_READWRITE, windows.PAGE_EXECUTE_WRITECOPY:
		perms[0], perms[1], perms[2] = 'r', 'w', 'x'
	}
	return string(perms)
}
