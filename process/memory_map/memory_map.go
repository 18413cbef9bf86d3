package memory_map

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MemoryMapItem represents a memory region in a process's address space
type MemoryMapItem struct {
	Address   uint64 // The starting address of the memory region
	Size      uint64 // The size of the memory region in bytes
	Perms     string // Permissions (e.g., "r-xp" for read, execute, private)
	Committed bool   // Backed by memory rather than only reserved
	Path      string // Backing file or pseudo name such as "[heap]", may be empty
}

// String returns a string representation of the memory map item
func (mmItem MemoryMapItem) String() string {
	return fmt.Sprintf("Address: %x, Size: %d, Perms: %s, Path: %s", mmItem.Address, mmItem.Size, mmItem.Perms, mmItem.Path)
}

func (mmItem MemoryMapItem) IsReadable() bool {
	return IsReadablePerms(mmItem.Perms)
}

// MemoryMap defines the interface for operations related to a process's memory map
type MemoryMap interface {
	// ReadMemoryMap reads and parses the memory map for a process
	ReadMemoryMap(pid int) ([]MemoryMapItem, error)
}

// unreadableMappings are kernel pseudo mappings that advertise read access
// but fault when read from another process
var unreadableMappings = map[string]bool{
	"[vvar]":        true,
	"[vvar_vclock]": true,
	"[vsyscall]":    true,
}

func IsReadablePerms(perms string) bool {
	return len(perms) > 0 && perms[0] == 'r'
}

// Scannable reports whether a region is committed, readable and not a kernel pseudo mapping
func (mmItem MemoryMapItem) Scannable() bool {
	return mmItem.Committed && mmItem.Size > 0 && mmItem.IsReadable() && !unreadableMappings[mmItem.Path]
}

// ParseMaps parses the /proc/[pid]/maps format. Lines that do not parse are
// skipped, since the file can change while it is being read.
func ParseMaps(r io.Reader) ([]MemoryMapItem, error) {
	var memoryMap []MemoryMapItem
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		// Parse address range (e.g., "00400000-0040b000")
		addrRange := strings.Split(fields[0], "-")
		if len(addrRange) != 2 {
			continue
		}

		startAddr, err := strconv.ParseUint(addrRange[0], 16, 64)
		if err != nil {
			continue
		}

		endAddr, err := strconv.ParseUint(addrRange[1], 16, 64)
		if err != nil || endAddr <= startAddr {
			continue
		}

		path := ""
		if len(fields) >= 6 {
			path = strings.Join(fields[5:], " ")
		}

		memoryMap = append(memoryMap, MemoryMapItem{
			Address:   startAddr,
			Size:      endAddr - startAddr,
			Perms:     fields[1],
			Committed: true,
			Path:      path,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return memoryMap, nil
}

// Scannable filters a memory map down to the regions a scan should read
func Scannable(memoryMap []MemoryMapItem) []MemoryMapItem {
	var result []MemoryMapItem
	for _, item := range memoryMap {
		if item.Scannable() {
			result = append(result, item)
		}
	}
	return result
}
