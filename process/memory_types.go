package process

import (
	"fmt"
	"strconv"
	"strings"
)

// ProcessMemoryAddress represents a memory address within a process
type ProcessMemoryAddress uint64

func (pma ProcessMemoryAddress) ToString() string {
	return fmt.Sprintf("0x%X", uint64(pma))
}

// ParseAddress parses a hexadecimal address with or without a 0x prefix
func ParseAddress(s string) (ProcessMemoryAddress, error) {
	s = strings.TrimSpace(s)
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return ProcessMemoryAddress(v), nil
}

// ProcessMemorySize represents a size of memory region
type ProcessMemorySize uint64

func (pms ProcessMemorySize) ToString() string {
	return fmt.Sprintf("%d bytes", uint64(pms))
}

// MemoryRegion is a committed, readable span of a process address space.
// Regions are listed fresh on every scan and never cached.
type MemoryRegion struct {
	Start ProcessMemoryAddress
	Size  ProcessMemorySize
}

// End returns the first address past the region
func (r MemoryRegion) End() ProcessMemoryAddress {
	return r.Start + ProcessMemoryAddress(r.Size)
}

// Contains reports whether addr lies within the region
func (r MemoryRegion) Contains(addr ProcessMemoryAddress) bool {
	return addr >= r.Start && addr < r.End()
}

func (r MemoryRegion) String() string {
	return fmt.Sprintf("%s-%s (%s)", r.Start.ToString(), r.End().ToString(), r.Size.ToString())
}

// AccessMode selects the rights requested when opening a process
type AccessMode int

const (
	ReadOnly AccessMode = iota
	ReadWrite
)

func (m AccessMode) String() string {
	if m == ReadWrite {
		return "read-write"
	}
	return "read-only"
}
