// Package process_blob simulates a target process in memory. It implements
// process.Backend so the editor can be exercised without a live process.
package process_blob

import (
	"fmt"
	"sort"
	"sync"

	"memedit/process"
)

type blobRegion struct {
	base     process.ProcessMemoryAddress
	data     []byte
	readable bool
}

func (r *blobRegion) end() process.ProcessMemoryAddress {
	return r.base + process.ProcessMemoryAddress(len(r.data))
}

// ProcessBlob is a simulated process made of disjoint memory regions
type ProcessBlob struct {
	mu      sync.Mutex
	pid     process.ProcessID
	regions []*blobRegion

	writeLimit int
	denied     bool
	exited     bool

	openHandles int
	opened      int
	reads       int
	faults      int
}

var _ process.Backend = (*ProcessBlob)(nil)

// NewProcessBlob creates an empty simulated process answering to pid
func NewProcessBlob(pid process.ProcessID) *ProcessBlob {
	return &ProcessBlob{
		pid:        pid,
		writeLimit: -1,
	}
}

// AddRegion maps a readable, writable region holding a copy of data.
// Regions must not overlap.
func (p *ProcessBlob) AddRegion(base process.ProcessMemoryAddress, data []byte) *ProcessBlob {
	p.addRegion(base, append([]byte(nil), data...), true)
	return p
}

// AddUnreadableRegion maps size bytes that fail every read, like a guard page
func (p *ProcessBlob) AddUnreadableRegion(base process.ProcessMemoryAddress, size process.ProcessMemorySize) *ProcessBlob {
	p.addRegion(base, make([]byte, size), false)
	return p
}

func (p *ProcessBlob) addRegion(base process.ProcessMemoryAddress, data []byte, readable bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.regions = append(p.regions, &blobRegion{base: base, data: data, readable: readable})
	sort.Slice(p.regions, func(i, j int) bool {
		return p.regions[i].base < p.regions[j].base
	})
}

// SetWriteLimit caps the bytes accepted by a single WriteAt. A negative limit
// removes the cap.
func (p *ProcessBlob) SetWriteLimit(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeLimit = n
}

// SetDenied makes enumeration and Open fail with process.ErrAccessDenied
func (p *ProcessBlob) SetDenied(denied bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.denied = denied
}

// SetExited makes the process disappear. Open handles start failing too.
func (p *ProcessBlob) SetExited(exited bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exited = exited
}

// Bytes returns a copy of size bytes at addr, false if they are not mapped
func (p *ProcessBlob) Bytes(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := p.regionFor(addr)
	if r == nil || uint64(addr)+uint64(size) > uint64(r.end()) {
		return nil, false
	}

	off := addr - r.base
	return append([]byte(nil), r.data[off:uint64(off)+uint64(size)]...), true
}

// OpenHandles is the number of handles opened and not yet closed
func (p *ProcessBlob) OpenHandles() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.openHandles
}

// Opened is the number of handles opened over the blob's lifetime
func (p *ProcessBlob) Opened() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opened
}

// Reads is the number of ReadAt calls served, failed ones included
func (p *ProcessBlob) Reads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reads
}

// Faults is the number of ReadAt calls that could not read a single byte
func (p *ProcessBlob) Faults() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.faults
}

// regionFor returns the region containing addr, assumes mu is held
func (p *ProcessBlob) regionFor(addr process.ProcessMemoryAddress) *blobRegion {
	i := sort.Search(len(p.regions), func(i int) bool {
		return p.regions[i].end() > addr
	})
	if i < len(p.regions) && p.regions[i].base <= addr {
		return p.regions[i]
	}
	return nil
}

// check reports why pid cannot be inspected, assumes mu is held
func (p *ProcessBlob) check(pid process.ProcessID) error {
	if pid != p.pid || p.exited {
		return fmt.Errorf("%w: process with PID %d does not exist", process.ErrProcessUnavailable, pid)
	}
	if p.denied {
		return fmt.Errorf("%w: PID %d", process.ErrAccessDenied, pid)
	}
	return nil
}

func (p *ProcessBlob) ListReadableRegions(pid process.ProcessID) ([]process.MemoryRegion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.check(pid); err != nil {
		return nil, err
	}

	var regions []process.MemoryRegion
	for _, r := range p.regions {
		if !r.readable || len(r.data) == 0 {
			continue
		}
		regions = append(regions, process.MemoryRegion{
			Start: r.base,
			Size:  process.ProcessMemorySize(len(r.data)),
		})
	}
	return regions, nil
}

func (p *ProcessBlob) Open(pid process.ProcessID, mode process.AccessMode) (process.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.check(pid); err != nil {
		return nil, err
	}

	p.openHandles++
	p.opened++
	return &blobHandle{blob: p, mode: mode}, nil
}

type blobHandle struct {
	blob   *ProcessBlob
	mode   process.AccessMode
	closed bool
}

// ReadAt stops at the end of the region containing addr
func (h *blobHandle) ReadAt(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	p := h.blob
	p.mu.Lock()
	defer p.mu.Unlock()

	if h.closed {
		return nil, process.ErrHandleClosed
	}

	p.reads++

	if p.exited {
		p.faults++
		return nil, process.ReadFault(addr, process.ErrProcessUnavailable)
	}

	if size == 0 {
		return []byte{}, nil
	}

	r := p.regionFor(addr)
	if r == nil || !r.readable {
		p.faults++
		return nil, process.ReadFault(addr, nil)
	}

	off := uint64(addr - r.base)
	n := min(uint64(size), uint64(len(r.data))-off)
	return append([]byte(nil), r.data[off:off+n]...), nil
}

func (h *blobHandle) WriteAt(addr process.ProcessMemoryAddress, data []byte) (int, error) {
	p := h.blob
	p.mu.Lock()
	defer p.mu.Unlock()

	if h.closed {
		return 0, process.ErrHandleClosed
	}

	if h.mode != process.ReadWrite {
		return 0, fmt.Errorf("%w: handle is %s", process.ErrWriteFailure, h.mode)
	}

	if p.exited {
		return 0, fmt.Errorf("%w at %s: %v", process.ErrWriteFailure, addr.ToString(), process.ErrProcessUnavailable)
	}

	r := p.regionFor(addr)
	if r == nil || !r.readable {
		return 0, fmt.Errorf("%w at %s: address not mapped", process.ErrWriteFailure, addr.ToString())
	}

	off := uint64(addr - r.base)
	n := min(len(data), len(r.data)-int(off))
	if p.writeLimit >= 0 {
		n = min(n, p.writeLimit)
	}

	copy(r.data[off:], data[:n])
	return n, nil
}

func (h *blobHandle) Close() error {
	p := h.blob
	p.mu.Lock()
	defer p.mu.Unlock()

	if h.closed {
		return nil
	}

	h.closed = true
	p.openHandles--
	return nil
}
