package process

// RegionEnumerator lists the memory a process lets us read
type RegionEnumerator interface {
	// ListReadableRegions returns the committed, readable regions of pid.
	// The listing is a best-effort snapshot; entries that vanish or cannot be
	// parsed while the target changes its layout are skipped.
	ListReadableRegions(pid ProcessID) ([]MemoryRegion, error)
}

// MemoryAccess opens handles onto another process's address space
type MemoryAccess interface {
	// Open acquires a handle with the given access mode. The caller owns the
	// handle and must Close it.
	Open(pid ProcessID, mode AccessMode) (Handle, error)
}

// Handle is a scoped view of a process's memory
type Handle interface {
	// ReadAt reads up to size bytes at addr. Fewer bytes may be returned near
	// the end of a mapping; reading nothing is an ErrReadFault.
	ReadAt(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)

	// WriteAt writes data at addr and reports how many bytes were written
	WriteAt(addr ProcessMemoryAddress, data []byte) (int, error)

	// Close releases the handle. Calling it more than once is harmless.
	Close() error
}

// Backend is a platform implementation of both collaborator interfaces
type Backend interface {
	RegionEnumerator
	MemoryAccess
}
