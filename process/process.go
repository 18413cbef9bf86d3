// Package process defines the types and interfaces shared by the memory
// editor and its platform backends.
package process

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessDenied is returned when the process exists but cannot be opened,
	// enumerated, or read under the current privileges.
	ErrAccessDenied = errors.New("access denied")

	// ErrProcessUnavailable is returned when the process does not exist or has exited.
	ErrProcessUnavailable = errors.New("process unavailable")

	// ErrReadFault is returned when no bytes could be read at an address.
	ErrReadFault = errors.New("read fault")

	// ErrWriteFailure is returned when the write call itself fails.
	ErrWriteFailure = errors.New("write failed")

	// ErrPartialWrite is returned when fewer bytes were written than requested.
	ErrPartialWrite = errors.New("partial write")

	// ErrHandleClosed is returned when a handle is used after Close.
	ErrHandleClosed = errors.New("handle closed")
)

// ReadFault wraps ErrReadFault with the failing address
func ReadFault(addr ProcessMemoryAddress, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w at %s", ErrReadFault, addr.ToString())
	}
	return fmt.Errorf("%w at %s: %v", ErrReadFault, addr.ToString(), cause)
}

// PartialWrite wraps ErrPartialWrite with the byte counts
func PartialWrite(addr ProcessMemoryAddress, written, requested int) error {
	return fmt.Errorf("%w at %s: wrote %d of %d bytes", ErrPartialWrite, addr.ToString(), written, requested)
}
