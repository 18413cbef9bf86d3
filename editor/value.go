package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"memedit/process"
	"memedit/scanvalue"
)

// WriteResult is the outcome of WriteValue
type WriteResult int

const (
	// WriteOK means every encoded byte was written
	WriteOK WriteResult = iota
	// WritePartial means the target accepted fewer bytes than requested
	WritePartial
	// WriteHandleFailure means the process could not be opened for writing
	WriteHandleFailure
	// WriteFailed means the write call itself failed
	WriteFailed
)

func (r WriteResult) String() string {
	switch r {
	case WriteOK:
		return "ok"
	case WritePartial:
		return "partial write"
	case WriteHandleFailure:
		return "handle failure"
	case WriteFailed:
		return "write failed"
	default:
		return fmt.Sprintf("WriteResult(%d)", int(r))
	}
}

func (r WriteResult) Success() bool {
	return r == WriteOK
}

// ReadValue reads exactly width bytes at addr
func (e *Editor) ReadValue(ctx context.Context, pid process.ProcessID, addr process.ProcessMemoryAddress, width int) ([]byte, error) {
	start := time.Now()
	defer e.metrics.observe(ctx, opReadValue, start)

	if width <= 0 {
		return nil, fmt.Errorf("%w: width %d", scanvalue.ErrInvalidInput, width)
	}

	h, err := e.open(ctx, pid, process.ReadOnly)
	if err != nil {
		return nil, err
	}
	defer e.close(ctx, h)

	raw, err := e.read(ctx, h, addr, width)
	if err != nil {
		return nil, err
	}
	if len(raw) < width {
		return nil, process.ReadFault(addr, fmt.Errorf("read %d of %d bytes", len(raw), width))
	}

	return raw, nil
}

// ReadTyped reads and decodes a value of kind at addr. Text has no width of
// its own and fails with scanvalue.ErrUnsizedType.
func (e *Editor) ReadTyped(ctx context.Context, pid process.ProcessID, addr process.ProcessMemoryAddress, kind scanvalue.Kind) (scanvalue.Value, error) {
	width, err := kind.Width()
	if err != nil {
		return scanvalue.Value{}, err
	}

	raw, err := e.ReadValue(ctx, pid, addr, width)
	if err != nil {
		return scanvalue.Value{}, err
	}

	return scanvalue.Decode(kind, raw)
}

// WriteValue writes the encoding of v at addr. Text that fails
// scanvalue.Value.Validate is refused with WriteFailed before the process is
// opened. Every result other than
// WriteOK comes with an error: the open error for WriteHandleFailure, one
// wrapping process.ErrPartialWrite for WritePartial, one wrapping
// process.ErrWriteFailure for WriteFailed.
func (e *Editor) WriteValue(ctx context.Context, pid process.ProcessID, addr process.ProcessMemoryAddress, v scanvalue.Value) (WriteResult, error) {
	if err := v.Validate(); err != nil {
		return WriteFailed, err
	}

	start := time.Now()
	defer e.metrics.observe(ctx, opWrite, start)

	data := v.Encode()

	h, err := e.open(ctx, pid, process.ReadWrite)
	if err != nil {
		e.log.Warn("Write failed to open process: ", err)
		return WriteHandleFailure, err
	}
	defer e.close(ctx, h)

	var n int
	err = e.io.Do(ctx, func() error {
		var err error
		n, err = h.WriteAt(addr, data)
		return err
	})
	if err != nil {
		if !errors.Is(err, process.ErrWriteFailure) {
			err = fmt.Errorf("%w at %s: %w", process.ErrWriteFailure, addr.ToString(), err)
		}
		e.log.Warn("Write failed: ", err)
		return WriteFailed, err
	}

	if n != len(data) {
		err := process.PartialWrite(addr, n, len(data))
		e.log.Warn("Write failed: ", err)
		return WritePartial, err
	}

	e.log.Infoln("Wrote", v.Kind().String(), v.String(), "to", addr.ToString(), "in process", pid)
	return WriteOK, nil
}
