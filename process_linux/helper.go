//go:build linux

package process_linux

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"memedit/process"

	"golang.org/x/sys/unix"
)

// checkProcess fails with ErrProcessUnavailable when pid has no /proc entry
func checkProcess(pid process.ProcessID) error {
	if pid <= 0 {
		return fmt.Errorf("%w: invalid pid %d", process.ErrProcessUnavailable, pid)
	}

	if _, err := os.Stat(fmt.Sprintf("/proc/%d", pid)); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: process with PID %d does not exist", process.ErrProcessUnavailable, pid)
	}

	return nil
}

// classifyError maps errno values onto the process error taxonomy
func classifyError(pid process.ProcessID, op string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, unix.ESRCH):
		return fmt.Errorf("%w: %s for PID %d: %v", process.ErrProcessUnavailable, op, pid, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s for PID %d: %v", process.ErrAccessDenied, op, pid, err)
	default:
		return fmt.Errorf("%s for PID %d: %w", op, pid, err)
	}
}
