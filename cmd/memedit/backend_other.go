//go:build !linux && !windows

package main

import (
	"fmt"
	"runtime"

	"memedit/process"
)

func newBackend() (process.Backend, error) {
	return nil, fmt.Errorf("live processes are not supported on %s, try selftest", runtime.GOOS)
}
