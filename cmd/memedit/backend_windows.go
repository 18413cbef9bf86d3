//go:build windows

package main

import (
	"memedit/process"
	"memedit/process_windows"
)

func newBackend() (process.Backend, error) {
	return process_windows.New(), nil
}
