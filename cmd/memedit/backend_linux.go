//go:build linux

package main

import (
	"memedit/process"
	"memedit/process_linux"
)

func newBackend() (process.Backend, error) {
	return process_linux.New(), nil
}
