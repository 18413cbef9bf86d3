// Package processes lists running processes for the process picker.
package processes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"memedit/process"

	gopsprocess "github.com/shirou/gopsutil/v3/process"
)

// Lister implements process.ProcessLister with gopsutil
type Lister struct {
	// IncludeSelf keeps the calling process in listings
	IncludeSelf bool
}

var _ process.ProcessLister = (*Lister)(nil)

func New() *Lister {
	return &Lister{}
}

// ListProcesses returns every visible process ordered by PID. Processes that
// exit while being listed are left out.
func (l *Lister) ListProcesses() ([]process.ProcessInfo, error) {
	return l.list(func(string, string) bool { return true })
}

// FindProcessByName matches the process name or the base name of its
// executable, case sensitive like pidof
func (l *Lister) FindProcessByName(name string) ([]process.ProcessInfo, error) {
	if name == "" {
		return nil, errors.New("empty name")
	}

	return l.list(func(procName, exe string) bool {
		return procName == name || (exe != "" && filepath.Base(exe) == name)
	})
}

func (l *Lister) list(match func(name, exe string) bool) ([]process.ProcessInfo, error) {
	procs, err := gopsprocess.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	self := int32(os.Getpid())

	var out []process.ProcessInfo
	for _, p := range procs {
		if p.Pid == self && !l.IncludeSelf {
			continue
		}

		name, err := p.Name()
		if err != nil {
			// gone, or a kernel thread we may not inspect
			continue
		}

		// may fail for zombies or without permission
		exe, _ := p.Exe()

		if match(name, exe) {
			out = append(out, process.ProcessInfo{PID: process.ProcessID(p.Pid), Name: name})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].PID < out[j].PID
	})
	return out, nil
}
