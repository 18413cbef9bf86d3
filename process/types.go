package process

// ProcessID represents a unique identifier for a process
type ProcessID int

// ProcessInfo is what the process picker shows for a running process
type ProcessInfo struct {
	PID  ProcessID // Process ID
	Name string    // Executable name or command
}
