package process

// ProcessLister supplies the processes a user can pick from
type ProcessLister interface {
	// ListProcesses returns every visible process ordered by PID
	ListProcesses() ([]ProcessInfo, error)

	// FindProcessByName returns processes whose name equals name
	FindProcessByName(name string) ([]ProcessInfo, error)
}
