package domain

// ProcessLister snapshots the OS process table.
// Implementation: gopsutil.
type ProcessLister interface {
	// Snapshot returns the live processes with their image paths.
	Snapshot() ([]ProcessInfo, error)

	// Alive reports whether a pid currently exists.
	Alive(pid int32) (bool, error)
}

// Injector stages the loader payload into a target process.
// Implementation: win32 remote memory writer + remote LoadLibraryW thread.
type Injector interface {
	// Inject writes the loader into the process identified by pid and starts
	// it. Returns the staged loader path and the remote allocation.
	Inject(pid uint32) (loaderPath string, alloc RemoteAllocation, err error)
}

// Stager materializes the embedded loader payload on disk.
type Stager interface {
	// Stage returns the path of the decompressed loader, writing it only if
	// it does not already exist (content-addressed, idempotent).
	Stage() (string, error)
}

// Notifier reports user-facing conditions. The core never formats UI itself.
type Notifier interface {
	// Fatal shows a message and terminates the process. Never returns.
	Fatal(title, message string)

	// Warn shows a non-fatal message and returns.
	Warn(title, message string)
}
