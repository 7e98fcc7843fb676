//go:build windows

package infra

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/silvermoth/bg3loader/internal/domain"
)

// mutexName is system-wide; two tool instances must never watch or inject
// concurrently, regardless of which subcommand each was started with.
const mutexName = `Global\bg3loader-single-instance`

// SingleInstanceGuard is a globally named mutex held for the life of the
// process. The OS releases it on any exit, including abnormal ones, so no
// explicit release path is needed.
type SingleInstanceGuard struct {
	handle windows.Handle
}

// AcquireSingleInstance creates or opens the global mutex. Returns
// domain.ErrAlreadyRunning when another instance already holds it; callers
// treat that as an expected silent no-op, not a failure.
func AcquireSingleInstance() (*SingleInstanceGuard, error) {
	return acquireNamedMutex(mutexName)
}

// acquireNamedMutex does the work for an arbitrary mutex name. CreateMutexW
// returns a valid handle together with ERROR_ALREADY_EXISTS when the mutex
// is already held; x/sys surfaces that case through err.
func acquireNamedMutex(name string) (*SingleInstanceGuard, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, errors.Wrap(err, "encode mutex name")
	}

	handle, err := windows.CreateMutex(nil, false, namePtr)
	if err != nil {
		if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
			if handle != 0 {
				_ = windows.CloseHandle(handle)
			}
			return nil, domain.ErrAlreadyRunning
		}
		return nil, &domain.EnvironmentError{Op: "create instance mutex", Err: err}
	}

	return &SingleInstanceGuard{handle: handle}, nil
}

// Close releases the mutex handle early. Optional; process exit is enough.
func (g *SingleInstanceGuard) Close() error {
	if g.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(g.handle)
	g.handle = 0
	return err
}
