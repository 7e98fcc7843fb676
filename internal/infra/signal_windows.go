//go:build windows

package infra

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/silvermoth/bg3loader/internal/domain"
)

// signalName hands off between a short-lived autostart run and a resident
// watcher. Carries no payload; only existence and signaled state matter.
const signalName = `Global\bg3loader-activity`

// CrossProcessSignal is a named event with open-or-create semantics: process
// start order between autostart and watcher is not guaranteed, so whichever
// references it first creates it and the OS destroys it with the last handle.
type CrossProcessSignal struct {
	handle windows.Handle
}

// OpenOrCreateSignal creates the named event, or opens the existing one when
// the counterpart process got there first.
func OpenOrCreateSignal() (*CrossProcessSignal, error) {
	name, err := windows.UTF16PtrFromString(signalName)
	if err != nil {
		return nil, errors.Wrap(err, "encode event name")
	}

	// Manual-reset, initially unsignaled. CreateEvent opens the existing
	// event when the name is already in use.
	handle, err := windows.CreateEvent(nil, 1, 0, name)
	if err != nil && !errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		return nil, &domain.EnvironmentError{Op: "create activity event", Err: err}
	}
	if handle == 0 {
		return nil, &domain.EnvironmentError{Op: "create activity event", Err: err}
	}

	return &CrossProcessSignal{handle: handle}, nil
}

// Raise sets the event, letting the counterpart observe activity.
func (s *CrossProcessSignal) Raise() error {
	if err := windows.SetEvent(s.handle); err != nil {
		return errors.Wrap(err, "set activity event")
	}
	return nil
}

// Close drops this process's reference.
func (s *CrossProcessSignal) Close() error {
	if s.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(s.handle)
	s.handle = 0
	return err
}
