//go:build windows

package launcher

import (
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/silvermoth/bg3loader/internal/domain"
	"github.com/silvermoth/bg3loader/internal/injector/win32"
)

// Autostart spawns the game with debugger-creation flags. Starting the
// process as a debuggee keeps the image-level launch interceptor registered
// on the game's filename from firing; detaching right after leaves the game
// running unmonitored.
type Autostart struct {
	targets domain.TargetPathSet
	logger  *zap.Logger
}

// NewAutostart creates the debug-bypass launcher.
func NewAutostart(targets domain.TargetPathSet, logger *zap.Logger) *Autostart {
	return &Autostart{targets: targets, logger: logger}
}

// Launch validates argv, spawns the resolved game binary as a debuggee of
// this process and detaches. The current environment is inherited in full.
// Returns the child pid for the injection pipeline; the child is not waited
// on and outlives this process.
func (a *Autostart) Launch(argv []string) (uint32, error) {
	args, err := ParseLaunchArgs(argv, a.targets)
	if err != nil {
		return 0, err
	}

	a.logger.Info("launching game as debuggee",
		zap.String("path", args.TargetPath),
		zap.Strings("args", args.ForwardedArgs))

	session, err := a.spawn(args)
	if err != nil {
		return 0, &domain.EnvironmentError{Op: "spawn game process", Err: err}
	}

	// The detach must succeed: a debuggee created this way resumes normal
	// execution once its debugger disappears, but only via an explicit stop.
	if err := win32.DebugActiveProcessStop(session.PID); err != nil {
		return 0, &domain.EnvironmentError{Op: "DebugActiveProcessStop", Err: err}
	}
	session.DebuggerAttached = false

	a.logger.Info("debugger detached", zap.Uint32("pid", session.PID))
	return session.PID, nil
}

// spawn creates the child with debug semantics scoped to only the new
// process, not its descendants.
func (a *Autostart) spawn(args LaunchArgs) (*domain.LaunchSession, error) {
	appName, err := windows.UTF16PtrFromString(args.TargetPath)
	if err != nil {
		return nil, err
	}

	cmdLine := windows.ComposeCommandLine(append([]string{args.TargetPath}, args.ForwardedArgs...))
	cmdLinePtr, err := windows.UTF16PtrFromString(cmdLine)
	if err != nil {
		return nil, err
	}

	si := &windows.StartupInfo{}
	si.Cb = uint32(unsafe.Sizeof(*si))
	pi := &windows.ProcessInformation{}

	// nil environment block inherits this process's environment verbatim.
	err = windows.CreateProcess(
		appName,
		cmdLinePtr,
		nil,
		nil,
		false,
		win32.DEBUG_PROCESS|win32.DEBUG_ONLY_THIS_PROCESS,
		nil,
		nil,
		si,
		pi,
	)
	if err != nil {
		return nil, err
	}

	// Only the pid is tracked further; the watcher model takes over.
	windows.CloseHandle(pi.Thread)
	windows.CloseHandle(pi.Process)

	return &domain.LaunchSession{
		PID:              pi.ProcessId,
		DebuggerAttached: true,
		ForwardedArgs:    args.ForwardedArgs,
	}, nil
}
