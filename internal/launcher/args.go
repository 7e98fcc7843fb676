// Package launcher starts the game past its launch interceptor by spawning
// it as a debuggee and detaching immediately.
package launcher

import (
	"github.com/silvermoth/bg3loader/internal/domain"
)

// LaunchArgs is a validated autostart invocation: the trusted game binary
// path plus the arguments forwarded to it verbatim.
type LaunchArgs struct {
	TargetPath    string
	ForwardedArgs []string
}

// ParseLaunchArgs validates an autostart command line of the form
// [game-exe-path-or-name, forwarded args...] against the recognized binary
// variants.
//
// Autostart is never a launcher in its own right: a missing target argument,
// an argument without a filename component, or a filename that is not a game
// binary all mean the user invoked it directly, which is a usage failure.
func ParseLaunchArgs(argv []string, targets domain.TargetPathSet) (LaunchArgs, error) {
	if len(argv) == 0 {
		return LaunchArgs{}, &domain.UsageError{
			Reason: "not a direct launch: no game executable argument",
		}
	}

	name := domain.BaseName(argv[0])
	if name == "" {
		return LaunchArgs{}, &domain.UsageError{
			Reason: "not a direct launch: argument has no filename: " + argv[0],
		}
	}

	// Resolve against the trusted paths from configuration; the launcher
	// must never be pointed at an arbitrary executable.
	path, ok := targets.Resolve(name)
	if !ok {
		return LaunchArgs{}, &domain.UsageError{
			Reason: "not a direct launch: " + name + " is not a recognized game binary",
		}
	}

	return LaunchArgs{TargetPath: path, ForwardedArgs: argv[1:]}, nil
}
