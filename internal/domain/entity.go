// Package domain contains core entities and interfaces.
// This is the innermost layer - no external dependencies besides time.
package domain

import (
	"strings"
	"time"
)

// TargetPathSet holds the trusted absolute paths of every recognized game
// binary variant, keyed by canonical lowercase executable filename.
// Resolved once from configuration and immutable afterwards.
type TargetPathSet struct {
	paths map[string]string
}

// NewTargetPathSet builds a set from absolute binary paths.
// Every path must carry a filename component.
func NewTargetPathSet(paths ...string) (TargetPathSet, error) {
	set := TargetPathSet{paths: make(map[string]string, len(paths))}
	for _, p := range paths {
		name := BaseName(p)
		if name == "" {
			return TargetPathSet{}, &UsageError{Reason: "target path has no filename component: " + p}
		}
		set.paths[strings.ToLower(name)] = p
	}
	return set, nil
}

// Resolve maps an executable filename (any case) to its trusted absolute path.
func (s TargetPathSet) Resolve(filename string) (string, bool) {
	p, ok := s.paths[strings.ToLower(filename)]
	return p, ok
}

// MatchesPath reports whether an image path's filename belongs to the set.
// Matching is a logical OR over all configured variants.
func (s TargetPathSet) MatchesPath(imagePath string) bool {
	name := BaseName(imagePath)
	if name == "" {
		return false
	}
	_, ok := s.paths[strings.ToLower(name)]
	return ok
}

// Names returns the canonical lowercase filenames in the set.
func (s TargetPathSet) Names() []string {
	names := make([]string, 0, len(s.paths))
	for name := range s.paths {
		names = append(names, name)
	}
	return names
}

// Len returns the number of configured variants.
func (s TargetPathSet) Len() int {
	return len(s.paths)
}

// BaseName extracts the last path component, accepting both windows and
// forward-slash separators. Returns "" when no filename is present.
func BaseName(path string) string {
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		path = path[i+1:]
	}
	if path == "" || path == "." || path == ".." {
		return ""
	}
	return path
}

// WatchSpec configures a single watch session. Immutable for its lifetime.
type WatchSpec struct {
	Targets TargetPathSet

	// KnownPID skips process-table scanning: the watcher only confirms this
	// pid is alive. Used by the autostart path which already spawned the game.
	KnownPID int32

	// Interval between process-table scans. Must be > 0.
	Interval time.Duration

	// Timeout bounds the session. Zero means never expire (persistent mode).
	Timeout time.Duration

	// OneShot stops the session after the first discovery.
	OneShot bool
}

// Validate checks spec invariants.
func (s WatchSpec) Validate() error {
	if s.Interval <= 0 {
		return &UsageError{Reason: "watch interval must be positive"}
	}
	if s.KnownPID == 0 && s.Targets.Len() == 0 {
		return &UsageError{Reason: "watch spec needs targets or a known pid"}
	}
	return nil
}

// DiscoveryEvent is the tagged result of a watch session: either a discovered
// process id or a timeout signal. Exactly one field is meaningful.
type DiscoveryEvent struct {
	PID      int32
	TimedOut bool
}

// ProcessInfo is one entry of a process-table snapshot.
type ProcessInfo struct {
	PID  int32
	Path string // absolute image path; may be empty when unreadable
}

// RemoteAllocation describes memory allocated inside the target process.
// The base address is only meaningful within that process and only while it
// lives; this tool never frees it.
type RemoteAllocation struct {
	Base uintptr
	Size int
}

// LaunchSession tracks one debug-bypass launch attempt. Discarded after the
// debugger detaches; the watcher model takes over using the bare pid.
type LaunchSession struct {
	PID              uint32
	DebuggerAttached bool
	ForwardedArgs    []string
}
