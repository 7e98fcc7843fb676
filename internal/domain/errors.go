package domain

import "errors"

// Error taxonomy. Usage and environment failures are user-visible and fatal;
// injection failures are fatal for the attempt but survivable by a persistent
// watcher; transient scan failures are absorbed by the watcher itself.

// UsageError means the tool was invoked in a malformed way (autostart called
// directly, missing target argument, unrecognized target filename). Not an
// internal fault; the process exits after notifying the user.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Reason
}

// EnvironmentError means the OS refused an operation the tool depends on
// (missing temp dir, process creation denied). Fatal, user-visible, with a
// remediation hint instead of an automatic retry.
type EnvironmentError struct {
	Op  string
	Err error
}

func (e *EnvironmentError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *EnvironmentError) Unwrap() error {
	return e.Err
}

// InjectionError means allocation or write against the target process failed.
// The user is told to restart the game and retry; a persistent watcher keeps
// observing for future process starts.
type InjectionError struct {
	Op  string
	PID uint32
	Err error
}

func (e *InjectionError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *InjectionError) Unwrap() error {
	return e.Err
}

// ErrWatchTimeout is delivered when a bounded watch expires without a match.
var ErrWatchTimeout = errors.New("timed out waiting for game process")

// ErrAlreadyRunning signals a second tool instance; the caller exits silently.
var ErrAlreadyRunning = errors.New("another instance is already running")
