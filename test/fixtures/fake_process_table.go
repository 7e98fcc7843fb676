// Package fixtures provides test doubles shared by the integration suite.
package fixtures

import (
	"sync"

	"github.com/silvermoth/bg3loader/internal/domain"
)

// FakeProcessTable is a programmable domain.ProcessLister. Tests script
// process starts and exits; the watcher under test observes them through
// the normal Snapshot/Alive calls.
type FakeProcessTable struct {
	mu    sync.Mutex
	procs map[int32]string
	err   error
}

// NewFakeProcessTable creates an empty table.
func NewFakeProcessTable() *FakeProcessTable {
	return &FakeProcessTable{procs: make(map[int32]string)}
}

// Start adds a process with the given image path.
func (f *FakeProcessTable) Start(pid int32, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.procs[pid] = path
}

// Exit removes a process.
func (f *FakeProcessTable) Exit(pid int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.procs, pid)
}

// FailNextScans makes Snapshot and Alive return err until cleared with nil.
func (f *FakeProcessTable) FailNextScans(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Snapshot implements domain.ProcessLister.
func (f *FakeProcessTable) Snapshot() ([]domain.ProcessInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.ProcessInfo, 0, len(f.procs))
	for pid, path := range f.procs {
		out = append(out, domain.ProcessInfo{PID: pid, Path: path})
	}
	return out, nil
}

// Alive implements domain.ProcessLister.
func (f *FakeProcessTable) Alive(pid int32) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.procs[pid]
	return ok, nil
}

var _ domain.ProcessLister = (*FakeProcessTable)(nil)
