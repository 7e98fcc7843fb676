// Package infra implements infrastructure concerns (process table, popups,
// cross-process coordination objects).
package infra

import (
	"github.com/shirou/gopsutil/v3/process"

	"github.com/silvermoth/bg3loader/internal/domain"
)

// GopsutilLister implements domain.ProcessLister using gopsutil.
type GopsutilLister struct{}

// NewProcessLister creates a process lister.
func NewProcessLister() domain.ProcessLister {
	return &GopsutilLister{}
}

// Snapshot returns the live processes with their image paths. Entries whose
// image path cannot be read (exited mid-scan, access denied) are skipped;
// a single unreadable process must not fail the whole scan.
func (l *GopsutilLister) Snapshot() ([]domain.ProcessInfo, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	infos := make([]domain.ProcessInfo, 0, len(procs))
	for _, p := range procs {
		exe, err := p.Exe()
		if err != nil {
			continue
		}
		infos = append(infos, domain.ProcessInfo{PID: p.Pid, Path: exe})
	}
	return infos, nil
}

// Alive reports whether a pid currently exists.
func (l *GopsutilLister) Alive(pid int32) (bool, error) {
	return process.PidExists(pid)
}

var _ domain.ProcessLister = (*GopsutilLister)(nil)
