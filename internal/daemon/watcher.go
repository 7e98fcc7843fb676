// Package daemon implements the game process watcher.
package daemon

import (
	"context"
	"time"

	"github.com/looplab/fsm"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/silvermoth/bg3loader/internal/domain"
)

// Watcher states.
const (
	StateIdle     = "idle"
	StateWatching = "watching"
	StateResolved = "resolved"
	StateTimedOut = "timed_out"
)

// Watcher state-machine events.
const (
	eventStart   = "start"
	eventResolve = "resolve"
	eventRearm   = "rearm"
	eventExpire  = "expire"
)

// DeliverFunc receives discovery events. It runs on the watcher's own
// goroutine, one call at a time; a new poll cycle does not start while a
// delivery is still executing.
type DeliverFunc func(domain.DiscoveryEvent)

// ProcessWatcher discovers the game process, either by polling the process
// table for the configured binary names or by confirming a known pid.
//
// State machine: idle -> watching -> resolved | timed_out. In persistent mode
// (oneshot=false) resolved re-arms back to watching so a game restart is
// discovered again; timed_out is only reachable with a bounded timeout.
type ProcessWatcher struct {
	spec    domain.WatchSpec
	lister  domain.ProcessLister
	logger  *zap.Logger
	machine *fsm.FSM

	// delivered tracks pids already reported in persistent mode so each
	// observed process start yields exactly one event. Pids drop out once
	// the process is gone, which also handles pid reuse.
	delivered map[int32]bool
}

// NewProcessWatcher creates a watcher for the given spec.
func NewProcessWatcher(spec domain.WatchSpec, lister domain.ProcessLister, logger *zap.Logger) (*ProcessWatcher, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	w := &ProcessWatcher{
		spec:      spec,
		lister:    lister,
		logger:    logger,
		delivered: make(map[int32]bool),
	}

	w.machine = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventStart, Src: []string{StateIdle}, Dst: StateWatching},
			{Name: eventResolve, Src: []string{StateWatching}, Dst: StateResolved},
			{Name: eventRearm, Src: []string{StateResolved}, Dst: StateWatching},
			{Name: eventExpire, Src: []string{StateWatching}, Dst: StateTimedOut},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) {
				logger.Debug("watcher state change",
					zap.String("from", e.Src),
					zap.String("to", e.Dst))
			},
		},
	)

	return w, nil
}

// State returns the current state name (for tests and status logging).
func (w *ProcessWatcher) State() string {
	return w.machine.Current()
}

// Run drives the watch session until it completes or ctx is canceled. Run
// blocks; callers start it on a dedicated goroutine when they need the
// calling thread free (the persistent watcher paired with signal handling).
//
// In one-shot mode exactly one event is delivered: a discovery or, when the
// bounded timeout expires first, a timeout signal. In persistent mode one
// discovery is delivered per observed process start and the session only
// ends through cancellation.
func (w *ProcessWatcher) Run(ctx context.Context, deliver DeliverFunc) error {
	if err := w.machine.Event(eventStart); err != nil {
		return errors.Wrap(err, "watcher already ran")
	}

	w.logger.Info("watching for game process",
		zap.Strings("targets", w.spec.Targets.Names()),
		zap.Int32("known_pid", w.spec.KnownPID),
		zap.Duration("interval", w.spec.Interval),
		zap.Duration("timeout", w.spec.Timeout),
		zap.Bool("oneshot", w.spec.OneShot))

	var deadline <-chan time.Time
	if w.spec.Timeout > 0 {
		timer := time.NewTimer(w.spec.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(w.spec.Interval)
	defer ticker.Stop()

	// Scan immediately; the autostart path expects the freshly spawned pid
	// to be confirmed without waiting out a full interval.
	if done := w.cycle(deliver); done {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopping")
			return ctx.Err()

		case <-deadline:
			if err := w.machine.Event(eventExpire); err != nil {
				return errors.Wrap(err, "expire transition")
			}
			w.logger.Info("watch timed out")
			deliver(domain.DiscoveryEvent{TimedOut: true})
			return nil

		case <-ticker.C:
			if done := w.cycle(deliver); done {
				return nil
			}
		}
	}
}

// cycle runs one poll. Returns true when the session is finished.
func (w *ProcessWatcher) cycle(deliver DeliverFunc) bool {
	pids, err := w.scan()
	if err != nil {
		// Transient: a failed snapshot is "no match this cycle".
		w.logger.Warn("process scan failed", zap.Error(err))
		return false
	}

	matched := make(map[int32]bool, len(pids))
	for _, pid := range pids {
		matched[pid] = true
		if w.delivered[pid] {
			continue
		}

		if err := w.machine.Event(eventResolve); err != nil {
			w.logger.Warn("resolve transition", zap.Error(err))
			return false
		}
		w.logger.Info("game process found", zap.Int32("pid", pid))
		deliver(domain.DiscoveryEvent{PID: pid})

		if w.spec.OneShot {
			return true
		}
		if err := w.machine.Event(eventRearm); err != nil {
			w.logger.Warn("rearm transition", zap.Error(err))
			return true
		}
	}

	// Forget pids whose processes are gone so a relaunch is rediscovered.
	for pid := range w.delivered {
		if !matched[pid] {
			delete(w.delivered, pid)
		}
	}
	for pid := range matched {
		w.delivered[pid] = true
	}

	return false
}

// scan returns the matching pids for this cycle.
func (w *ProcessWatcher) scan() ([]int32, error) {
	if w.spec.KnownPID != 0 {
		alive, err := w.lister.Alive(w.spec.KnownPID)
		if err != nil {
			return nil, err
		}
		if !alive {
			return nil, nil
		}
		return []int32{w.spec.KnownPID}, nil
	}

	infos, err := w.lister.Snapshot()
	if err != nil {
		return nil, err
	}

	var pids []int32
	for _, info := range infos {
		if w.spec.Targets.MatchesPath(info.Path) {
			pids = append(pids, info.PID)
		}
	}
	return pids, nil
}
