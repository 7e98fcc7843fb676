// Package usecase contains the injection orchestration logic.
package usecase

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/silvermoth/bg3loader/internal/domain"
)

// InjectionResult captures one completed injection.
type InjectionResult struct {
	PID        uint32
	LoaderPath string
	Allocation domain.RemoteAllocation
	ExecutedAt time.Time
	DurationMs int64
}

// Driver reacts to watcher discoveries by injecting the loader into the
// discovered process. It is handed to ProcessWatcher.Run as the delivery
// callback, so it executes on the watcher's goroutine; injection is quick
// and each discovery is a one-time event per process start, so blocking the
// poll loop for its duration is acceptable.
type Driver struct {
	injector domain.Injector
	notifier domain.Notifier
	logger   *zap.Logger

	// FatalOnTimeout makes a timeout terminal and user-visible. Set for
	// one-shot runs; persistent watchers never time out.
	FatalOnTimeout bool
}

// NewDriver creates an injection driver.
func NewDriver(injector domain.Injector, notifier domain.Notifier, logger *zap.Logger) *Driver {
	return &Driver{injector: injector, notifier: notifier, logger: logger}
}

// HandleEvent is the watcher delivery callback.
func (d *Driver) HandleEvent(ev domain.DiscoveryEvent) {
	if ev.TimedOut {
		d.handleTimeout()
		return
	}

	d.logger.Info("received discovery, injecting", zap.Int32("pid", ev.PID))
	if _, err := d.Inject(uint32(ev.PID)); err != nil {
		// Fatal for this attempt only; a persistent watcher keeps observing
		// for future process starts.
		d.logger.Error("injection failed", zap.Int32("pid", ev.PID), zap.Error(err))
		d.notifier.Warn("Process injection failure",
			fmt.Sprintf("Failed to inject the plugin loader into the game process.\n\n"+
				"Recommend restarting the game and trying again.\n\nError: %v", err))
	}
}

// Inject runs one injection attempt against pid.
func (d *Driver) Inject(pid uint32) (*InjectionResult, error) {
	start := time.Now()

	loaderPath, alloc, err := d.injector.Inject(pid)
	if err != nil {
		return nil, err
	}

	result := &InjectionResult{
		PID:        pid,
		LoaderPath: loaderPath,
		Allocation: alloc,
		ExecutedAt: start,
		DurationMs: time.Since(start).Milliseconds(),
	}

	d.logger.Info("injection completed",
		zap.Uint32("pid", pid),
		zap.String("loader", loaderPath),
		zap.Int64("duration_ms", result.DurationMs))

	return result, nil
}

func (d *Driver) handleTimeout() {
	if !d.FatalOnTimeout {
		d.logger.Warn("watch timed out")
		return
	}

	d.notifier.Fatal("Fatal Error",
		"Game process was not found.\n\n"+
			"Either the game isn't running, so this tool timed out waiting for it, "+
			"or the game wasn't detected because the install_root config value "+
			"isn't correct.\n\n"+
			"In rare cases the program may lack permission to open the game "+
			"process; running elevated can help as a last resort.")
}
