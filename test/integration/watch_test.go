//go:build integration

package integration

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/silvermoth/bg3loader/internal/daemon"
	"github.com/silvermoth/bg3loader/internal/domain"
	"github.com/silvermoth/bg3loader/test/fixtures"
)

// eventRecorder collects discovery events thread-safely.
type eventRecorder struct {
	mu     sync.Mutex
	events []domain.DiscoveryEvent
}

func (r *eventRecorder) deliver(ev domain.DiscoveryEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) snapshot() []domain.DiscoveryEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.DiscoveryEvent, len(r.events))
	copy(out, r.events)
	return out
}

var _ = Describe("Process watcher", func() {
	var (
		table    *fixtures.FakeProcessTable
		recorder *eventRecorder
		targets  domain.TargetPathSet
	)

	BeforeEach(func() {
		table = fixtures.NewFakeProcessTable()
		recorder = &eventRecorder{}

		var err error
		targets, err = domain.NewTargetPathSet(
			`C:\Games\BG3\bin\bg3.exe`,
			`C:\Games\BG3\bin\bg3_dx11.exe`,
		)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("persistent mode", func() {
		It("injects on every game start across restarts", func() {
			spec := domain.WatchSpec{
				Targets:  targets,
				Interval: 5 * time.Millisecond,
			}
			watcher, err := daemon.NewProcessWatcher(spec, table, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- watcher.Run(ctx, recorder.deliver)
			}()

			By("discovering the first launch")
			table.Start(1001, `C:\Games\BG3\bin\bg3.exe`)
			Eventually(recorder.snapshot).Should(HaveLen(1))
			Expect(recorder.snapshot()[0].PID).To(Equal(int32(1001)))

			By("staying quiet while the game keeps running")
			Consistently(recorder.snapshot, 50*time.Millisecond).Should(HaveLen(1))

			By("discovering a relaunch with a different renderer")
			table.Exit(1001)
			time.Sleep(20 * time.Millisecond)
			table.Start(1002, `C:\Games\BG3\bin\BG3_DX11.EXE`)
			Eventually(recorder.snapshot).Should(HaveLen(2))
			Expect(recorder.snapshot()[1].PID).To(Equal(int32(1002)))

			cancel()
			Eventually(done).Should(Receive(MatchError(context.Canceled)))
		})

		It("keeps polling through scan failures", func() {
			spec := domain.WatchSpec{
				Targets:  targets,
				Interval: 5 * time.Millisecond,
			}
			watcher, err := daemon.NewProcessWatcher(spec, table, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go func() {
				_ = watcher.Run(ctx, recorder.deliver)
			}()

			table.FailNextScans(context.DeadlineExceeded)
			Consistently(recorder.snapshot, 30*time.Millisecond).Should(BeEmpty())

			table.FailNextScans(nil)
			table.Start(2001, `C:\Games\BG3\bin\bg3.exe`)
			Eventually(recorder.snapshot).Should(HaveLen(1))
		})
	})

	Describe("one-shot mode", func() {
		It("delivers exactly one timeout when the game never appears", func() {
			spec := domain.WatchSpec{
				Targets:  targets,
				Interval: 5 * time.Millisecond,
				Timeout:  40 * time.Millisecond,
				OneShot:  true,
			}
			watcher, err := daemon.NewProcessWatcher(spec, table, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			Expect(watcher.Run(context.Background(), recorder.deliver)).To(Succeed())

			events := recorder.snapshot()
			Expect(events).To(HaveLen(1))
			Expect(events[0].TimedOut).To(BeTrue())
			Expect(watcher.State()).To(Equal(daemon.StateTimedOut))
		})

		It("stops after the first discovery", func() {
			table.Start(3001, `C:\Games\BG3\bin\bg3.exe`)
			table.Start(3002, `C:\Games\BG3\bin\bg3.exe`)

			spec := domain.WatchSpec{
				Targets:  targets,
				Interval: 5 * time.Millisecond,
				Timeout:  time.Second,
				OneShot:  true,
			}
			watcher, err := daemon.NewProcessWatcher(spec, table, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			Expect(watcher.Run(context.Background(), recorder.deliver)).To(Succeed())
			Expect(recorder.snapshot()).To(HaveLen(1))
			Expect(watcher.State()).To(Equal(daemon.StateResolved))
		})
	})
})
