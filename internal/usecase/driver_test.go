package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/silvermoth/bg3loader/internal/domain"
)

// mockInjector implements domain.Injector for testing.
type mockInjector struct {
	injectErr error
	calls     []uint32
}

func (m *mockInjector) Inject(pid uint32) (string, domain.RemoteAllocation, error) {
	m.calls = append(m.calls, pid)
	if m.injectErr != nil {
		return "", domain.RemoteAllocation{}, m.injectErr
	}
	return `C:\Temp\loader-abc.dll`, domain.RemoteAllocation{Base: 0x1000, Size: 64}, nil
}

// mockNotifier implements domain.Notifier, recording instead of popping up.
type mockNotifier struct {
	fatals []string
	warns  []string
}

func (m *mockNotifier) Fatal(title, message string) { m.fatals = append(m.fatals, title) }
func (m *mockNotifier) Warn(title, message string)  { m.warns = append(m.warns, title) }

func TestHandleEvent_DiscoveryTriggersInjection(t *testing.T) {
	inj := &mockInjector{}
	n := &mockNotifier{}
	d := NewDriver(inj, n, zap.NewNop())

	d.HandleEvent(domain.DiscoveryEvent{PID: 321})

	require.Equal(t, []uint32{321}, inj.calls)
	assert.Empty(t, n.warns)
	assert.Empty(t, n.fatals)
}

// TestHandleEvent_InjectionFailureWarnsButSurvives verifies a failed attempt
// is surfaced as a retry-suggesting warning and does not escalate to fatal,
// so a persistent watcher keeps running.
func TestHandleEvent_InjectionFailureWarnsButSurvives(t *testing.T) {
	inj := &mockInjector{injectErr: &domain.InjectionError{
		Op: "VirtualAllocEx", PID: 321, Err: errors.New("access denied"),
	}}
	n := &mockNotifier{}
	d := NewDriver(inj, n, zap.NewNop())

	d.HandleEvent(domain.DiscoveryEvent{PID: 321})

	require.Len(t, n.warns, 1)
	assert.Empty(t, n.fatals)
}

func TestHandleEvent_TimeoutIsFatalForOneShotRuns(t *testing.T) {
	inj := &mockInjector{}
	n := &mockNotifier{}
	d := NewDriver(inj, n, zap.NewNop())
	d.FatalOnTimeout = true

	d.HandleEvent(domain.DiscoveryEvent{TimedOut: true})

	assert.Empty(t, inj.calls)
	require.Len(t, n.fatals, 1)
}

func TestHandleEvent_TimeoutIsLoggedOnlyForPersistentRuns(t *testing.T) {
	inj := &mockInjector{}
	n := &mockNotifier{}
	d := NewDriver(inj, n, zap.NewNop())

	d.HandleEvent(domain.DiscoveryEvent{TimedOut: true})

	assert.Empty(t, inj.calls)
	assert.Empty(t, n.fatals)
	assert.Empty(t, n.warns)
}

func TestInject_ReportsResult(t *testing.T) {
	inj := &mockInjector{}
	d := NewDriver(inj, &mockNotifier{}, zap.NewNop())

	res, err := d.Inject(99)
	require.NoError(t, err)

	assert.Equal(t, uint32(99), res.PID)
	assert.Equal(t, `C:\Temp\loader-abc.dll`, res.LoaderPath)
	assert.Equal(t, uintptr(0x1000), res.Allocation.Base)
}
