package controller

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unitscope/internal/config"
	"unitscope/internal/logstream"
	"unitscope/internal/poller"
	"unitscope/internal/registry"
	"unitscope/internal/systemd"
	"unitscope/internal/tui/model"
	"unitscope/pkg/logging"
)

func TestMain(m *testing.M) {
	logging.InitDiscard()
	os.Exit(m.Run())
}

type fakeControl struct {
	mu     sync.Mutex
	calls  []string
	result error
}

func (f *fakeControl) Apply(_ context.Context, unit string, action systemd.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, action.String()+" "+unit)
	return f.result
}

type stubQuerier struct {
	unit systemd.ServiceUnit
	err  error
}

func (s *stubQuerier) ListUnits(context.Context) ([]systemd.ServiceUnit, error) {
	return nil, errors.New("not scripted")
}

func (s *stubQuerier) GetUnit(context.Context, string) (systemd.ServiceUnit, error) {
	return s.unit, s.err
}

func testUnit(name string, state systemd.ActiveState) systemd.ServiceUnit {
	return systemd.ServiceUnit{Name: name, LoadState: systemd.LoadStateLoaded, ActiveState: state}
}

func newTestModel(t *testing.T, units ...systemd.ServiceUnit) *model.Model {
	t.Helper()
	m := model.New(config.Default(), &stubQuerier{}, &fakeControl{}, systemd.ScopeSystem, "test")
	// A fake journal source keeps tests from spawning subprocesses.
	m.Streams = logstream.NewManager(
		func(context.Context, string) (logstream.EntrySource, error) {
			return &idleSource{done: make(chan struct{})}, nil
		},
		m.Msgs,
	)
	m.Registry.Apply(registry.Compute(nil, units))
	if len(units) > 0 {
		m.Connectivity = model.Connected
	}
	return m
}

// idleSource blocks until stopped and then ends cleanly.
type idleSource struct {
	done chan struct{}
	once sync.Once
}

func (s *idleSource) Next() (systemd.LogEntry, bool) {
	<-s.done
	return systemd.LogEntry{}, false
}

func (s *idleSource) Err() error { return nil }

func (s *idleSource) Stop() { s.once.Do(func() { close(s.done) }) }

func TestPollDiffRestoresConnectivity(t *testing.T) {
	m := newTestModel(t)
	require.Equal(t, model.Disconnected, m.Connectivity)
	m.SetBanner(model.BannerWarning, "stale connectivity warning")

	diff := registry.Compute(nil, []systemd.ServiceUnit{testUnit("a.service", systemd.ActiveStateActive)})
	m, _ = Update(poller.DiffMsg{Diff: diff, At: time.Now()}, m)

	assert.Equal(t, model.Connected, m.Connectivity)
	assert.Equal(t, 1, m.Registry.Len())
	assert.Empty(t, m.Banner.Text, "successful poll clears the connectivity banner")
}

func TestPollErrorDegradesThenDisconnects(t *testing.T) {
	m := newTestModel(t, testUnit("a.service", systemd.ActiveStateActive))

	m, _ = Update(poller.ErrorMsg{Err: errors.New("bus down"), Consecutive: 1}, m)
	assert.Equal(t, model.Degraded, m.Connectivity)
	assert.NotEmpty(t, m.Banner.Text)

	m, _ = Update(poller.ErrorMsg{Err: errors.New("bus down"), Consecutive: 2}, m)
	assert.Equal(t, model.Degraded, m.Connectivity)

	m, _ = Update(poller.ErrorMsg{Err: errors.New("bus down"), Consecutive: 3}, m)
	assert.Equal(t, model.Disconnected, m.Connectivity)

	// Registry still holds the last known snapshot.
	assert.Equal(t, 1, m.Registry.Len())
}

func TestPollDiffKeepsSelectedUnit(t *testing.T) {
	m := newTestModel(t,
		testUnit("a.service", systemd.ActiveStateActive),
		testUnit("b.service", systemd.ActiveStateActive),
		testUnit("c.service", systemd.ActiveStateActive),
	)
	m.SelectedIndex = 1 // b.service

	// a.service disappears; b keeps its identity, now at index 0.
	next := []systemd.ServiceUnit{
		testUnit("b.service", systemd.ActiveStateActive),
		testUnit("c.service", systemd.ActiveStateActive),
	}
	diff := registry.Compute(m.Registry.Units(), next)
	m, _ = Update(poller.DiffMsg{Diff: diff, At: time.Now()}, m)

	selected, ok := m.SelectedUnit()
	require.True(t, ok)
	assert.Equal(t, "b.service", selected.Name)
}

func TestStaleGenerationBatchIsDropped(t *testing.T) {
	m := newTestModel(t, testUnit("a.service", systemd.ActiveStateActive))
	m, _ = enterLogs(m, "a.service")
	require.Equal(t, model.ViewLogs, m.View)
	gen := m.LogGen

	entry := systemd.LogEntry{Unit: "a.service", Message: "live", Raw: "live"}
	m, _ = Update(logstream.BatchMsg{Gen: gen, Unit: "a.service", Entries: []systemd.LogEntry{entry}}, m)
	assert.Equal(t, 1, m.LogBuffer.Len())

	stale := systemd.LogEntry{Unit: "a.service", Message: "stale", Raw: "stale"}
	m, _ = Update(logstream.BatchMsg{Gen: gen - 1, Unit: "a.service", Entries: []systemd.LogEntry{stale}}, m)
	assert.Equal(t, 1, m.LogBuffer.Len(), "batch from a cancelled subscription is discarded")
}

func TestStreamErrorSetsBannerWithoutRestart(t *testing.T) {
	m := newTestModel(t, testUnit("a.service", systemd.ActiveStateActive))
	m, _ = enterLogs(m, "a.service")

	m, _ = Update(logstream.StreamErrorMsg{Gen: m.LogGen, Unit: "a.service", Err: errors.New("feed broke")}, m)
	assert.ErrorContains(t, m.LogStreamErr, "feed broke")
	assert.Contains(t, m.Banner.Text, "a.service")
	assert.Equal(t, model.ViewLogs, m.View, "stream failure does not force a view change")
}

func TestControlResultSuccessClearsPendingAndRefreshes(t *testing.T) {
	m := newTestModel(t, testUnit("a.service", systemd.ActiveStateInactive))
	m.Pending = &model.Confirmation{Unit: "a.service", Action: systemd.ActionStart}
	m.ControlBusy = true

	var cmd tea.Cmd
	m, cmd = Update(model.ControlResultMsg{Unit: "a.service", Action: systemd.ActionStart}, m)

	assert.Nil(t, m.Pending)
	assert.False(t, m.ControlBusy)
	assert.Contains(t, m.Banner.Text, "started")
	assert.NotNil(t, cmd, "success schedules the targeted re-poll")
}

func TestControlResultDistinguishesFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantBanner string
	}{
		{"permission", systemd.ErrPermissionDenied, "Permission denied"},
		{"timeout", systemd.ErrTimeout, "Timed out"},
		{"other", errors.New("job failed"), "Failed to"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestModel(t, testUnit("a.service", systemd.ActiveStateActive))
			m.Pending = &model.Confirmation{Unit: "a.service", Action: systemd.ActionStop}

			m, _ = Update(model.ControlResultMsg{Unit: "a.service", Action: systemd.ActionStop, Err: tc.err}, m)
			assert.Nil(t, m.Pending, "confirmation clears on every terminal outcome")
			assert.Contains(t, m.Banner.Text, tc.wantBanner)
			assert.Equal(t, model.ViewDashboard, m.View)
		})
	}
}

func TestControlResultNotFoundReturnsToDashboard(t *testing.T) {
	m := newTestModel(t,
		testUnit("a.service", systemd.ActiveStateActive),
		testUnit("b.service", systemd.ActiveStateActive),
	)
	m.View = model.ViewDetail
	m.DetailUnit = "b.service"
	m.Pending = &model.Confirmation{Unit: "b.service", Action: systemd.ActionRestart}

	m, _ = Update(model.ControlResultMsg{
		Unit: "b.service", Action: systemd.ActionRestart, Err: systemd.ErrNotFound,
	}, m)

	assert.Equal(t, model.ViewDashboard, m.View)
	_, exists := m.Registry.Get("b.service")
	assert.False(t, exists, "vanished unit is dropped from the registry")
	selected, ok := m.SelectedUnit()
	require.True(t, ok)
	assert.Equal(t, "a.service", selected.Name)
}

func TestExecuteControlRejectsUnconfirmedInvocation(t *testing.T) {
	m := newTestModel(t, testUnit("a.service", systemd.ActiveStateActive))
	control := &fakeControl{}
	m.Control = control

	// Pending pair does not match the requested action.
	m.Pending = &model.Confirmation{Unit: "a.service", Action: systemd.ActionStop}
	cmd := executeControl(m, "a.service", systemd.ActionStart)
	msg := cmd().(model.ControlResultMsg)
	assert.ErrorIs(t, msg.Err, errUnconfirmed)
	assert.Empty(t, control.calls, "nothing is dispatched without a matching confirmation")

	// No pending confirmation at all.
	m.Pending = nil
	msg = executeControl(m, "a.service", systemd.ActionStart)().(model.ControlResultMsg)
	assert.ErrorIs(t, msg.Err, errUnconfirmed)
}

func TestExecuteControlDispatchesConfirmedAction(t *testing.T) {
	m := newTestModel(t, testUnit("a.service", systemd.ActiveStateInactive))
	control := &fakeControl{}
	m.Control = control
	m.Pending = &model.Confirmation{Unit: "a.service", Action: systemd.ActionStart}

	msg := executeControl(m, "a.service", systemd.ActionStart)().(model.ControlResultMsg)
	assert.NoError(t, msg.Err)
	assert.Equal(t, []string{"start a.service"}, control.calls)
}

func TestUnitRefreshedUpdatesRegistry(t *testing.T) {
	m := newTestModel(t, testUnit("a.service", systemd.ActiveStateInactive))

	m, _ = Update(model.UnitRefreshedMsg{
		Name: "a.service",
		Unit: testUnit("a.service", systemd.ActiveStateActive),
	}, m)

	got, ok := m.Registry.Get("a.service")
	require.True(t, ok)
	assert.Equal(t, systemd.ActiveStateActive, got.ActiveState)
}

func TestClearBannerIgnoresStaleSequence(t *testing.T) {
	m := newTestModel(t)
	m.SetBanner(model.BannerInfo, "first")
	staleSeq := m.BannerSeq
	m.SetBanner(model.BannerError, "second")

	m, _ = Update(model.ClearBannerMsg{Seq: staleSeq}, m)
	assert.Equal(t, "second", m.Banner.Text, "clear for a superseded banner is dropped")

	m, _ = Update(model.ClearBannerMsg{Seq: m.BannerSeq}, m)
	assert.Empty(t, m.Banner.Text)
}

func TestUpdateCheckSetsBannerOnlyWhenNewer(t *testing.T) {
	m := newTestModel(t)
	m, _ = Update(model.UpdateCheckMsg{Err: errors.New("offline")}, m)
	assert.Empty(t, m.Banner.Text, "a failed release check stays silent")

	m, _ = Update(model.UpdateCheckMsg{Latest: "1.2.3"}, m)
	assert.Contains(t, m.Banner.Text, "1.2.3")
}
