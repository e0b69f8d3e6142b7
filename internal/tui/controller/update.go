package controller

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"unitscope/internal/logstream"
	"unitscope/internal/poller"
	"unitscope/internal/systemd"
	"unitscope/internal/tui/model"
	"unitscope/pkg/logging"
)

const controllerSubsystem = "controller"

// Update is the single message-application point. Every mutation of the
// model happens here, one message at a time, in arrival order.
func Update(msg tea.Msg, m *model.Model) (*model.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKey(m, msg)

	case poller.DiffMsg:
		return handlePollDiff(m, msg)

	case poller.ErrorMsg:
		return handlePollError(m, msg)

	case logstream.BatchMsg:
		return handleLogBatch(m, msg)

	case logstream.StreamErrorMsg:
		return handleLogStreamError(m, msg)

	case model.ControlResultMsg:
		return handleControlResult(m, msg)

	case model.UnitDetailMsg:
		return handleUnitDetail(m, msg)

	case model.UnitRefreshedMsg:
		return handleUnitRefreshed(m, msg)

	case model.ClearBannerMsg:
		if msg.Seq == m.BannerSeq {
			m.ClearBanner()
		}
		return m, nil

	case model.UpdateCheckMsg:
		if msg.Err == nil && msg.Latest != "" {
			m.SetBanner(model.BannerInfo,
				fmt.Sprintf("Version %s is available (run: unitscope self-update)", msg.Latest))
		}
		return m, nil

	case model.CopyResultMsg:
		if msg.Err != nil {
			seq := m.SetBanner(model.BannerError, fmt.Sprintf("Copy failed: %v", msg.Err))
			return m, clearBannerCmd(seq)
		}
		seq := m.SetBanner(model.BannerSuccess, fmt.Sprintf("Copied %d log lines", msg.Lines))
		return m, clearBannerCmd(seq)

	default:
		return m, nil
	}
}

// handlePollDiff applies one poll cycle's change set and restores
// connectivity. This and the channel re-arm are the whole cost of an idle
// tick when the diff is empty.
func handlePollDiff(m *model.Model, msg poller.DiffMsg) (*model.Model, tea.Cmd) {
	prev := ""
	if selected, ok := m.SelectedUnit(); ok {
		prev = selected.Name
	}

	m.Registry.Apply(msg.Diff)
	m.LastPollAt = msg.At
	if m.Connectivity != model.Connected {
		m.Connectivity = model.Connected
		m.ClearBanner()
	}
	m.ClampSelection(prev)
	return m, model.ChannelReaderCmd(m.Msgs)
}

func handlePollError(m *model.Model, msg poller.ErrorMsg) (*model.Model, tea.Cmd) {
	if msg.Consecutive >= model.DisconnectThreshold {
		m.Connectivity = model.Disconnected
	} else {
		m.Connectivity = model.Degraded
	}
	logging.Warn(controllerSubsystem, "poll failure %d: %v", msg.Consecutive, msg.Err)
	m.SetBanner(model.BannerWarning, fmt.Sprintf("Service manager unreachable: %v", msg.Err))
	return m, model.ChannelReaderCmd(m.Msgs)
}

// handleLogBatch appends streamed entries, dropping batches whose
// generation does not match the live subscription.
func handleLogBatch(m *model.Model, msg logstream.BatchMsg) (*model.Model, tea.Cmd) {
	if msg.Gen == m.LogGen && msg.Unit == m.LogUnit && m.LogBuffer != nil {
		m.LogBuffer.Append(msg.Entries...)
	}
	return m, model.ChannelReaderCmd(m.Msgs)
}

func handleLogStreamError(m *model.Model, msg logstream.StreamErrorMsg) (*model.Model, tea.Cmd) {
	if msg.Gen == m.LogGen && msg.Unit == m.LogUnit {
		m.LogStreamErr = msg.Err
		logging.Error(controllerSubsystem, msg.Err, "log stream for %s ended", msg.Unit)
		m.SetBanner(model.BannerError, fmt.Sprintf("Log stream for %s ended: %v", msg.Unit, msg.Err))
	}
	return m, model.ChannelReaderCmd(m.Msgs)
}

// handleControlResult clears the confirmation on every terminal outcome and
// routes each failure class to its own banner.
func handleControlResult(m *model.Model, msg model.ControlResultMsg) (*model.Model, tea.Cmd) {
	m.ControlBusy = false
	m.Pending = nil

	switch {
	case msg.Err == nil:
		seq := m.SetBanner(model.BannerSuccess,
			fmt.Sprintf("%s %s", msg.Unit, msg.Action.PastTense()))
		return m, tea.Batch(refreshUnitCmd(m.Querier, msg.Unit), clearBannerCmd(seq))

	case errors.Is(msg.Err, systemd.ErrNotFound):
		m.Registry.Remove(msg.Unit)
		m.View = model.ViewDashboard
		m.ClampSelection("")
		m.SetBanner(model.BannerWarning, fmt.Sprintf("Unit %s no longer exists", msg.Unit))
		return m, nil

	case errors.Is(msg.Err, systemd.ErrPermissionDenied):
		m.SetBanner(model.BannerError,
			fmt.Sprintf("Permission denied: cannot %s %s", msg.Action, msg.Unit))
		return m, nil

	case errors.Is(msg.Err, systemd.ErrTimeout):
		m.SetBanner(model.BannerError,
			fmt.Sprintf("Timed out waiting to %s %s", msg.Action, msg.Unit))
		return m, nil

	default:
		m.SetBanner(model.BannerError,
			fmt.Sprintf("Failed to %s %s: %v", msg.Action, msg.Unit, msg.Err))
		return m, nil
	}
}

func handleUnitDetail(m *model.Model, msg model.UnitDetailMsg) (*model.Model, tea.Cmd) {
	if m.View != model.ViewDetail || msg.Name != m.DetailUnit {
		return m, nil
	}
	m.DetailLoading = false
	if msg.Err != nil {
		if errors.Is(msg.Err, systemd.ErrNotFound) {
			m.Registry.Remove(msg.Name)
			m.View = model.ViewDashboard
			m.ClampSelection("")
			m.SetBanner(model.BannerWarning, fmt.Sprintf("Unit %s no longer exists", msg.Name))
			return m, nil
		}
		m.SetBanner(model.BannerError, fmt.Sprintf("Could not load %s: %v", msg.Name, msg.Err))
		return m, nil
	}
	m.Registry.Upsert(msg.Unit)
	return m, nil
}

// handleUnitRefreshed applies the targeted re-poll that follows a
// successful control action.
func handleUnitRefreshed(m *model.Model, msg model.UnitRefreshedMsg) (*model.Model, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, systemd.ErrNotFound) {
			prev := ""
			if selected, ok := m.SelectedUnit(); ok && selected.Name != msg.Name {
				prev = selected.Name
			}
			m.Registry.Remove(msg.Name)
			if (m.View == model.ViewDetail && m.DetailUnit == msg.Name) ||
				(m.View == model.ViewLogs && m.LogUnit == msg.Name) {
				m.View = model.ViewDashboard
			}
			m.ClampSelection(prev)
		}
		return m, nil
	}

	prev := ""
	if selected, ok := m.SelectedUnit(); ok {
		prev = selected.Name
	}
	m.Registry.Upsert(msg.Unit)
	m.ClampSelection(prev)
	return m, nil
}
