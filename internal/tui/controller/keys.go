package controller

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"unitscope/internal/logstream"
	"unitscope/internal/systemd"
	"unitscope/internal/tui/model"
)

// handleKey maps a key event plus the current view/confirmation state to
// exactly one transition. Unmatched keys are ignored in every mode.
func handleKey(m *model.Model, msg tea.KeyMsg) (*model.Model, tea.Cmd) {
	// Search mode captures printable input before anything else.
	if m.Searching {
		return handleSearchKey(m, msg)
	}

	// A pending confirmation narrows the mapping to yes/no.
	if m.Pending != nil {
		return handleConfirmKey(m, msg)
	}

	if key.Matches(msg, m.Keys.Quit) {
		return quit(m)
	}

	switch m.View {
	case model.ViewDashboard:
		return handleDashboardKey(m, msg)
	case model.ViewDetail:
		return handleDetailKey(m, msg)
	case model.ViewLogs:
		return handleLogsKey(m, msg)
	case model.ViewHelp:
		if key.Matches(msg, m.Keys.Back) || key.Matches(msg, m.Keys.Help) {
			m.View = model.ViewDashboard
		}
		return m, nil
	default:
		return m, nil
	}
}

func handleSearchKey(m *model.Model, msg tea.KeyMsg) (*model.Model, tea.Cmd) {
	prev := ""
	if selected, ok := m.SelectedUnit(); ok {
		prev = selected.Name
	}

	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.Searching = false
	case tea.KeyBackspace:
		if len(m.SearchQuery) > 0 {
			runes := []rune(m.SearchQuery)
			m.SearchQuery = string(runes[:len(runes)-1])
		}
	case tea.KeyCtrlC:
		return quit(m)
	case tea.KeySpace:
		m.SearchQuery += " "
	case tea.KeyRunes:
		m.SearchQuery += string(msg.Runes)
	}
	m.ClampSelection(prev)
	return m, nil
}

func handleConfirmKey(m *model.Model, msg tea.KeyMsg) (*model.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Confirm):
		if m.ControlBusy {
			return m, nil
		}
		pending := *m.Pending
		m.ControlBusy = true
		m.SetBanner(model.BannerInfo,
			fmt.Sprintf("%s %s...", pending.Action.Progressive(), pending.Unit))
		return m, executeControl(m, pending.Unit, pending.Action)
	case key.Matches(msg, m.Keys.Cancel):
		if !m.ControlBusy {
			m.Pending = nil
			m.ClearBanner()
		}
		return m, nil
	case key.Matches(msg, m.Keys.Quit):
		return quit(m)
	default:
		// Navigating away abandons the confirmation; anything else is inert.
		if !m.ControlBusy && isNavigationKey(m.Keys, msg) {
			m.Pending = nil
			m.ClearBanner()
			return handleKey(m, msg)
		}
		return m, nil
	}
}

func isNavigationKey(keys model.KeyMap, msg tea.KeyMsg) bool {
	return key.Matches(msg, keys.Up) ||
		key.Matches(msg, keys.Down) ||
		key.Matches(msg, keys.Top) ||
		key.Matches(msg, keys.Bottom) ||
		key.Matches(msg, keys.Enter) ||
		key.Matches(msg, keys.Back) ||
		key.Matches(msg, keys.Logs)
}

func handleDashboardKey(m *model.Model, msg tea.KeyMsg) (*model.Model, tea.Cmd) {
	visible := m.VisibleUnits()

	switch {
	case key.Matches(msg, m.Keys.Up):
		if m.SelectedIndex > 0 {
			m.SelectedIndex--
		}
	case key.Matches(msg, m.Keys.Down):
		if m.SelectedIndex < len(visible)-1 {
			m.SelectedIndex++
		}
	case key.Matches(msg, m.Keys.Top):
		m.SelectedIndex = 0
	case key.Matches(msg, m.Keys.Bottom):
		if len(visible) > 0 {
			m.SelectedIndex = len(visible) - 1
		}

	case key.Matches(msg, m.Keys.Enter):
		if selected, ok := m.SelectedUnit(); ok {
			m.View = model.ViewDetail
			m.DetailUnit = selected.Name
			m.DetailLoading = true
			return m, loadDetailCmd(m.Querier, selected.Name)
		}
	case key.Matches(msg, m.Keys.Logs):
		if selected, ok := m.SelectedUnit(); ok {
			return enterLogs(m, selected.Name)
		}

	case key.Matches(msg, m.Keys.Search):
		m.Searching = true

	case key.Matches(msg, m.Keys.FilterAll):
		return applyFilter(m, model.FilterAll)
	case key.Matches(msg, m.Keys.FilterRunning):
		return applyFilter(m, model.FilterRunning)
	case key.Matches(msg, m.Keys.FilterStopped):
		return applyFilter(m, model.FilterStopped)
	case key.Matches(msg, m.Keys.FilterFailed):
		return applyFilter(m, model.FilterFailed)

	case key.Matches(msg, m.Keys.Start):
		return requestControl(m, systemd.ActionStart)
	case key.Matches(msg, m.Keys.Stop):
		return requestControl(m, systemd.ActionStop)
	case key.Matches(msg, m.Keys.Restart):
		return requestControl(m, systemd.ActionRestart)
	case key.Matches(msg, m.Keys.Reload):
		return requestControl(m, systemd.ActionReload)
	case key.Matches(msg, m.Keys.Enable):
		return requestControl(m, systemd.ActionEnable)
	case key.Matches(msg, m.Keys.Disable):
		return requestControl(m, systemd.ActionDisable)

	case key.Matches(msg, m.Keys.Refresh):
		m.Poller.Refresh()
	case key.Matches(msg, m.Keys.Help):
		m.View = model.ViewHelp

	case key.Matches(msg, m.Keys.Back):
		if m.SearchQuery != "" {
			prev := ""
			if selected, ok := m.SelectedUnit(); ok {
				prev = selected.Name
			}
			m.SearchQuery = ""
			m.ClampSelection(prev)
		} else {
			return quit(m)
		}
	}
	return m, nil
}

func handleDetailKey(m *model.Model, msg tea.KeyMsg) (*model.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Logs):
		return enterLogs(m, m.DetailUnit)
	case key.Matches(msg, m.Keys.Start):
		return requestControlFor(m, m.DetailUnit, systemd.ActionStart)
	case key.Matches(msg, m.Keys.Stop):
		return requestControlFor(m, m.DetailUnit, systemd.ActionStop)
	case key.Matches(msg, m.Keys.Restart):
		return requestControlFor(m, m.DetailUnit, systemd.ActionRestart)
	case key.Matches(msg, m.Keys.Reload):
		return requestControlFor(m, m.DetailUnit, systemd.ActionReload)
	case key.Matches(msg, m.Keys.Enable):
		return requestControlFor(m, m.DetailUnit, systemd.ActionEnable)
	case key.Matches(msg, m.Keys.Disable):
		return requestControlFor(m, m.DetailUnit, systemd.ActionDisable)
	case key.Matches(msg, m.Keys.Help):
		m.View = model.ViewHelp
	case key.Matches(msg, m.Keys.Back):
		m.View = model.ViewDashboard
		m.DetailUnit = ""
	}
	return m, nil
}

func handleLogsKey(m *model.Model, msg tea.KeyMsg) (*model.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.PauseLogs):
		m.LogPaused = !m.LogPaused
		m.Streams.Pause(m.LogPaused)
	case key.Matches(msg, m.Keys.ClearLogs):
		if m.LogBuffer != nil {
			m.LogBuffer.Clear()
		}
	case key.Matches(msg, m.Keys.CopyLogs):
		if m.LogBuffer != nil {
			return m, copyLogsCmd(m.LogBuffer.Entries())
		}
	case key.Matches(msg, m.Keys.Help):
		m.View = model.ViewHelp
	case key.Matches(msg, m.Keys.Back):
		return leaveLogs(m)
	}
	return m, nil
}

// enterLogs starts (or switches) the journal subscription and allocates a
// fresh buffer. Starting is synchronous: the generation must be recorded
// before any batch from the new stream can arrive.
func enterLogs(m *model.Model, unit string) (*model.Model, tea.Cmd) {
	if m.LogUnit != unit {
		gen, err := m.Streams.Start(context.Background(), unit)
		m.LogGen = gen
		if err != nil {
			// Start already tore down the previous subscription, so the model
			// must not keep claiming it; a later re-entry starts fresh.
			m.LogUnit = ""
			m.LogBuffer = nil
			m.LogPaused = false
			m.LogStreamErr = nil
			m.SetBanner(model.BannerError, fmt.Sprintf("Cannot stream logs for %s: %v", unit, err))
			return m, nil
		}
		m.LogUnit = unit
		m.LogBuffer = newLogBuffer(m)
		m.LogPaused = false
		m.LogStreamErr = nil
	}
	m.View = model.ViewLogs
	return m, nil
}

// leaveLogs cancels the subscription and discards the buffer.
func leaveLogs(m *model.Model) (*model.Model, tea.Cmd) {
	m.Streams.Stop()
	m.LogGen = m.Streams.Gen()
	m.LogUnit = ""
	m.LogBuffer = nil
	m.LogPaused = false
	m.LogStreamErr = nil
	if m.DetailUnit != "" {
		m.View = model.ViewDetail
	} else {
		m.View = model.ViewDashboard
	}
	return m, nil
}

func applyFilter(m *model.Model, f model.Filter) (*model.Model, tea.Cmd) {
	prev := ""
	if selected, ok := m.SelectedUnit(); ok {
		prev = selected.Name
	}
	m.Filter = f
	m.ClampSelection(prev)
	return m, nil
}

// requestControl arms a confirmation for the selected unit.
func requestControl(m *model.Model, action systemd.Action) (*model.Model, tea.Cmd) {
	selected, ok := m.SelectedUnit()
	if !ok {
		return m, nil
	}
	return requestControlFor(m, selected.Name, action)
}

func requestControlFor(m *model.Model, unit string, action systemd.Action) (*model.Model, tea.Cmd) {
	if unit == "" {
		return m, nil
	}
	m.Pending = &model.Confirmation{Unit: unit, Action: action}
	m.SetBanner(model.BannerWarning,
		fmt.Sprintf("%s %s? y to confirm, n to cancel", capitalizedVerb(action), unit))
	return m, nil
}

func newLogBuffer(m *model.Model) *logstream.Buffer {
	return logstream.NewBuffer(m.Config.LogBufferSize)
}

func quit(m *model.Model) (*model.Model, tea.Cmd) {
	m.Quitting = true
	m.Streams.Stop()
	m.Poller.Stop()
	return m, tea.Quit
}

func capitalizedVerb(action systemd.Action) string {
	switch action {
	case systemd.ActionStart:
		return "Start"
	case systemd.ActionStop:
		return "Stop"
	case systemd.ActionRestart:
		return "Restart"
	case systemd.ActionReload:
		return "Reload"
	case systemd.ActionEnable:
		return "Enable"
	case systemd.ActionDisable:
		return "Disable"
	default:
		return "Change"
	}
}
