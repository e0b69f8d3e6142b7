package controller

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"unitscope/internal/release"
	"unitscope/internal/systemd"
	"unitscope/internal/tui/model"
)

// errUnconfirmed rejects a control invocation without a matching confirmed
// pair. It should be unreachable through the key handlers.
var errUnconfirmed = errors.New("control action was not confirmed")

const (
	queryTimeout  = 5 * time.Second
	bannerTimeout = 5 * time.Second
)

// executeControl dispatches a control action, but only when the model holds
// a confirmed pending pair matching exactly this unit and action.
func executeControl(m *model.Model, unit string, action systemd.Action) tea.Cmd {
	if m.Pending == nil || m.Pending.Unit != unit || m.Pending.Action != action {
		return func() tea.Msg {
			return model.ControlResultMsg{Unit: unit, Action: action, Err: errUnconfirmed}
		}
	}
	control := m.Control
	return func() tea.Msg {
		err := control.Apply(context.Background(), unit, action)
		return model.ControlResultMsg{Unit: unit, Action: action, Err: err}
	}
}

// refreshUnitCmd runs the targeted single-unit query after a successful
// control action.
func refreshUnitCmd(querier systemd.Querier, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		unit, err := querier.GetUnit(ctx, name)
		return model.UnitRefreshedMsg{Name: name, Unit: unit, Err: err}
	}
}

// loadDetailCmd fetches the full snapshot backing the detail view.
func loadDetailCmd(querier systemd.Querier, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		unit, err := querier.GetUnit(ctx, name)
		return model.UnitDetailMsg{Name: name, Unit: unit, Err: err}
	}
}

// clearBannerCmd expires the banner with the given sequence after a delay.
func clearBannerCmd(seq int) tea.Cmd {
	return tea.Tick(bannerTimeout, func(time.Time) tea.Msg {
		return model.ClearBannerMsg{Seq: seq}
	})
}

// copyLogsCmd puts the buffered log lines on the system clipboard.
func copyLogsCmd(entries []systemd.LogEntry) tea.Cmd {
	return func() tea.Msg {
		lines := make([]string, len(entries))
		for i, e := range entries {
			lines[i] = e.Raw
		}
		err := clipboard.WriteAll(strings.Join(lines, "\n"))
		return model.CopyResultMsg{Lines: len(lines), Err: err}
	}
}

// checkUpdateCmd runs the startup release check. Failures are swallowed by
// the update handler; an unreachable release host must not disturb the UI.
func checkUpdateCmd(version string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		latest, newer, err := release.CheckLatest(ctx, version)
		if err != nil || !newer {
			return model.UpdateCheckMsg{Err: err}
		}
		return model.UpdateCheckMsg{Latest: latest}
	}
}
