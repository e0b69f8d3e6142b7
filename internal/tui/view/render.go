// Package view projects the model into terminal frames. Every function here
// is a pure read of the model; nothing in this package mutates state.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"unitscope/internal/systemd"
	"unitscope/internal/tui/model"
)

// Render produces the complete frame for the current model state.
func Render(m *model.Model) string {
	if m.Quitting {
		return "Shutting down...\n"
	}
	if m.Width == 0 || m.Height == 0 {
		return "Loading... (waiting for window size)"
	}

	var body string
	switch m.View {
	case model.ViewDetail:
		body = renderDetail(m)
	case model.ViewLogs:
		body = renderLogs(m)
	case model.ViewHelp:
		body = renderHelp(m)
	default:
		body = renderDashboard(m)
	}

	sections := []string{renderHeader(m)}
	if banner := renderBanner(m); banner != "" {
		sections = append(sections, banner)
	}
	sections = append(sections, body, renderFooter(m))
	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func renderHeader(m *model.Model) string {
	title := titleStyle.Render("unitscope")
	scope := headerInfoStyle.Render(fmt.Sprintf(" %s scope", m.Scope))

	conn := m.Connectivity.String()
	var connStyled string
	switch m.Connectivity {
	case model.Connected:
		connStyled = runningStyle.Render(conn)
	case model.Degraded:
		connStyled = pendingStyle.Render(conn)
	default:
		connStyled = failedStyle.Render(conn)
	}

	info := fmt.Sprintf("%s │ %d units", connStyled, m.Registry.Len())
	if !m.LastPollAt.IsZero() {
		info += headerInfoStyle.Render(fmt.Sprintf(" │ polled %s", m.LastPollAt.Format("15:04:05")))
	}
	gap := m.Width - lipgloss.Width(title) - lipgloss.Width(scope) - lipgloss.Width(info) - 2
	if gap < 1 {
		gap = 1
	}
	return title + scope + strings.Repeat(" ", gap) + info
}

func renderBanner(m *model.Model) string {
	if m.Banner.Text == "" {
		return ""
	}
	text := truncate(m.Banner.Text, m.Width-4)
	switch m.Banner.Kind {
	case model.BannerSuccess:
		return bannerSuccessStyle.Render(text)
	case model.BannerWarning:
		return bannerWarningStyle.Render(text)
	case model.BannerError:
		return bannerErrorStyle.Render(text)
	default:
		return bannerInfoStyle.Render(text)
	}
}

func renderFooter(m *model.Model) string {
	var hints []string
	switch {
	case m.Searching:
		hints = []string{"enter/esc finish search", "backspace delete"}
	case m.Pending != nil:
		hints = []string{"y confirm", "n/esc cancel"}
	default:
		switch m.View {
		case model.ViewDetail:
			hints = []string{"l logs", "S/T/R/L control", "E/D enable/disable", "esc back", "? help"}
		case model.ViewLogs:
			hints = []string{"p pause", "c clear", "y copy", "esc back", "? help"}
		case model.ViewHelp:
			hints = []string{"esc close"}
		default:
			hints = []string{"↑↓ move", "enter details", "l logs", "/ search", "a/r/s/f filter", "? help", "q quit"}
		}
	}
	return footerStyle.Render(truncate(strings.Join(hints, " │ "), m.Width-2))
}

// statusIcon pairs an icon with a style for a unit's activation state.
func statusIcon(state systemd.ActiveState) (string, lipgloss.Style) {
	switch state {
	case systemd.ActiveStateActive:
		return iconRunning, runningStyle
	case systemd.ActiveStateFailed:
		return iconFailed, failedStyle
	case systemd.ActiveStateInactive:
		return iconStopped, stoppedStyle
	case systemd.ActiveStateActivating, systemd.ActiveStateDeactivating, systemd.ActiveStateReloading:
		return iconPending, pendingStyle
	default:
		return iconUnknown, dimStyle
	}
}

// truncate cuts s to the given display width, appending an ellipsis when
// anything was removed. Width-aware so wide runes do not break alignment.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// pad right-pads s to the given display width.
func pad(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}
