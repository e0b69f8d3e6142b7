package view

import (
	"fmt"
	"strings"

	"unitscope/internal/tui/model"
)

// chromeLines is the vertical space taken by header, banner area, column
// titles, and footer around the unit table.
const chromeLines = 6

func renderDashboard(m *model.Model) string {
	var b strings.Builder

	if m.Searching || m.SearchQuery != "" {
		prompt := searchPromptStyle.Render("/")
		cursor := ""
		if m.Searching {
			cursor = "█"
		}
		b.WriteString(fmt.Sprintf("%s%s%s\n", prompt, m.SearchQuery, cursor))
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("Filter: %s", m.Filter)))
	b.WriteString("\n")

	visible := m.VisibleUnits()
	if len(visible) == 0 {
		if m.Registry.Len() == 0 && m.Connectivity != model.Connected {
			b.WriteString(dimStyle.Render("Waiting for the service manager..."))
		} else {
			b.WriteString(dimStyle.Render("No units match the current filter."))
		}
		return b.String()
	}

	nameWidth := 36
	stateWidth := 12
	descWidth := m.Width - nameWidth - stateWidth - 8
	if descWidth < 10 {
		descWidth = 10
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s %s %s",
		pad("UNIT", nameWidth), pad("STATE", stateWidth), "DESCRIPTION")))
	b.WriteString("\n")

	rows := m.Height - chromeLines
	if rows < 1 {
		rows = 1
	}
	start := 0
	if m.SelectedIndex >= rows {
		start = m.SelectedIndex - rows + 1
	}
	end := start + rows
	if end > len(visible) {
		end = len(visible)
	}

	for i := start; i < end; i++ {
		u := visible[i]
		icon, style := statusIcon(u.ActiveState)
		line := fmt.Sprintf("%s %s %s %s",
			style.Render(icon),
			pad(u.Name, nameWidth),
			style.Render(pad(u.ActiveState.StatusText(), stateWidth)),
			truncate(u.Description, descWidth))
		if i == m.SelectedIndex {
			line = selectedRowStyle.Render("▶ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(visible) > rows {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %d-%d of %d", start+1, end, len(visible))))
	}
	return b.String()
}
