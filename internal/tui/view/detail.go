package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"unitscope/internal/tui/model"
)

func renderDetail(m *model.Model) string {
	var b strings.Builder
	b.WriteString(sectionTitleStyle.Render(m.DetailUnit))
	b.WriteString("\n\n")

	unit, ok := m.Registry.Get(m.DetailUnit)
	if !ok {
		b.WriteString(dimStyle.Render("Unit is no longer present."))
		return b.String()
	}
	if m.DetailLoading {
		b.WriteString(dimStyle.Render("Loading details..."))
		b.WriteString("\n\n")
	}

	icon, style := statusIcon(unit.ActiveState)
	writeRow(&b, "State", fmt.Sprintf("%s %s (%s, %s)",
		style.Render(icon), unit.ActiveState.StatusText(), unit.ActiveState, unit.SubState))
	writeRow(&b, "Load", unit.LoadState.String())
	if unit.UnitFileState != "" {
		writeRow(&b, "Unit file", unit.UnitFileState)
	}
	writeRow(&b, "Description", unit.Description)
	if unit.MainPID > 0 {
		writeRow(&b, "Main PID", fmt.Sprintf("%d", unit.MainPID))
	}
	if !unit.ActiveSince.IsZero() && unit.IsActive() {
		writeRow(&b, "Active since", fmt.Sprintf("%s (%s)",
			unit.ActiveSince.Format(time.DateTime), humanize.Time(unit.ActiveSince)))
	}

	b.WriteString("\n")
	b.WriteString(sectionTitleStyle.Render("Resources"))
	b.WriteString("\n")
	writeRow(&b, "Memory", formatBytes(unit.MemoryBytes))
	writeRow(&b, "Tasks", formatCount(unit.TaskCount))
	writeRow(&b, "CPU time", formatCPU(unit.CPUTimeNSec))
	if unit.RestartCount != nil {
		writeRow(&b, "Restarts", fmt.Sprintf("%d", *unit.RestartCount))
	}

	if len(unit.Wants) > 0 || len(unit.After) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionTitleStyle.Render("Dependencies"))
		b.WriteString("\n")
		if len(unit.Wants) > 0 {
			writeRow(&b, "Wants", truncate(strings.Join(unit.Wants, ", "), m.Width-18))
		}
		if len(unit.After) > 0 {
			writeRow(&b, "After", truncate(strings.Join(unit.After, ", "), m.Width-18))
		}
	}
	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label))
	b.WriteString(" ")
	b.WriteString(value)
	b.WriteString("\n")
}

// formatBytes renders a memory counter, or a dash when accounting is off.
func formatBytes(v *uint64) string {
	if v == nil {
		return dimStyle.Render("–")
	}
	return humanize.IBytes(*v)
}

func formatCount(v *uint64) string {
	if v == nil {
		return dimStyle.Render("–")
	}
	return fmt.Sprintf("%d", *v)
}

func formatCPU(v *uint64) string {
	if v == nil {
		return dimStyle.Render("–")
	}
	return time.Duration(*v).Round(time.Millisecond).String()
}
