package view

import (
	"fmt"
	"strings"

	"unitscope/internal/systemd"
	"unitscope/internal/tui/model"
)

func renderLogs(m *model.Model) string {
	var b strings.Builder

	title := fmt.Sprintf("Logs: %s", m.LogUnit)
	if m.LogPaused {
		title += pendingStyle.Render("  [PAUSED]")
	}
	b.WriteString(sectionTitleStyle.Render(title))
	b.WriteString("\n")

	if m.LogStreamErr != nil {
		b.WriteString(failedStyle.Render(fmt.Sprintf("Stream ended: %v", m.LogStreamErr)))
		b.WriteString("\n")
	}

	if m.LogBuffer == nil || m.LogBuffer.Len() == 0 {
		b.WriteString(dimStyle.Render("No log entries yet."))
		return b.String()
	}

	entries := m.LogBuffer.Entries()
	rows := m.Height - chromeLines
	if rows < 1 {
		rows = 1
	}
	// Tail the buffer: the newest entries are the interesting ones.
	if len(entries) > rows {
		entries = entries[len(entries)-rows:]
	}

	width := m.Width - 2
	for _, e := range entries {
		b.WriteString(renderLogLine(e, width))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d/%d buffered", m.LogBuffer.Len(), m.LogBuffer.Cap())))
	return b.String()
}

func renderLogLine(e systemd.LogEntry, width int) string {
	msg := e.Message
	switch {
	case e.Priority >= 0 && e.Priority <= 3:
		msg = logErrorStyle.Render(msg)
	case e.Priority == 4:
		msg = logWarningStyle.Render(msg)
	}
	if e.Timestamp == "" {
		return truncate(msg, width)
	}
	return logTimestampStyle.Render(e.Timestamp) + " " + truncate(msg, width-len(e.Timestamp)-1)
}
