package view

import (
	"strings"

	"unitscope/internal/tui/model"
)

type helpEntry struct {
	keys string
	desc string
}

type helpSection struct {
	title   string
	entries []helpEntry
}

var helpSections = []helpSection{
	{"Dashboard", []helpEntry{
		{"↑/k  ↓/j", "move selection"},
		{"g / G", "jump to top / bottom"},
		{"enter", "unit details"},
		{"l", "follow unit logs"},
		{"/", "search by name or description"},
		{"a r s f", "filter: all / running / stopped / failed"},
		{"F5, ctrl+r", "poll now"},
	}},
	{"Control", []helpEntry{
		{"S", "start selected unit"},
		{"T", "stop selected unit"},
		{"R", "restart selected unit"},
		{"L", "reload selected unit"},
		{"E / D", "enable / disable selected unit"},
		{"y / n", "confirm / cancel pending action"},
	}},
	{"Logs", []helpEntry{
		{"p", "pause or resume the stream"},
		{"c", "clear the buffer"},
		{"y", "copy buffered lines to clipboard"},
	}},
	{"General", []helpEntry{
		{"?", "toggle this help"},
		{"esc", "back (clears search first)"},
		{"q, ctrl+c", "quit"},
	}},
}

func renderHelp(m *model.Model) string {
	var b strings.Builder
	b.WriteString(sectionTitleStyle.Render("Key bindings"))
	b.WriteString("\n\n")
	for _, section := range helpSections {
		b.WriteString(sectionTitleStyle.Render(section.title))
		b.WriteString("\n")
		for _, e := range section.entries {
			b.WriteString("  ")
			b.WriteString(pad(e.keys, 14))
			b.WriteString(dimStyle.Render(e.desc))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("Version " + m.Version))
	return b.String()
}
