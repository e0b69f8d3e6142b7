package view

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	appStyle = lipgloss.NewStyle().Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	headerInfoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57")).
				Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	bannerInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).Background(lipgloss.Color("24")).Padding(0, 1)
	bannerSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).Background(lipgloss.Color("28")).Padding(0, 1)
	bannerWarningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("232")).Background(lipgloss.Color("214")).Padding(0, 1)
	bannerErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).Background(lipgloss.Color("124")).Padding(0, 1)

	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	sectionTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Width(14)

	searchPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)

	logTimestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	logErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	logWarningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Status icons. Plain unicode so no particular font is required.
const (
	iconRunning = "●"
	iconStopped = "○"
	iconFailed  = "✗"
	iconPending = "◐"
	iconUnknown = "?"
)
