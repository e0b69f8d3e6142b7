package controller

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"unitscope/internal/tui/model"
	"unitscope/internal/tui/view"
)

// AppModel wraps the model to satisfy tea.Model. All state lives in the
// wrapped *model.Model; this type only routes.
type AppModel struct {
	model *model.Model
}

// NewAppModel creates the app wrapper.
func NewAppModel(m *model.Model) AppModel {
	return AppModel{model: m}
}

// Init implements tea.Model. It starts the poller and arms the inbound
// channel reader.
func (a AppModel) Init() tea.Cmd {
	a.model.Poller.Start(context.Background())
	return tea.Batch(
		model.ChannelReaderCmd(a.model.Msgs),
		checkUpdateCmd(a.model.Version),
	)
}

// Update implements tea.Model.
func (a AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		a.model.Width = size.Width
		a.model.Height = size.Height
		a.model.Help.Width = size.Width
		return a, nil
	}
	updated, cmd := Update(msg, a.model)
	a.model = updated
	return a, cmd
}

// View implements tea.Model.
func (a AppModel) View() string {
	return view.Render(a.model)
}

// NewProgram builds the Bubble Tea program in alt-screen mode.
func NewProgram(m *model.Model) *tea.Program {
	return tea.NewProgram(NewAppModel(m), tea.WithAltScreen())
}
