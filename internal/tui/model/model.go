package model

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"unitscope/internal/config"
	"unitscope/internal/logstream"
	"unitscope/internal/poller"
	"unitscope/internal/registry"
	"unitscope/internal/systemd"
)

// msgChannelBufferSize bounds the inbound channel. Background tasks block
// rather than drop when the UI falls behind, preserving message order.
const msgChannelBufferSize = 256

// New assembles the initial application state. Background tasks are wired
// to the returned model's Msgs channel but not started; the controller's
// Init does that.
func New(cfg config.Config, querier systemd.Querier, control systemd.ControlClient, scope systemd.Scope, version string) *Model {
	m := &Model{
		View:         ViewDashboard,
		Connectivity: Disconnected,
		Registry:     registry.New(),
		Keys:         DefaultKeyMap(),
		Help:         help.New(),
		Msgs:         make(chan any, msgChannelBufferSize),
		Querier:      querier,
		Control:      control,
		Scope:        scope,
		Config:       cfg,
		Version:      version,
	}
	m.Poller = poller.New(querier, m.Msgs, cfg.PollInterval.Std(), cfg.MaxPollInterval.Std())
	m.Streams = logstream.NewManager(
		func(ctx context.Context, unit string) (logstream.EntrySource, error) {
			return systemd.OpenJournal(ctx, unit, scope, cfg.JournalTailLines)
		},
		m.Msgs,
	)
	return m
}

// VisibleUnits projects the registry through the current filter and search
// query, preserving reported order. Filter and search AND-combine; the
// search matches name or description case-insensitively.
func (m *Model) VisibleUnits() []systemd.ServiceUnit {
	query := strings.ToLower(m.SearchQuery)
	var out []systemd.ServiceUnit
	for _, u := range m.Registry.Units() {
		if !m.Filter.Matches(u) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(u.Name), query) &&
			!strings.Contains(strings.ToLower(u.Description), query) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// SelectedUnit returns the unit under the cursor, if any.
func (m *Model) SelectedUnit() (systemd.ServiceUnit, bool) {
	visible := m.VisibleUnits()
	if m.SelectedIndex < 0 || m.SelectedIndex >= len(visible) {
		return systemd.ServiceUnit{}, false
	}
	return visible[m.SelectedIndex], true
}

// ClampSelection re-clamps the cursor after the visible set changed,
// preferring to keep the unit named prev selected if it is still visible.
func (m *Model) ClampSelection(prev string) {
	visible := m.VisibleUnits()
	if len(visible) == 0 {
		m.SelectedIndex = 0
		return
	}
	if prev != "" {
		for i, u := range visible {
			if u.Name == prev {
				m.SelectedIndex = i
				return
			}
		}
	}
	if m.SelectedIndex >= len(visible) {
		m.SelectedIndex = len(visible) - 1
	}
	if m.SelectedIndex < 0 {
		m.SelectedIndex = 0
	}
}

// SetBanner replaces the transient banner and bumps the sequence so an
// in-flight clear for the previous banner is ignored.
func (m *Model) SetBanner(kind BannerKind, text string) int {
	m.Banner = Banner{Kind: kind, Text: text}
	m.BannerSeq++
	return m.BannerSeq
}

// ClearBanner removes the banner.
func (m *Model) ClearBanner() {
	m.Banner = Banner{}
}

// ChannelReaderCmd reads one message from the inbound channel. The
// controller re-arms it after every delivered message, keeping exactly one
// reader outstanding.
func ChannelReaderCmd(ch chan any) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}
