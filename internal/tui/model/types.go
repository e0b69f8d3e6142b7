package model

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"

	"unitscope/internal/config"
	"unitscope/internal/logstream"
	"unitscope/internal/poller"
	"unitscope/internal/registry"
	"unitscope/internal/systemd"
)

// View is the screen currently shown.
type View int

const (
	ViewDashboard View = iota
	ViewDetail
	ViewLogs
	ViewHelp
)

// String makes View satisfy the fmt.Stringer interface.
func (v View) String() string {
	switch v {
	case ViewDashboard:
		return "Dashboard"
	case ViewDetail:
		return "Detail"
	case ViewLogs:
		return "Logs"
	case ViewHelp:
		return "Help"
	default:
		return "Unknown"
	}
}

// Connectivity is the health of the link to the service manager.
type Connectivity int

const (
	// Disconnected is the initial state and the state after repeated
	// consecutive poll failures.
	Disconnected Connectivity = iota
	// Degraded means the last poll failed but not enough times in a row to
	// declare the link down.
	Degraded
	// Connected means the last poll succeeded.
	Connected
)

// DisconnectThreshold is how many consecutive poll failures downgrade
// Degraded to Disconnected.
const DisconnectThreshold = 3

// String makes Connectivity satisfy the fmt.Stringer interface.
func (c Connectivity) String() string {
	switch c {
	case Connected:
		return "Connected"
	case Degraded:
		return "Degraded"
	default:
		return "Disconnected"
	}
}

// Filter restricts the dashboard to units in a state category.
type Filter int

const (
	FilterAll Filter = iota
	FilterRunning
	FilterStopped
	FilterFailed
)

// String makes Filter satisfy the fmt.Stringer interface.
func (f Filter) String() string {
	switch f {
	case FilterRunning:
		return "Running"
	case FilterStopped:
		return "Stopped"
	case FilterFailed:
		return "Failed"
	default:
		return "All"
	}
}

// Matches reports whether a unit's state falls in the filter's category.
// Transitional states count toward the side they are moving to, so a
// starting unit is already visible under Running.
func (f Filter) Matches(u systemd.ServiceUnit) bool {
	switch f {
	case FilterRunning:
		return u.ActiveState == systemd.ActiveStateActive ||
			u.ActiveState == systemd.ActiveStateActivating ||
			u.ActiveState == systemd.ActiveStateReloading
	case FilterStopped:
		return u.ActiveState == systemd.ActiveStateInactive ||
			u.ActiveState == systemd.ActiveStateDeactivating
	case FilterFailed:
		return u.ActiveState == systemd.ActiveStateFailed
	default:
		return true
	}
}

// BannerKind selects the styling of the transient status banner.
type BannerKind int

const (
	BannerInfo BannerKind = iota
	BannerSuccess
	BannerWarning
	BannerError
)

// Banner is the transient status line. The zero value means no banner.
type Banner struct {
	Kind BannerKind
	Text string
}

// Confirmation is a pending control action awaiting an explicit yes/no.
type Confirmation struct {
	Unit   string
	Action systemd.Action
}

// KeyMap defines all the key bindings for the application.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Enter   key.Binding
	Back    key.Binding
	Quit    key.Binding
	Help    key.Binding
	Search  key.Binding
	Refresh key.Binding

	FilterAll     key.Binding
	FilterRunning key.Binding
	FilterStopped key.Binding
	FilterFailed  key.Binding

	Start   key.Binding
	Stop    key.Binding
	Restart key.Binding
	Reload  key.Binding
	Enable  key.Binding
	Disable key.Binding
	Confirm key.Binding
	Cancel  key.Binding

	Logs      key.Binding
	PauseLogs key.Binding
	ClearLogs key.Binding
	CopyLogs  key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
		Top:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to top")),
		Bottom:  key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "go to bottom")),
		Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Refresh: key.NewBinding(key.WithKeys("f5", "ctrl+r"), key.WithHelp("F5", "refresh now")),

		FilterAll:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all units")),
		FilterRunning: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "running only")),
		FilterStopped: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stopped only")),
		FilterFailed:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "failed only")),

		Start:   key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "start unit")),
		Stop:    key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "stop unit")),
		Restart: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "restart unit")),
		Reload:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "reload unit")),
		Enable:  key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "enable unit")),
		Disable: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "disable unit")),
		Confirm: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "cancel")),

		Logs:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "logs")),
		PauseLogs: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause/resume")),
		ClearLogs: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear buffer")),
		CopyLogs:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy visible")),
	}
}

// Model is the complete application state. It is mutated only inside the
// controller's dispatch; background tasks communicate through Msgs.
type Model struct {
	// Terminal dimensions.
	Width  int
	Height int

	Quitting bool

	// Orthogonal state axes.
	View         View
	Connectivity Connectivity
	Pending      *Confirmation

	// Dashboard state.
	Filter        Filter
	SearchQuery   string
	Searching     bool
	SelectedIndex int

	// Unit data.
	Registry   *registry.Registry
	LastPollAt time.Time

	// Detail view state.
	DetailUnit    string
	DetailLoading bool

	// Logs view state. At most one unit is streamed at a time; LogGen tags
	// the live subscription so stale batches can be dropped.
	LogUnit      string
	LogGen       uint64
	LogBuffer    *logstream.Buffer
	LogPaused    bool
	LogStreamErr error

	ControlBusy bool

	Banner    Banner
	BannerSeq int

	Keys KeyMap
	Help help.Model

	// Msgs is the single ordered inbound channel background tasks send on.
	Msgs chan any

	// Capabilities and background tasks.
	Querier systemd.Querier
	Control systemd.ControlClient
	Poller  *poller.Poller
	Streams *logstream.Manager
	Scope   systemd.Scope

	Config  config.Config
	Version string
}
