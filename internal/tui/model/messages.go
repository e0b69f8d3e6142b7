package model

import (
	"unitscope/internal/systemd"
)

// ControlResultMsg reports the outcome of a confirmed control action.
type ControlResultMsg struct {
	Unit   string
	Action systemd.Action
	Err    error
}

// UnitDetailMsg carries the targeted single-unit query result that fills
// the detail view.
type UnitDetailMsg struct {
	Name string
	Unit systemd.ServiceUnit
	Err  error
}

// UnitRefreshedMsg carries the targeted re-poll after a successful control
// action, so the dashboard reflects the change before the next tick.
type UnitRefreshedMsg struct {
	Name string
	Unit systemd.ServiceUnit
	Err  error
}

// ClearBannerMsg expires a banner. The sequence must match the live banner;
// a stale clear from a superseded banner is dropped.
type ClearBannerMsg struct {
	Seq int
}

// UpdateCheckMsg reports the startup release check.
type UpdateCheckMsg struct {
	Latest string
	Err    error
}

// CopyResultMsg reports whether the visible log lines reached the clipboard.
type CopyResultMsg struct {
	Lines int
	Err   error
}
