package systemd

import (
	"time"
)

// Scope selects which service manager instance to talk to.
type Scope int

const (
	// ScopeSystem is the system service manager (requires privileges for
	// control actions).
	ScopeSystem Scope = iota
	// ScopeUser is the per-session service manager (systemd --user).
	ScopeUser
)

// String makes Scope satisfy the fmt.Stringer interface.
func (s Scope) String() string {
	switch s {
	case ScopeSystem:
		return "system"
	case ScopeUser:
		return "user"
	default:
		return "unknown"
	}
}

// ActiveState is the high-level activation state reported for a unit.
type ActiveState int

const (
	ActiveStateUnknown ActiveState = iota
	ActiveStateActive
	ActiveStateReloading
	ActiveStateInactive
	ActiveStateFailed
	ActiveStateActivating
	ActiveStateDeactivating
)

// ParseActiveState maps the string reported on the bus to the closed
// enumeration. Anything unrecognised becomes ActiveStateUnknown.
func ParseActiveState(s string) ActiveState {
	switch s {
	case "active":
		return ActiveStateActive
	case "reloading":
		return ActiveStateReloading
	case "inactive":
		return ActiveStateInactive
	case "failed":
		return ActiveStateFailed
	case "activating":
		return ActiveStateActivating
	case "deactivating":
		return ActiveStateDeactivating
	default:
		return ActiveStateUnknown
	}
}

// String makes ActiveState satisfy the fmt.Stringer interface.
func (a ActiveState) String() string {
	switch a {
	case ActiveStateActive:
		return "active"
	case ActiveStateReloading:
		return "reloading"
	case ActiveStateInactive:
		return "inactive"
	case ActiveStateFailed:
		return "failed"
	case ActiveStateActivating:
		return "activating"
	case ActiveStateDeactivating:
		return "deactivating"
	default:
		return "unknown"
	}
}

// StatusText returns the user-facing label for the state.
func (a ActiveState) StatusText() string {
	switch a {
	case ActiveStateActive:
		return "Running"
	case ActiveStateReloading:
		return "Reloading"
	case ActiveStateInactive:
		return "Stopped"
	case ActiveStateFailed:
		return "Failed"
	case ActiveStateActivating:
		return "Starting"
	case ActiveStateDeactivating:
		return "Stopping"
	default:
		return "Unknown"
	}
}

// IsTransitioning reports whether the unit is between stable states.
func (a ActiveState) IsTransitioning() bool {
	return a == ActiveStateActivating || a == ActiveStateDeactivating || a == ActiveStateReloading
}

// LoadState describes whether the unit file itself could be loaded.
type LoadState int

const (
	LoadStateUnknown LoadState = iota
	LoadStateLoaded
	LoadStateNotFound
	LoadStateError
	LoadStateMasked
)

// ParseLoadState maps the string reported on the bus to the closed
// enumeration.
func ParseLoadState(s string) LoadState {
	switch s {
	case "loaded":
		return LoadStateLoaded
	case "not-found":
		return LoadStateNotFound
	case "error":
		return LoadStateError
	case "masked":
		return LoadStateMasked
	default:
		return LoadStateUnknown
	}
}

// String makes LoadState satisfy the fmt.Stringer interface.
func (l LoadState) String() string {
	switch l {
	case LoadStateLoaded:
		return "loaded"
	case LoadStateNotFound:
		return "not-found"
	case LoadStateError:
		return "error"
	case LoadStateMasked:
		return "masked"
	default:
		return "unknown"
	}
}

// Action is a privileged control operation on a unit.
type Action int

const (
	ActionStart Action = iota
	ActionStop
	ActionRestart
	ActionReload
	ActionEnable
	ActionDisable
)

// String makes Action satisfy the fmt.Stringer interface.
func (a Action) String() string {
	switch a {
	case ActionStart:
		return "start"
	case ActionStop:
		return "stop"
	case ActionRestart:
		return "restart"
	case ActionReload:
		return "reload"
	case ActionEnable:
		return "enable"
	case ActionDisable:
		return "disable"
	default:
		return "unknown"
	}
}

// Progressive is used in in-flight banners ("Starting", "Stopping", ...).
func (a Action) Progressive() string {
	switch a {
	case ActionStart:
		return "Starting"
	case ActionStop:
		return "Stopping"
	case ActionRestart:
		return "Restarting"
	case ActionReload:
		return "Reloading"
	case ActionEnable:
		return "Enabling"
	case ActionDisable:
		return "Disabling"
	default:
		return "Changing"
	}
}

// PastTense is used in result banners ("started", "stopped", ...).
func (a Action) PastTense() string {
	switch a {
	case ActionStart:
		return "started"
	case ActionStop:
		return "stopped"
	case ActionRestart:
		return "restarted"
	case ActionReload:
		return "reloaded"
	case ActionEnable:
		return "enabled"
	case ActionDisable:
		return "disabled"
	default:
		return "changed"
	}
}

// ServiceUnit is a snapshot of one service unit as reported by the service
// manager. The bulk listing only fills the core fields; the metric and
// dependency fields are populated by a targeted GetUnit query and stay nil
// when unavailable.
type ServiceUnit struct {
	Name        string
	Description string
	LoadState   LoadState
	ActiveState ActiveState
	SubState    string

	// UnitFileState is the enablement state of the unit file ("enabled",
	// "disabled", "static", ...). Empty when the bulk listing filled the
	// snapshot; populated by GetUnit.
	UnitFileState string

	// Detail fields, from GetUnit.
	MainPID      uint32
	MemoryBytes  *uint64
	TaskCount    *uint64
	CPUTimeNSec  *uint64
	RestartCount *uint32
	ActiveSince  time.Time
	Wants        []string
	After        []string
}

// IsActive reports whether the unit is currently running.
func (u ServiceUnit) IsActive() bool { return u.ActiveState == ActiveStateActive }

// IsFailed reports whether the unit entered the failed state.
func (u ServiceUnit) IsFailed() bool { return u.ActiveState == ActiveStateFailed }

// Equal reports whether two snapshots would render identically in the
// dashboard. Detail-only fields are compared too so a targeted refresh after
// a control action shows up as an update.
func (u ServiceUnit) Equal(other ServiceUnit) bool {
	if u.Name != other.Name ||
		u.Description != other.Description ||
		u.LoadState != other.LoadState ||
		u.ActiveState != other.ActiveState ||
		u.SubState != other.SubState ||
		u.UnitFileState != other.UnitFileState ||
		u.MainPID != other.MainPID {
		return false
	}
	if !equalUint64Ptr(u.MemoryBytes, other.MemoryBytes) ||
		!equalUint64Ptr(u.TaskCount, other.TaskCount) ||
		!equalUint64Ptr(u.CPUTimeNSec, other.CPUTimeNSec) ||
		!equalUint32Ptr(u.RestartCount, other.RestartCount) {
		return false
	}
	if !u.ActiveSince.Equal(other.ActiveSince) {
		return false
	}
	return equalStrings(u.Wants, other.Wants) && equalStrings(u.After, other.After)
}

func equalUint64Ptr(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalUint32Ptr(a, b *uint32) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// PriorityUnknown marks a log entry whose syslog priority could not be
// determined from the line.
const PriorityUnknown = -1

// LogEntry is one journal line for a unit. Immutable once created.
type LogEntry struct {
	Timestamp string
	Unit      string
	Priority  int
	Message   string
	Raw       string
}
