package systemd

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/dbus"
)

// Querier is the read side of the service manager: the bulk listing used by
// the poller and the targeted per-unit query used by the detail view and by
// post-control refreshes.
type Querier interface {
	// ListUnits returns the current set of service units in a stable order.
	ListUnits(ctx context.Context) ([]ServiceUnit, error)
	// GetUnit returns one unit with metrics and dependency lists populated.
	// Returns ErrNotFound when the unit does not exist.
	GetUnit(ctx context.Context, name string) (ServiceUnit, error)
}

// Conn is a D-Bus connection to a systemd instance. It implements Querier
// and is the transport for the Controller.
type Conn struct {
	bus   *dbus.Conn
	scope Scope
}

// Connect establishes the bus connection for the given scope. A failure here
// is the one fatal startup condition: without a query capability there is
// nothing to display.
func Connect(ctx context.Context, scope Scope) (*Conn, error) {
	var bus *dbus.Conn
	var err error
	switch scope {
	case ScopeUser:
		bus, err = dbus.NewUserConnectionContext(ctx)
	default:
		bus, err = dbus.NewSystemConnectionContext(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to %s service manager: %w", scope, classify(err))
	}
	return &Conn{bus: bus, scope: scope}, nil
}

// Scope returns the scope this connection was opened with.
func (c *Conn) Scope() Scope { return c.scope }

// Close releases the bus connection.
func (c *Conn) Close() {
	if c.bus != nil {
		c.bus.Close()
	}
}

// ListUnits returns all service units, sorted by name so successive polls
// report a stable order.
func (c *Conn) ListUnits(ctx context.Context) ([]ServiceUnit, error) {
	statuses, err := c.bus.ListUnitsContext(ctx)
	if err != nil {
		return nil, classify(err)
	}

	units := make([]ServiceUnit, 0, len(statuses))
	for _, st := range statuses {
		if !strings.HasSuffix(st.Name, ".service") {
			continue
		}
		units = append(units, ServiceUnit{
			Name:        st.Name,
			Description: st.Description,
			LoadState:   ParseLoadState(st.LoadState),
			ActiveState: ParseActiveState(st.ActiveState),
			SubState:    st.SubState,
		})
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Name < units[j].Name })
	return units, nil
}

// GetUnit fetches one unit including resource metrics and dependency names.
func (c *Conn) GetUnit(ctx context.Context, name string) (ServiceUnit, error) {
	props, err := c.bus.GetUnitPropertiesContext(ctx, name)
	if err != nil {
		return ServiceUnit{}, classify(err)
	}

	load := ParseLoadState(stringProp(props, "LoadState"))
	if load == LoadStateNotFound {
		return ServiceUnit{}, wrap(ErrNotFound, fmt.Errorf("unit %s is not loaded", name))
	}

	unit := ServiceUnit{
		Name:          name,
		Description:   stringProp(props, "Description"),
		LoadState:     load,
		ActiveState:   ParseActiveState(stringProp(props, "ActiveState")),
		SubState:      stringProp(props, "SubState"),
		UnitFileState: stringProp(props, "UnitFileState"),
		ActiveSince:   timestampProp(props, "ActiveEnterTimestamp"),
		Wants:         stringSliceProp(props, "Wants"),
		After:         stringSliceProp(props, "After"),
	}

	svcProps, err := c.bus.GetUnitTypePropertiesContext(ctx, name, "Service")
	if err != nil {
		// The unit exists but has no Service-type properties (or the call
		// raced a reload). The core snapshot is still useful.
		return unit, nil
	}
	if pid, ok := svcProps["MainPID"].(uint32); ok {
		unit.MainPID = pid
	}
	unit.MemoryBytes = counterProp(svcProps, "MemoryCurrent")
	unit.TaskCount = counterProp(svcProps, "TasksCurrent")
	unit.CPUTimeNSec = counterProp(svcProps, "CPUUsageNSec")
	if n, ok := svcProps["NRestarts"].(uint32); ok {
		unit.RestartCount = &n
	}
	return unit, nil
}

func stringProp(props map[string]interface{}, key string) string {
	s, _ := props[key].(string)
	return s
}

func stringSliceProp(props map[string]interface{}, key string) []string {
	v, _ := props[key].([]string)
	return v
}

// counterProp reads an accounting counter. systemd reports MaxUint64 when
// the corresponding accounting is disabled, which maps to nil here.
func counterProp(props map[string]interface{}, key string) *uint64 {
	v, ok := props[key].(uint64)
	if !ok || v == math.MaxUint64 {
		return nil
	}
	return &v
}

// timestampProp converts a systemd timestamp property (microseconds since
// the Unix epoch) to a time.Time. The zero value means "never".
func timestampProp(props map[string]interface{}, key string) time.Time {
	if ts, ok := props[key].(uint64); ok && ts > 0 {
		return time.UnixMicro(int64(ts))
	}
	return time.Time{}
}
