// Package registry maintains the authoritative in-memory set of service
// units and computes the minimal change set between successive snapshots.
package registry

import (
	"unitscope/internal/systemd"
)

// Diff is the change set between two snapshots. Added and Updated carry full
// unit snapshots, Removed carries only names. Order is the complete reported
// unit order of the new snapshot so the registry can mirror it exactly.
type Diff struct {
	Added   []systemd.ServiceUnit
	Updated []systemd.ServiceUnit
	Removed []string
	Order   []string
}

// Empty reports whether applying the diff would change nothing.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Updated) == 0 && len(d.Removed) == 0
}

// Compute diffs the previous snapshot against the next one. Both slices are
// in reported order; next's order becomes the diff's Order.
func Compute(prev, next []systemd.ServiceUnit) Diff {
	prevByName := make(map[string]systemd.ServiceUnit, len(prev))
	for _, u := range prev {
		prevByName[u.Name] = u
	}

	diff := Diff{Order: make([]string, 0, len(next))}
	seen := make(map[string]bool, len(next))
	for _, u := range next {
		diff.Order = append(diff.Order, u.Name)
		seen[u.Name] = true
		old, exists := prevByName[u.Name]
		switch {
		case !exists:
			diff.Added = append(diff.Added, u)
		case !old.Equal(u):
			diff.Updated = append(diff.Updated, u)
		}
	}
	for _, u := range prev {
		if !seen[u.Name] {
			diff.Removed = append(diff.Removed, u.Name)
		}
	}
	return diff
}

// Registry is the ordered name→unit map backing the dashboard. It is owned
// by the UI model and must only be touched from the update loop.
type Registry struct {
	units map[string]systemd.ServiceUnit
	order []string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{units: make(map[string]systemd.ServiceUnit)}
}

// Len returns the number of units currently tracked.
func (r *Registry) Len() int { return len(r.order) }

// Get returns the unit by name.
func (r *Registry) Get(name string) (systemd.ServiceUnit, bool) {
	u, ok := r.units[name]
	return u, ok
}

// Units returns all units in reported order.
func (r *Registry) Units() []systemd.ServiceUnit {
	out := make([]systemd.ServiceUnit, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.units[name])
	}
	return out
}

// Apply installs a diff: removals, then adds and updates, then the new order.
// Units absent from the diff keep their existing snapshot.
func (r *Registry) Apply(d Diff) {
	for _, name := range d.Removed {
		delete(r.units, name)
	}
	for _, u := range d.Added {
		r.units[u.Name] = u
	}
	for _, u := range d.Updated {
		r.units[u.Name] = u
	}
	r.order = make([]string, 0, len(d.Order))
	for _, name := range d.Order {
		if _, ok := r.units[name]; ok {
			r.order = append(r.order, name)
		}
	}
}

// Upsert installs or refreshes a single unit, used for the targeted re-poll
// after a control action. New names are appended to the order; existing
// names keep their position.
func (r *Registry) Upsert(u systemd.ServiceUnit) {
	if _, exists := r.units[u.Name]; !exists {
		r.order = append(r.order, u.Name)
	}
	r.units[u.Name] = u
}

// Remove drops a unit that disappeared, keeping order intact.
func (r *Registry) Remove(name string) {
	if _, exists := r.units[name]; !exists {
		return
	}
	delete(r.units, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
