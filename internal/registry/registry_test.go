package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unitscope/internal/systemd"
)

func unit(name string, state systemd.ActiveState) systemd.ServiceUnit {
	return systemd.ServiceUnit{
		Name:        name,
		Description: "test " + name,
		LoadState:   systemd.LoadStateLoaded,
		ActiveState: state,
		SubState:    "running",
	}
}

func TestComputePartitionsChanges(t *testing.T) {
	prev := []systemd.ServiceUnit{
		unit("a.service", systemd.ActiveStateActive),
		unit("b.service", systemd.ActiveStateActive),
		unit("c.service", systemd.ActiveStateInactive),
	}
	next := []systemd.ServiceUnit{
		unit("a.service", systemd.ActiveStateActive),   // unchanged
		unit("b.service", systemd.ActiveStateFailed),   // updated
		unit("d.service", systemd.ActiveStateActive),   // added
	}

	d := Compute(prev, next)
	require.Len(t, d.Added, 1)
	assert.Equal(t, "d.service", d.Added[0].Name)
	require.Len(t, d.Updated, 1)
	assert.Equal(t, "b.service", d.Updated[0].Name)
	assert.Equal(t, []string{"c.service"}, d.Removed)
	assert.Equal(t, []string{"a.service", "b.service", "d.service"}, d.Order)
}

func TestComputeIdenticalSnapshotsIsEmpty(t *testing.T) {
	snap := []systemd.ServiceUnit{
		unit("a.service", systemd.ActiveStateActive),
		unit("b.service", systemd.ActiveStateInactive),
	}
	d := Compute(snap, snap)
	assert.True(t, d.Empty())
	assert.Equal(t, []string{"a.service", "b.service"}, d.Order)
}

func TestComputeFromEmpty(t *testing.T) {
	next := []systemd.ServiceUnit{unit("a.service", systemd.ActiveStateActive)}
	d := Compute(nil, next)
	assert.Len(t, d.Added, 1)
	assert.Empty(t, d.Updated)
	assert.Empty(t, d.Removed)
}

func TestApplyMatchesSnapshot(t *testing.T) {
	r := New()

	first := []systemd.ServiceUnit{
		unit("a.service", systemd.ActiveStateActive),
		unit("b.service", systemd.ActiveStateActive),
	}
	r.Apply(Compute(nil, first))
	assert.Equal(t, first, r.Units())

	second := []systemd.ServiceUnit{
		unit("b.service", systemd.ActiveStateFailed),
		unit("c.service", systemd.ActiveStateActive),
	}
	r.Apply(Compute(first, second))
	assert.Equal(t, second, r.Units())

	_, ok := r.Get("a.service")
	assert.False(t, ok)
	got, ok := r.Get("b.service")
	require.True(t, ok)
	assert.Equal(t, systemd.ActiveStateFailed, got.ActiveState)
}

func TestUpsertKeepsPosition(t *testing.T) {
	r := New()
	r.Apply(Compute(nil, []systemd.ServiceUnit{
		unit("a.service", systemd.ActiveStateActive),
		unit("b.service", systemd.ActiveStateActive),
		unit("c.service", systemd.ActiveStateActive),
	}))

	refreshed := unit("b.service", systemd.ActiveStateInactive)
	r.Upsert(refreshed)

	units := r.Units()
	require.Len(t, units, 3)
	assert.Equal(t, "b.service", units[1].Name)
	assert.Equal(t, systemd.ActiveStateInactive, units[1].ActiveState)

	r.Upsert(unit("z.service", systemd.ActiveStateActive))
	assert.Equal(t, 4, r.Len())
	assert.Equal(t, "z.service", r.Units()[3].Name)
}

func TestRemove(t *testing.T) {
	r := New()
	r.Apply(Compute(nil, []systemd.ServiceUnit{
		unit("a.service", systemd.ActiveStateActive),
		unit("b.service", systemd.ActiveStateActive),
	}))
	r.Remove("a.service")
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, "b.service", r.Units()[0].Name)

	// Removing an unknown name is a no-op.
	r.Remove("a.service")
	assert.Equal(t, 1, r.Len())
}
