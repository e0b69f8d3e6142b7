package logstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unitscope/internal/systemd"
)

func entry(msg string) systemd.LogEntry {
	return systemd.LogEntry{Unit: "a.service", Priority: systemd.PriorityUnknown, Message: msg, Raw: msg}
}

func messages(entries []systemd.LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

func TestBufferEvictsOldest(t *testing.T) {
	b := NewBuffer(3)
	b.Append(entry("L1"), entry("L2"), entry("L3"))
	require.Equal(t, 3, b.Len())

	b.Append(entry("L4"))
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []string{"L2", "L3", "L4"}, messages(b.Entries()))
}

func TestBufferKeepsOrderBelowCapacity(t *testing.T) {
	b := NewBuffer(10)
	b.Append(entry("L1"))
	b.Append(entry("L2"), entry("L3"))
	assert.Equal(t, []string{"L1", "L2", "L3"}, messages(b.Entries()))
	assert.Equal(t, 10, b.Cap())
}

func TestBufferClear(t *testing.T) {
	b := NewBuffer(3)
	b.Append(entry("L1"), entry("L2"))
	b.Clear()
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Entries())

	b.Append(entry("L3"))
	assert.Equal(t, []string{"L3"}, messages(b.Entries()))
}

func TestBufferDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultBufferSize, NewBuffer(0).Cap())
}
