// Package logstream follows the journal of one unit at a time, batching
// entries toward the UI at a bounded rate, and provides the fixed-capacity
// buffer the logs view renders from.
package logstream

import (
	"unitscope/internal/systemd"
)

// DefaultBufferSize is the log buffer capacity when no override is given.
const DefaultBufferSize = 2000

// Buffer is a fixed-capacity ring of log entries. When full, appending
// evicts the oldest entry. It is owned by the UI model and must only be
// touched from the update loop.
type Buffer struct {
	entries []systemd.LogEntry
	start   int
	size    int
}

// NewBuffer returns an empty buffer with the given capacity. Non-positive
// capacities fall back to the default.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &Buffer{entries: make([]systemd.LogEntry, capacity)}
}

// Append adds entries in order, evicting the oldest when full.
func (b *Buffer) Append(entries ...systemd.LogEntry) {
	for _, e := range entries {
		idx := (b.start + b.size) % len(b.entries)
		b.entries[idx] = e
		if b.size < len(b.entries) {
			b.size++
		} else {
			b.start = (b.start + 1) % len(b.entries)
		}
	}
}

// Entries returns the buffered entries, oldest first.
func (b *Buffer) Entries() []systemd.LogEntry {
	out := make([]systemd.LogEntry, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.entries[(b.start+i)%len(b.entries)]
	}
	return out
}

// Len returns the number of buffered entries.
func (b *Buffer) Len() int { return b.size }

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int { return len(b.entries) }

// Clear drops all entries, keeping the capacity.
func (b *Buffer) Clear() {
	b.start = 0
	b.size = 0
}
