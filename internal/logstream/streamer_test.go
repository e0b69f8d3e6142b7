package logstream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unitscope/internal/systemd"
)

// fakeSource feeds entries from a channel and unblocks on Stop.
type fakeSource struct {
	feed    chan systemd.LogEntry
	failErr error
	done    chan struct{}
	once    sync.Once
}

func newFakeSource() *fakeSource {
	return &fakeSource{feed: make(chan systemd.LogEntry, 64), done: make(chan struct{})}
}

func (f *fakeSource) Next() (systemd.LogEntry, bool) {
	select {
	case e, ok := <-f.feed:
		if !ok {
			return systemd.LogEntry{}, false
		}
		return e, true
	case <-f.done:
		return systemd.LogEntry{}, false
	}
}

func (f *fakeSource) Err() error { return f.failErr }

func (f *fakeSource) Stop() { f.once.Do(func() { close(f.done) }) }

func (f *fakeSource) stopped() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// collectEntries drains messages until n entries of the wanted generation
// arrived or the deadline passed.
func collectEntries(t *testing.T, msgs <-chan any, gen uint64, n int) []systemd.LogEntry {
	t.Helper()
	var got []systemd.LogEntry
	deadline := time.After(2 * time.Second)
	for len(got) < n {
		select {
		case msg := <-msgs:
			batch, ok := msg.(BatchMsg)
			require.True(t, ok, "unexpected message %T", msg)
			require.Equal(t, gen, batch.Gen)
			got = append(got, batch.Entries...)
		case <-deadline:
			t.Fatalf("timed out with %d of %d entries", len(got), n)
		}
	}
	return got
}

func TestManagerForwardsEntriesInOrder(t *testing.T) {
	src := newFakeSource()
	msgs := make(chan any, 64)
	m := NewManager(
		func(context.Context, string) (EntrySource, error) { return src, nil },
		msgs,
	)
	defer m.Stop()

	gen, err := m.Start(context.Background(), "a.service")
	require.NoError(t, err)

	for _, s := range []string{"L1", "L2", "L3"} {
		src.feed <- entry(s)
	}
	got := collectEntries(t, msgs, gen, 3)
	assert.Equal(t, []string{"L1", "L2", "L3"}, messages(got))
}

func TestManagerPauseBuffersAndFlushesInOrder(t *testing.T) {
	src := newFakeSource()
	msgs := make(chan any, 64)
	m := NewManager(
		func(context.Context, string) (EntrySource, error) { return src, nil },
		msgs,
	)
	defer m.Stop()

	gen, err := m.Start(context.Background(), "a.service")
	require.NoError(t, err)

	src.feed <- entry("L1")
	collectEntries(t, msgs, gen, 1)

	m.Pause(true)
	src.feed <- entry("L2")
	src.feed <- entry("L3")

	select {
	case msg := <-msgs:
		t.Fatalf("got %#v while paused", msg)
	case <-time.After(100 * time.Millisecond):
	}

	m.Pause(false)
	got := collectEntries(t, msgs, gen, 2)
	assert.Equal(t, []string{"L2", "L3"}, messages(got))
}

func TestManagerStartReplacesSubscription(t *testing.T) {
	first := newFakeSource()
	second := newFakeSource()
	sources := []*fakeSource{first, second}
	msgs := make(chan any, 64)

	var calls int
	m := NewManager(
		func(_ context.Context, unit string) (EntrySource, error) {
			src := sources[calls]
			calls++
			return src, nil
		},
		msgs,
	)
	defer m.Stop()

	gen1, err := m.Start(context.Background(), "a.service")
	require.NoError(t, err)
	gen2, err := m.Start(context.Background(), "b.service")
	require.NoError(t, err)

	assert.Greater(t, gen2, gen1, "each subscription gets a fresh generation")
	assert.True(t, first.stopped(), "previous stream is stopped on switch")

	second.feed <- systemd.LogEntry{Unit: "b.service", Priority: systemd.PriorityUnknown, Message: "from-b", Raw: "from-b"}
	got := collectEntries(t, msgs, gen2, 1)
	assert.Equal(t, "b.service", got[0].Unit)
}

func TestManagerReportsStreamError(t *testing.T) {
	src := newFakeSource()
	src.failErr = errors.New("journal feed broke")
	msgs := make(chan any, 64)
	m := NewManager(
		func(context.Context, string) (EntrySource, error) { return src, nil },
		msgs,
	)
	defer m.Stop()

	gen, err := m.Start(context.Background(), "a.service")
	require.NoError(t, err)

	close(src.feed)

	select {
	case msg := <-msgs:
		errMsg, ok := msg.(StreamErrorMsg)
		require.True(t, ok, "unexpected message %T", msg)
		assert.Equal(t, gen, errMsg.Gen)
		assert.Equal(t, "a.service", errMsg.Unit)
		assert.ErrorContains(t, errMsg.Err, "journal feed broke")
	case <-time.After(2 * time.Second):
		t.Fatal("no stream error reported")
	}
}

func TestManagerStopReturnsWithFullChannel(t *testing.T) {
	src := newFakeSource()
	msgs := make(chan any) // never read, so any forward attempt blocks
	m := NewManager(
		func(context.Context, string) (EntrySource, error) { return src, nil },
		msgs,
	)

	_, err := m.Start(context.Background(), "a.service")
	require.NoError(t, err)

	src.feed <- entry("L1")
	time.Sleep(50 * time.Millisecond) // let the flusher block on the channel

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop hung behind an unread message channel")
	}
}

func TestManagerOpenFailureStillConsumesGeneration(t *testing.T) {
	openErr := errors.New("journalctl not found")
	m := NewManager(
		func(context.Context, string) (EntrySource, error) { return nil, openErr },
		nil,
	)

	before := m.Gen()
	gen, err := m.Start(context.Background(), "a.service")
	require.ErrorIs(t, err, openErr)
	assert.Greater(t, gen, before)
}
