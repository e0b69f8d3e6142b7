package logstream

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"vawter.tech/stopper"

	"unitscope/internal/systemd"
)

// BatchMsg carries journal entries toward the UI. Entries are in arrival
// order. The generation tag lets the receiver discard batches from a
// subscription that has since been replaced.
type BatchMsg struct {
	Gen     uint64
	Unit    string
	Entries []systemd.LogEntry
}

// StreamErrorMsg reports that the journal feed for a unit broke. The stream
// is not restarted automatically; the subscription stays dead until the user
// re-enters the logs view.
type StreamErrorMsg struct {
	Gen  uint64
	Unit string
	Err  error
}

// EntrySource is a blocking feed of journal entries. systemd.JournalReader
// is the production implementation.
type EntrySource interface {
	Next() (systemd.LogEntry, bool)
	Err() error
	Stop()
}

// OpenFunc opens an entry source for a unit.
type OpenFunc func(ctx context.Context, unit string) (EntrySource, error)

// pauseLimit bounds how many entries accumulate while the view is paused.
// Oldest entries are dropped beyond this.
const pauseLimit = 1000

// flushRate bounds how many batches per second reach the UI channel. Bursts
// are coalesced into larger batches, never dropped.
const flushRate = rate.Limit(10)

// Manager owns at most one live journal subscription. Switching units stops
// the previous subprocess and bumps the generation so in-flight messages
// from the old stream are recognizably stale.
type Manager struct {
	open OpenFunc
	msgs chan<- any

	mu  sync.Mutex
	gen uint64
	cur *streamer
}

// NewManager wires the journal opener to the UI message channel.
func NewManager(open OpenFunc, msgs chan<- any) *Manager {
	return &Manager{open: open, msgs: msgs}
}

// Gen returns the current subscription generation.
func (m *Manager) Gen() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// Start replaces any existing subscription with one for the given unit and
// returns the new generation. An open failure still consumes a generation,
// so a stale stream that raced the switch cannot be mistaken for live.
func (m *Manager) Start(ctx context.Context, unit string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()
	m.gen++

	src, err := m.open(ctx, unit)
	if err != nil {
		return m.gen, err
	}
	m.cur = newStreamer(ctx, m.gen, unit, src, m.msgs)
	return m.gen, nil
}

// Pause toggles forwarding. While paused, entries accumulate (bounded) and
// are flushed in order on resume.
func (m *Manager) Pause(paused bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur != nil {
		m.cur.setPaused(paused)
	}
}

// Stop ends the current subscription, if any, and bumps the generation.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	m.gen++
}

func (m *Manager) stopLocked() {
	if m.cur != nil {
		m.cur.stop()
		m.cur = nil
	}
}

// streamer runs two goroutines per subscription: a reader draining the
// blocking source and a flusher forwarding batches at the bounded rate.
type streamer struct {
	gen  uint64
	unit string
	src  EntrySource
	msgs chan<- any
	sctx *stopper.Context

	mu      sync.Mutex
	pending []systemd.LogEntry
	held    []systemd.LogEntry
	paused  bool

	kick    chan struct{}
	limiter *rate.Limiter
}

func newStreamer(ctx context.Context, gen uint64, unit string, src EntrySource, msgs chan<- any) *streamer {
	s := &streamer{
		gen:     gen,
		unit:    unit,
		src:     src,
		msgs:    msgs,
		sctx:    stopper.WithContext(ctx),
		kick:    make(chan struct{}, 1),
		limiter: rate.NewLimiter(flushRate, 1),
	}
	s.sctx.Go(func(_ *stopper.Context) error {
		s.read()
		return nil
	})
	s.sctx.Go(func(sctx *stopper.Context) error {
		s.flushLoop(sctx)
		return nil
	})
	return s
}

func (s *streamer) stop() {
	// Stop the source first so the blocked reader goroutine can exit.
	s.src.Stop()
	s.sctx.Stop(500 * time.Millisecond)
	_ = s.sctx.Wait()
}

// read drains the source until it ends. Stopping the streamer stops the
// source, which unblocks Next.
func (s *streamer) read() {
	for {
		entry, ok := s.src.Next()
		if !ok {
			if err := s.src.Err(); err != nil && !s.sctx.IsStopping() {
				s.post(StreamErrorMsg{Gen: s.gen, Unit: s.unit, Err: err})
			}
			return
		}
		s.enqueue(entry)
	}
}

func (s *streamer) enqueue(entry systemd.LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		s.held = append(s.held, entry)
		if len(s.held) > pauseLimit {
			s.held = s.held[len(s.held)-pauseLimit:]
		}
		return
	}
	s.pending = append(s.pending, entry)
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *streamer) setPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused == paused {
		return
	}
	s.paused = paused
	if !paused && len(s.held) > 0 {
		s.pending = append(s.pending, s.held...)
		s.held = nil
		select {
		case s.kick <- struct{}{}:
		default:
		}
	}
}

// flushLoop forwards pending entries as one batch per limiter token so a
// chatty unit cannot flood the UI channel.
func (s *streamer) flushLoop(ctx *stopper.Context) {
	for {
		select {
		case <-s.sctx.Stopping():
			return
		case <-s.kick:
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
		s.flush()
	}
}

func (s *streamer) flush() {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()
	if len(batch) > 0 {
		s.post(BatchMsg{Gen: s.gen, Unit: s.unit, Entries: batch})
	}
}

// post delivers a message unless the streamer is shutting down. A full UI
// channel must never keep stop from returning.
func (s *streamer) post(msg any) {
	select {
	case s.msgs <- msg:
	case <-s.sctx.Stopping():
	}
}
