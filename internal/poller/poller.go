// Package poller drives the periodic bulk refresh of the unit set. It owns
// the last successful snapshot and forwards only the change set, so an idle
// system costs the UI nothing.
package poller

import (
	"context"
	"time"

	"vawter.tech/stopper"

	"unitscope/internal/registry"
	"unitscope/internal/systemd"
)

// DefaultInterval is the base poll cadence.
const DefaultInterval = 5 * time.Second

// DefaultMaxInterval caps the backoff applied after consecutive failures.
const DefaultMaxInterval = 60 * time.Second

// DiffMsg carries one poll cycle's change set. It is sent on every
// successful cycle, including no-op ones, so the receiver can clear any
// degraded-connectivity state.
type DiffMsg struct {
	Diff registry.Diff
	At   time.Time
}

// ErrorMsg reports a failed poll cycle together with the running count of
// consecutive failures since the last success.
type ErrorMsg struct {
	Err         error
	Consecutive int
}

// Poller periodically lists units and diffs against its previous snapshot.
type Poller struct {
	querier  systemd.Querier
	msgs     chan<- any
	interval time.Duration
	maxWait  time.Duration

	refresh chan struct{}
	sctx    *stopper.Context
}

// New builds a poller. interval and maxWait fall back to the defaults when
// non-positive.
func New(querier systemd.Querier, msgs chan<- any, interval, maxWait time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxInterval
	}
	if maxWait < interval {
		maxWait = interval
	}
	return &Poller{
		querier:  querier,
		msgs:     msgs,
		interval: interval,
		maxWait:  maxWait,
		refresh:  make(chan struct{}, 1),
	}
}

// Start launches the poll loop. The first cycle runs immediately.
func (p *Poller) Start(ctx context.Context) {
	p.sctx = stopper.WithContext(ctx)
	p.sctx.Go(func(sctx *stopper.Context) error {
		p.run(sctx)
		return nil
	})
}

// Stop ends the loop and waits for it.
func (p *Poller) Stop() {
	if p.sctx == nil {
		return
	}
	p.sctx.Stop(time.Second)
	_ = p.sctx.Wait()
}

// Refresh requests an immediate poll cycle. Multiple pending requests
// coalesce into one.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

func (p *Poller) run(sctx *stopper.Context) {
	var prev []systemd.ServiceUnit
	failures := 0
	wait := p.interval

	for {
		units, err := p.list(sctx)
		if sctx.IsStopping() {
			return
		}
		if err != nil {
			failures++
			p.post(sctx, ErrorMsg{Err: err, Consecutive: failures})
			wait = p.backoff(failures)
		} else {
			failures = 0
			wait = p.interval
			p.post(sctx, DiffMsg{Diff: registry.Compute(prev, units), At: time.Now()})
			prev = units
		}

		timer := time.NewTimer(wait)
		select {
		case <-sctx.Stopping():
			timer.Stop()
			return
		case <-p.refresh:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// post delivers a message unless the poller is stopping. A full UI channel
// must never keep Stop from returning.
func (p *Poller) post(sctx *stopper.Context, msg any) {
	select {
	case p.msgs <- msg:
	case <-sctx.Stopping():
	}
}

func (p *Poller) list(ctx context.Context) ([]systemd.ServiceUnit, error) {
	ctx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()
	return p.querier.ListUnits(ctx)
}

// backoff doubles the base interval per consecutive failure, capped.
func (p *Poller) backoff(failures int) time.Duration {
	wait := p.interval
	for i := 1; i < failures; i++ {
		wait *= 2
		if wait >= p.maxWait {
			return p.maxWait
		}
	}
	if wait > p.maxWait {
		return p.maxWait
	}
	return wait
}
