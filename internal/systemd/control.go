package systemd

import (
	"context"
	"fmt"
	"time"
)

// DefaultControlTimeout bounds a single control action. Jobs that have not
// completed by then are reported as ErrTimeout; systemd keeps running the job
// but the UI stops waiting for it.
const DefaultControlTimeout = 10 * time.Second

// ControlClient is the write side of the service manager.
type ControlClient interface {
	// Apply runs the given action against the unit and blocks until the
	// enqueued job completes or the timeout elapses.
	Apply(ctx context.Context, unit string, action Action) error
}

// Controller executes control actions over a bus connection: start, stop,
// restart and reload as queued jobs, enable and disable as unit file
// operations.
type Controller struct {
	conn    *Conn
	timeout time.Duration
}

// NewController wraps the connection with the default action timeout.
func NewController(conn *Conn) *Controller {
	return &Controller{conn: conn, timeout: DefaultControlTimeout}
}

// Apply enqueues the action in "replace" mode and waits for the job result.
// Jobs conflicting with a queued one are replaced rather than rejected, which
// matches what systemctl does.
func (c *Controller) Apply(ctx context.Context, unit string, action Action) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if action == ActionEnable || action == ActionDisable {
		return c.setUnitFileState(ctx, unit, action)
	}

	// Buffered so the bus library can always deliver the result even after
	// we stop listening.
	result := make(chan string, 1)

	var err error
	switch action {
	case ActionStart:
		_, err = c.conn.bus.StartUnitContext(ctx, unit, "replace", result)
	case ActionStop:
		_, err = c.conn.bus.StopUnitContext(ctx, unit, "replace", result)
	case ActionRestart:
		_, err = c.conn.bus.RestartUnitContext(ctx, unit, "replace", result)
	case ActionReload:
		_, err = c.conn.bus.ReloadUnitContext(ctx, unit, "replace", result)
	default:
		return fmt.Errorf("unsupported action %q on %s", action, unit)
	}
	if err != nil {
		return classify(err)
	}

	select {
	case outcome := <-result:
		if outcome != "done" {
			return jobError(unit, action, outcome)
		}
		return nil
	case <-ctx.Done():
		return classify(ctx.Err())
	}
}

// setUnitFileState toggles the persistent enablement of the unit file.
// These are file operations, not jobs: there is no result channel to wait on,
// and the manager has to re-read its unit files before the change shows up.
func (c *Controller) setUnitFileState(ctx context.Context, unit string, action Action) error {
	var err error
	if action == ActionEnable {
		_, _, err = c.conn.bus.EnableUnitFilesContext(ctx, []string{unit}, false, true)
	} else {
		_, err = c.conn.bus.DisableUnitFilesContext(ctx, []string{unit}, false)
	}
	if err != nil {
		return classify(err)
	}
	if err := c.conn.bus.ReloadContext(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// jobError converts a non-"done" systemd job result string into the taxonomy.
func jobError(unit string, action Action, outcome string) error {
	cause := fmt.Errorf("%s of %s finished with result %q", action, unit, outcome)
	switch outcome {
	case "timeout":
		return wrap(ErrTimeout, cause)
	default:
		// "failed", "canceled", "dependency", "skipped": the job ran and did
		// not succeed. That is a connection-level concern for the caller only
		// in the sense that the action did not take effect.
		return cause
	}
}
