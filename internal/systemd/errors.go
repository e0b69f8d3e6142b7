package systemd

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors for the failure taxonomy. Bus-level failures are wrapped
// with one of these so callers can route on errors.Is without inspecting
// D-Bus detail. A job that ran and did not succeed is reported as a plain
// error carrying the job result.
var (
	// ErrConnection covers an unreachable or closed service manager.
	ErrConnection = errors.New("service manager unreachable")
	// ErrPermissionDenied covers a control action rejected by polkit or the
	// bus policy.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrTimeout covers a control action that exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")
	// ErrNotFound covers a unit that does not exist (anymore).
	ErrNotFound = errors.New("unit not found")
)

// classify wraps a raw bus error with the matching sentinel. The bus library
// surfaces D-Bus error names inside the message, so matching on substrings is
// the practical option here.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return wrap(ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "nosuchunit") || strings.Contains(msg, "not loaded") || strings.Contains(msg, "not-found"):
		return wrap(ErrNotFound, err)
	case strings.Contains(msg, "accessdenied") ||
		strings.Contains(msg, "access denied") ||
		strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "interactive authentication required") ||
		strings.Contains(msg, "interactiveauthorizationrequired") ||
		strings.Contains(msg, "not authorized"):
		return wrap(ErrPermissionDenied, err)
	case strings.Contains(msg, "timed out") || strings.Contains(msg, "timeout"):
		return wrap(ErrTimeout, err)
	default:
		return wrap(ErrConnection, err)
	}
}

type wrapped struct {
	sentinel error
	cause    error
}

func wrap(sentinel, cause error) error {
	return &wrapped{sentinel: sentinel, cause: cause}
}

func (w *wrapped) Error() string { return w.sentinel.Error() + ": " + w.cause.Error() }

func (w *wrapped) Is(target error) bool { return errors.Is(w.sentinel, target) }

func (w *wrapped) Unwrap() error { return w.cause }
