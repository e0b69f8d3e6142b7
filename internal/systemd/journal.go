package systemd

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// JournalReader tails the journal for a single unit via a journalctl
// subprocess. It seeds the stream with a tail of recent entries and then
// follows new ones until stopped.
type JournalReader struct {
	cancel  context.CancelFunc
	cmd     *exec.Cmd
	scanner *bufio.Scanner
	unit    string
	err     error
}

// OpenJournal starts journalctl for the unit. tailLines controls how much
// history is emitted before live entries begin.
func OpenJournal(ctx context.Context, unit string, scope Scope, tailLines int) (*JournalReader, error) {
	ctx, cancel := context.WithCancel(ctx)

	args := []string{
		"-u", unit,
		"-o", "short-precise",
		"--no-pager",
		"-n", strconv.Itoa(tailLines),
		"-f",
	}
	if scope == ScopeUser {
		args = append(args, "--user")
	}

	cmd := exec.CommandContext(ctx, "journalctl", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("opening journal pipe for %s: %w", unit, err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("starting journalctl for %s: %w", unit, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &JournalReader{cancel: cancel, cmd: cmd, scanner: scanner, unit: unit}, nil
}

// Next blocks until the next journal line is available and returns it parsed.
// It returns false when the stream ended; Err then reports why.
func (r *JournalReader) Next() (LogEntry, bool) {
	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, "-- ") {
			// journalctl boot markers and blank separators carry no payload.
			continue
		}
		return ParseJournalLine(r.unit, line), true
	}
	if err := r.scanner.Err(); err != nil {
		r.err = fmt.Errorf("reading journal for %s: %w", r.unit, err)
	}
	return LogEntry{}, false
}

// Err returns the reason the stream ended, if it ended abnormally.
func (r *JournalReader) Err() error { return r.err }

// Stop terminates the subprocess and reaps it.
func (r *JournalReader) Stop() {
	r.cancel()
	_ = r.cmd.Wait()
}

// ParseJournalLine splits one short-precise journal line into its parts.
//
// The format is "MON DD HH:MM:SS.ffffff host identifier[pid]: message"; the
// message may start with an "<n>" syslog priority marker when the service
// logs with sd-daemon prefixes. Lines that do not match the shape are kept
// whole as the message so nothing is lost.
func ParseJournalLine(unit, line string) LogEntry {
	entry := LogEntry{Unit: unit, Priority: PriorityUnknown, Raw: line}

	// Timestamp is the first three fields, message starts after field five.
	fields := strings.SplitN(line, " ", 5)
	if len(fields) < 5 {
		entry.Message = line
		return entry
	}
	entry.Timestamp = strings.Join(fields[:3], " ")

	msg := fields[4]
	if idx := strings.Index(msg, ": "); idx >= 0 {
		msg = msg[idx+2:]
	}
	if prio, rest, ok := splitPriority(msg); ok {
		entry.Priority = prio
		msg = rest
	}
	entry.Message = msg
	return entry
}

// splitPriority strips a leading "<n>" syslog priority marker.
func splitPriority(msg string) (int, string, bool) {
	if len(msg) < 3 || msg[0] != '<' || msg[2] != '>' {
		return 0, "", false
	}
	prio := int(msg[1] - '0')
	if prio < 0 || prio > 7 {
		return 0, "", false
	}
	return prio, msg[3:], true
}
