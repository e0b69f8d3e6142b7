package systemd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseJournalLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		timestamp string
		priority  int
		message   string
	}{
		{
			name:      "plain message",
			line:      "Aug 25 14:03:22.123456 host nginx[1234]: worker process started",
			timestamp: "Aug 25 14:03:22.123456",
			priority:  PriorityUnknown,
			message:   "worker process started",
		},
		{
			name:      "priority prefix",
			line:      "Aug 25 14:03:22.123456 host nginx[1234]: <3>bind() failed",
			timestamp: "Aug 25 14:03:22.123456",
			priority:  3,
			message:   "bind() failed",
		},
		{
			name:      "message containing colons",
			line:      "Aug 25 14:03:22.000001 host app[9]: listen on 0.0.0.0: port 80",
			timestamp: "Aug 25 14:03:22.000001",
			priority:  PriorityUnknown,
			message:   "listen on 0.0.0.0: port 80",
		},
		{
			name:      "malformed line kept whole",
			line:      "no timestamp here",
			timestamp: "",
			priority:  PriorityUnknown,
			message:   "no timestamp here",
		},
		{
			name:      "angle bracket that is not a priority",
			line:      "Aug 25 14:03:22.123456 host app[9]: <ok> ready",
			timestamp: "Aug 25 14:03:22.123456",
			priority:  PriorityUnknown,
			message:   "<ok> ready",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			entry := ParseJournalLine("nginx.service", tc.line)
			assert.Equal(t, "nginx.service", entry.Unit)
			assert.Equal(t, tc.timestamp, entry.Timestamp)
			assert.Equal(t, tc.priority, entry.Priority)
			assert.Equal(t, tc.message, entry.Message)
			assert.Equal(t, tc.line, entry.Raw)
		})
	}
}
