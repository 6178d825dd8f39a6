package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sync"
)

// TestLogBuffer collects JSON log lines written by concurrent handlers.
type TestLogBuffer struct {
	mu  sync.Mutex
	out bytes.Buffer
}

// NewTestLogger returns a debug logger and the buffer it writes to.
func NewTestLogger() (*slog.Logger, *TestLogBuffer) {
	buf := new(TestLogBuffer)
	return New(buf, slog.LevelDebug), buf
}

func (b *TestLogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.out.Write(p)
}

func (b *TestLogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.out.String()
}

// Entries parses each record. Non-JSON lines are dropped.
func (b *TestLogBuffer) Entries() []map[string]any {
	var entries []map[string]any
	for _, line := range bytes.Split([]byte(b.String()), []byte("\n")) {
		entry := map[string]any{}
		if len(line) == 0 || json.Unmarshal(line, &entry) != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}
