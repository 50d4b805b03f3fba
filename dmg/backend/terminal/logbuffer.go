package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LogEntry is a single formatted log line.
type LogEntry struct {
	Time    time.Time
	Level   slog.Level
	Message string
}

// String formats the entry for the log pane.
func (e LogEntry) String() string {
	var level string
	switch {
	case e.Level >= slog.LevelError:
		level = "ERR"
	case e.Level >= slog.LevelWarn:
		level = "WRN"
	case e.Level >= slog.LevelInfo:
		level = "INF"
	default:
		level = "DBG"
	}
	return fmt.Sprintf("%s [%s] %s", e.Time.Format("15:04:05"), level, e.Message)
}

// LogBuffer keeps the most recent log entries. It is safe for concurrent use.
type LogBuffer struct {
	mu      sync.Mutex
	entries []LogEntry
	next    int
	count   int
}

// NewLogBuffer creates a buffer holding up to size entries.
func NewLogBuffer(size int) *LogBuffer {
	return &LogBuffer{entries: make([]LogEntry, size)}
}

// Add stores an entry, overwriting the oldest one when full.
func (lb *LogBuffer) Add(entry LogEntry) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.entries[lb.next] = entry
	lb.next = (lb.next + 1) % len(lb.entries)
	lb.count = min(lb.count+1, len(lb.entries))
}

// Recent returns up to n entries, newest first.
func (lb *LogBuffer) Recent(n int) []LogEntry {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	n = min(n, lb.count)
	out := make([]LogEntry, n)
	for i := range out {
		out[i] = lb.entries[(lb.next-1-i+len(lb.entries))%len(lb.entries)]
	}
	return out
}

// LogHandler is a slog.Handler writing into a LogBuffer, so logs can be shown
// inside the terminal instead of corrupting the screen.
type LogHandler struct {
	buffer *LogBuffer
	level  slog.Leveler
	attrs  string
	group  string
}

// NewLogHandler creates a handler for records at or above level.
func NewLogHandler(buffer *LogBuffer, level slog.Leveler) *LogHandler {
	return &LogHandler{buffer: buffer, level: level}
}

func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LogHandler) Handle(_ context.Context, record slog.Record) error {
	var sb strings.Builder
	sb.WriteString(record.Message)
	sb.WriteString(h.attrs)
	record.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&sb, a)
		return true
	})

	h.buffer.Add(LogEntry{
		Time:    record.Time,
		Level:   record.Level,
		Message: sb.String(),
	})
	return nil
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var sb strings.Builder
	sb.WriteString(h.attrs)
	for _, a := range attrs {
		h.appendAttr(&sb, a)
	}

	clone := *h
	clone.attrs = sb.String()
	return &clone
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = h.group + name + "."
	return &clone
}

func (h *LogHandler) appendAttr(sb *strings.Builder, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	fmt.Fprintf(sb, " %s%s=%v", h.group, a.Key, a.Value)
}
