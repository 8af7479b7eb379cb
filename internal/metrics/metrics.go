// Package metrics provides lightweight, lock-free counters for the
// reactor and write path of a pollcat session.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for a session.
// A nil Collector is safe to use: all methods become no-ops.
type Collector struct {
	polls       atomic.Int64
	timeouts    atomic.Int64
	interrupts  atomic.Int64
	events      atomic.Int64
	writes      atomic.Int64
	wouldBlocks atomic.Int64
	bytesOut    atomic.Int64
	messages    atomic.Int64
	errorsTotal atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	connectedAt  time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Reactor metrics ──────────────────────────────────────────────────

// PollReturned records one completed poll and the size of its batch.
// An empty batch counts as a timeout.
func (c *Collector) PollReturned(events int) {
	if c == nil {
		return
	}
	c.polls.Add(1)
	if events == 0 {
		c.timeouts.Add(1)
		return
	}
	c.events.Add(int64(events))
}

// PollInterrupted records a poll that ended with ErrInterrupted.
func (c *Collector) PollInterrupted() {
	if c == nil {
		return
	}
	c.interrupts.Add(1)
}

// Polls returns the number of completed polls.
func (c *Collector) Polls() int64 {
	if c == nil {
		return 0
	}
	return c.polls.Load()
}

// Timeouts returns the number of polls that produced no events.
func (c *Collector) Timeouts() int64 {
	if c == nil {
		return 0
	}
	return c.timeouts.Load()
}

// ── Write path ───────────────────────────────────────────────────────

// Connected stamps the moment connect completion was observed.
func (c *Collector) Connected() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.connectedAt = time.Now()
	c.mu.Unlock()
}

// Wrote records a successful write of n bytes.
func (c *Collector) Wrote(n int) {
	if c == nil {
		return
	}
	c.writes.Add(1)
	c.bytesOut.Add(int64(n))
}

// WouldBlock records a write that hit backpressure.
func (c *Collector) WouldBlock() {
	if c == nil {
		return
	}
	c.wouldBlocks.Add(1)
}

// MessageSent records a fully sent message.
func (c *Collector) MessageSent() {
	if c == nil {
		return
	}
	c.messages.Add(1)
}

// TotalBytesOut returns total bytes written.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// MessagesSent returns the number of fully sent messages.
func (c *Collector) MessagesSent() int64 {
	if c == nil {
		return 0
	}
	return c.messages.Load()
}

// WouldBlocks returns the number of writes that hit backpressure.
func (c *Collector) WouldBlocks() int64 {
	if c == nil {
		return 0
	}
	return c.wouldBlocks.Load()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	Polls            int64  `json:"polls"`
	PollTimeouts     int64  `json:"poll_timeouts"`
	PollInterrupts   int64  `json:"poll_interrupts"`
	Events           int64  `json:"events"`
	Writes           int64  `json:"writes"`
	WouldBlocks      int64  `json:"would_blocks"`
	BytesOut         int64  `json:"bytes_out"`
	MessagesSent     int64  `json:"messages_sent"`
	ErrorsTotal      int64  `json:"errors_total"`
	ConnectedAt      string `json:"connected_at,omitempty"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:         time.Since(c.startTime).Truncate(time.Millisecond).String(),
		Polls:          c.polls.Load(),
		PollTimeouts:   c.timeouts.Load(),
		PollInterrupts: c.interrupts.Load(),
		Events:         c.events.Load(),
		Writes:         c.writes.Load(),
		WouldBlocks:    c.wouldBlocks.Load(),
		BytesOut:       c.bytesOut.Load(),
		MessagesSent:   c.messages.Load(),
		ErrorsTotal:    c.errorsTotal.Load(),
	}
	if !c.connectedAt.IsZero() {
		s.ConnectedAt = c.connectedAt.Format(time.RFC3339Nano)
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
