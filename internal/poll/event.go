package poll

import "strings"

// Token is the caller-assigned identifier correlating a registration
// with the events delivered for it.  The reactor never interprets it.
type Token uint64

// EventKind is a set of readiness conditions.  Values combine with |.
type EventKind uint8

const (
	Readable EventKind = 1 << iota
	Writable
	Error

	kindMask = Readable | Writable | Error
)

func (k EventKind) IsReadable() bool { return k&Readable != 0 }
func (k EventKind) IsWritable() bool { return k&Writable != 0 }
func (k EventKind) IsError() bool    { return k&Error != 0 }
func (k EventKind) IsEmpty() bool    { return k&kindMask == 0 }

// Contains reports whether every condition in other is also in k.
func (k EventKind) Contains(other EventKind) bool { return k&other == other }

func (k EventKind) String() string {
	if k.IsEmpty() {
		return "none"
	}
	parts := make([]string, 0, 3)
	if k.IsReadable() {
		parts = append(parts, "readable")
	}
	if k.IsWritable() {
		parts = append(parts, "writable")
	}
	if k.IsError() {
		parts = append(parts, "error")
	}
	return strings.Join(parts, "|")
}

// Event is one readiness notification.  It is only meaningful while
// the Events batch that holds it has not been refilled.
type Event struct {
	token Token
	kind  EventKind
}

func (e Event) Token() Token     { return e.token }
func (e Event) Kind() EventKind  { return e.kind }
func (e Event) IsError() bool    { return e.kind.IsError() }
func (e Event) IsWritable() bool { return e.kind.IsWritable() }
func (e Event) IsReadable() bool { return e.kind.IsReadable() }

// Events is a bounded batch filled by Poll.Poll.  Create it once and
// reuse it across polls; each poll clears it first.
type Events struct {
	list  []Event
	ready []readiness
}

// readiness is what a selector reports before fd→token translation.
type readiness struct {
	fd   int
	kind EventKind
}

// NewEvents returns an empty batch that holds at most capacity events.
func NewEvents(capacity int) *Events {
	if capacity < 1 {
		capacity = 1
	}
	return &Events{
		list:  make([]Event, 0, capacity),
		ready: make([]readiness, capacity),
	}
}

func (ev *Events) Capacity() int { return cap(ev.list) }
func (ev *Events) Len() int      { return len(ev.list) }
func (ev *Events) IsEmpty() bool { return len(ev.list) == 0 }

// Clear drops all events without releasing the backing storage.
func (ev *Events) Clear() { ev.list = ev.list[:0] }

// At returns the i-th event in discovery order.
func (ev *Events) At(i int) Event { return ev.list[i] }

// All returns the events of the current batch.  The slice is reused by
// the next poll.
func (ev *Events) All() []Event { return ev.list }

func (ev *Events) push(e Event) bool {
	if len(ev.list) == cap(ev.list) {
		return false
	}
	ev.list = append(ev.list, e)
	return true
}
