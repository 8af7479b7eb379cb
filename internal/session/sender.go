package session

import (
	"errors"
	"fmt"

	pcerr "pollcat/internal/errors"
)

// State is the phase of one message send.
type State int

const (
	Idle State = iota
	Sending
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Writer is the non-blocking write half of a connection.
type Writer interface {
	Write(b []byte) (int, error)
}

var errInvalidWrite = errors.New("invalid write result")

// Sender tracks how much of a payload has been written.  It never
// writes on its own: the caller invokes Step once per writable
// readiness event, so a would-block result simply leaves it in
// Sending until the next event.
type Sender struct {
	payload []byte
	offset  int
	state   State
	err     error
}

// Start begins sending payload from offset 0.  An empty payload is
// immediately Done.
func (s *Sender) Start(payload []byte) {
	s.payload = payload
	s.offset = 0
	s.err = nil
	s.state = Sending
	if len(payload) == 0 {
		s.state = Done
	}
}

// Step makes one write attempt of the unsent remainder.  It returns
// the bytes accepted and the raw write outcome: nil, ErrWouldBlock or
// the hard error that moved the sender to Failed.
func (s *Sender) Step(w Writer) (int, error) {
	if s.state != Sending {
		return 0, nil
	}
	rest := s.payload[s.offset:]
	n, err := w.Write(rest)
	if n < 0 || n > len(rest) {
		s.fail(fmt.Errorf("%w: wrote %d of %d bytes", errInvalidWrite, n, len(rest)))
		return 0, s.err
	}
	s.offset += n

	switch {
	case err == nil:
	case pcerr.IsWouldBlock(err):
		return n, pcerr.ErrWouldBlock
	default:
		s.fail(err)
		return n, err
	}
	if s.offset == len(s.payload) {
		s.state = Done
	}
	return n, nil
}

func (s *Sender) fail(err error) {
	s.state = Failed
	s.err = err
}

func (s *Sender) State() State   { return s.state }
func (s *Sender) Offset() int    { return s.offset }
func (s *Sender) Remaining() int { return len(s.payload) - s.offset }

// Err is the hard error of a Failed sender.
func (s *Sender) Err() error { return s.err }
