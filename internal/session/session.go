// Package session drives a single connection through the reactor:
// waiting for connect completion, sending messages under backpressure,
// and the error-only drain that precedes teardown.
//
// A Session is not safe for concurrent use; it is driven by the
// goroutine that owns the Poll.
package session

import (
	"context"
	"fmt"
	"time"

	pcerr "pollcat/internal/errors"
	"pollcat/internal/metrics"
	"pollcat/internal/poll"
	"pollcat/internal/retry"
	"pollcat/internal/transport"
	"pollcat/util"
)

// Session binds a connection to its registration on a Poll.
type Session struct {
	Conn    transport.Conn
	Poll    *poll.Poll
	Token   poll.Token
	Events  *poll.Events
	Addr    string // target, for diagnostics
	Logger  *util.Logger
	Metrics *metrics.Collector

	registered bool
}

// New creates a Session with an events batch of the given capacity.
func New(conn transport.Conn, p *poll.Poll, token poll.Token, capacity int, logger *util.Logger, m *metrics.Collector) *Session {
	return &Session{
		Conn:    conn,
		Poll:    p,
		Token:   token,
		Events:  poll.NewEvents(capacity),
		Logger:  logger,
		Metrics: m,
	}
}

// wait runs one logical poll, retrying interruptions.  A bounded
// timeout is measured from the first attempt.
func (s *Session) wait(ctx context.Context, timeout time.Duration) error {
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	return retry.Interrupts().Do(ctx, func(attempt int) error {
		if err := ctx.Err(); err != nil {
			return retry.Permanent(err)
		}
		d := timeout
		if !deadline.IsZero() {
			d = time.Until(deadline)
			if d < 0 {
				d = 0
			}
		}
		err := s.Poll.Poll(s.Events, d)
		if pcerr.IsInterrupted(err) {
			s.Metrics.PollInterrupted()
			s.Logger.Debug("poll interrupted (attempt %d)", attempt)
			return err
		}
		if err != nil {
			return err
		}
		s.Metrics.PollReturned(s.Events.Len())
		return nil
	})
}

// ownEvent returns the combined kind of this session's events in the
// current batch.
func (s *Session) ownEvent() poll.EventKind {
	var kind poll.EventKind
	for _, ev := range s.Events.All() {
		if ev.Token() != s.Token {
			s.Logger.Debug("ignoring event for foreign token %d", ev.Token())
			continue
		}
		kind |= ev.Kind()
	}
	return kind
}

// AwaitConnected registers the connection for writable readiness and
// waits at most timeout for the connect to complete.  An empty batch
// is reported as errors.ErrTimeout, distinct from a transport error.
// On success interest widens to writable|error.
func (s *Session) AwaitConnected(ctx context.Context, timeout time.Duration) error {
	if err := s.Poll.Register(s.Conn, s.Token, poll.Writable); err != nil {
		return err
	}
	s.registered = true

	if err := s.wait(ctx, timeout); err != nil {
		return err
	}
	if s.Events.IsEmpty() {
		return fmt.Errorf("connection timeout after %v: %w", timeout, pcerr.ErrTimeout)
	}

	kind := s.ownEvent()
	if err := s.Conn.SocketError(); err != nil {
		return err
	}
	if kind.IsError() {
		return pcerr.Wrap("connect", s.Addr, pcerr.ErrPeerClosed)
	}

	s.Metrics.Connected()
	return s.Poll.Reregister(s.Conn, s.Token, poll.Writable|poll.Error)
}

// Send writes payload completely, waiting for writable readiness
// before every attempt.  An error-kind event ends the send with
// errors.ErrPeerClosed before anything else is written.
func (s *Session) Send(ctx context.Context, payload []byte) error {
	var snd Sender
	snd.Start(payload)

	for snd.State() == Sending {
		if err := s.wait(ctx, poll.Forever); err != nil {
			return err
		}
		kind := s.ownEvent()
		if kind.IsError() {
			s.Logger.Verbose("error event at offset %d/%d", snd.Offset(), len(payload))
			return pcerr.ErrPeerClosed
		}
		if !kind.IsWritable() {
			continue
		}

		n, err := snd.Step(s.Conn)
		switch {
		case err == nil:
			s.Metrics.Wrote(n)
		case pcerr.IsWouldBlock(err):
			if n > 0 {
				s.Metrics.Wrote(n)
			}
			s.Metrics.WouldBlock()
			s.Logger.Debug("would block at offset %d/%d", snd.Offset(), len(payload))
		default:
			s.Metrics.RecordError(err.Error())
		}
	}

	if snd.State() == Failed {
		return snd.Err()
	}
	s.Metrics.MessageSent()
	return nil
}

// Drain narrows interest to error-only and performs one bounded poll
// so that a pending error notification is consumed, then deregisters
// the connection.
func (s *Session) Drain(ctx context.Context, timeout time.Duration) error {
	if !s.registered {
		return nil
	}
	if err := s.Poll.Reregister(s.Conn, s.Token, poll.Error); err != nil {
		return err
	}
	err := s.wait(ctx, timeout)
	if err == nil && s.ownEvent().IsError() {
		s.Logger.Debug("drained pending error notification")
	}

	s.registered = false
	if derr := s.Poll.Deregister(s.Conn); derr != nil {
		return pcerr.Join(err, derr)
	}
	return err
}

// Close deregisters the connection (if registered) and closes it.
func (s *Session) Close() error {
	var errs []error
	if s.registered {
		s.registered = false
		if err := s.Poll.Deregister(s.Conn); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.Conn.Close(); err != nil {
		errs = append(errs, err)
	}
	return pcerr.Join(errs...)
}

// Registered reports whether the connection is still in the poll's
// registration table.
func (s *Session) Registered() bool { return s.registered }
