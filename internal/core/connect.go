package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eapache/queue"

	pcerr "pollcat/internal/errors"
	"pollcat/internal/metrics"
	"pollcat/internal/poll"
	"pollcat/internal/session"
	"pollcat/internal/transport"
	"pollcat/util"
)

// clientToken identifies the single outbound connection.
const clientToken poll.Token = 0

// ConnectMode dials the target, waits for the connection to complete
// and writes Count messages to it, rotating through Messages and
// pausing Interval after each one, the last included.  Every write
// waits for writable readiness, so a slow peer throttles the stream
// instead of failing it.
type ConnectMode struct {
	Dialer         transport.Dialer
	Address        string
	Messages       []string
	Count          int
	Interval       time.Duration
	ConnectTimeout time.Duration
	DrainTimeout   time.Duration
	EventsCapacity int
	Logger         *util.Logger
	Metrics        *metrics.Collector

	// Stats prints the metrics snapshot as JSON when Run returns.
	Stats bool
}

// Run executes the full client lifecycle.  A peer that goes away
// mid-stream ends the run cleanly with "connection closed"; connect
// failures and hard write errors are returned.
func (m *ConnectMode) Run(ctx context.Context) (err error) {
	defer m.Dialer.Close()

	if m.Metrics == nil {
		m.Metrics = metrics.New()
	}
	if m.Stats {
		defer func() { m.Logger.Print("%s", m.Metrics.JSON()) }()
	}
	defer func() {
		if err != nil {
			m.Metrics.RecordError(err.Error())
		}
	}()

	p, err := poll.New()
	if err != nil {
		return err
	}
	defer p.Close()
	m.Logger.Debug("reactor backend: %s", p.Backend())

	// a cancelled context must not leave a Forever poll blocked
	stop := context.AfterFunc(ctx, func() {
		if werr := p.Wake(); werr != nil {
			m.Logger.Debug("wake: %v", werr)
		}
	})
	defer stop()

	m.Logger.Verbose("connecting to %s", m.Address)
	conn, err := m.Dialer.Dial(ctx, m.Address)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", m.Address, err)
	}

	sess := session.New(conn, p, clientToken, m.EventsCapacity, m.Logger, m.Metrics)
	sess.Addr = m.Address
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			m.Logger.Debug("close: %v", cerr)
		}
	}()

	if err := sess.AwaitConnected(ctx, m.ConnectTimeout); err != nil {
		return fmt.Errorf("connect to %s: %w", m.Address, err)
	}
	peer, err := conn.PeerAddr()
	if err != nil {
		return err
	}
	m.Logger.Print("connection established to %s", peer)

	runErr := m.stream(ctx, sess)

	// the drain runs even after cancellation; it is bounded
	if derr := sess.Drain(context.WithoutCancel(ctx), m.DrainTimeout); derr != nil {
		m.Logger.Warn("drain: %v", derr)
	}
	return runErr
}

// outbound is one queued write: its position in the stream and the
// payload it carries.
type outbound struct {
	seq     int
	payload []byte
}

// backlog queues the Count writes of a run in order.  Payloads are
// converted once per distinct message and shared by the entries that
// repeat it.
func (m *ConnectMode) backlog() *queue.Queue {
	payloads := make([][]byte, len(m.Messages))
	for i, msg := range m.Messages {
		payloads[i] = []byte(msg)
	}
	q := queue.New()
	if len(payloads) == 0 {
		return q
	}
	for i := 0; i < m.Count; i++ {
		q.Add(outbound{seq: i, payload: payloads[i%len(payloads)]})
	}
	return q
}

// stream writes the backlog in order.
func (m *ConnectMode) stream(ctx context.Context, sess *session.Session) error {
	backlog := m.backlog()

	for backlog.Length() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		out := backlog.Peek().(outbound)
		m.Logger.Print("write #%d %s", out.seq, out.payload)

		if err := sess.Send(ctx, out.payload); err != nil {
			if errors.Is(err, pcerr.ErrPeerClosed) {
				m.Logger.Print("connection closed")
				return nil
			}
			return err
		}
		backlog.Remove()

		if err := pace(ctx, m.Interval); err != nil {
			return err
		}
	}
	m.Logger.Verbose("sent %d messages (%d bytes)", m.Metrics.MessagesSent(), m.Metrics.TotalBytesOut())
	return nil
}

// pace sleeps for d or until ctx is done.
func pace(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
