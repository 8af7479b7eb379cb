// Package poll is a readiness reactor: callers register non-blocking
// handles with an interest mask, block in Poll until one of them is
// ready (or a timeout elapses) and dispatch the resulting events by
// Token.
//
// The reactor only tracks readiness.  It never reads from or writes to
// a registered handle and never owns it: callers must Deregister a
// handle before closing it.
//
// A Poll is meant to be driven by one goroutine.  Registration calls
// are serialised internally so they may come from other goroutines,
// but Poll itself must not be called concurrently on the same instance.
package poll

import (
	"sync"
	"time"

	pcerr "pollcat/internal/errors"
)

// Forever makes Poll block until an event arrives.
const Forever time.Duration = -1

// Source is a registrable handle.  FD returns the OS descriptor that
// the readiness mechanism watches.
type Source interface {
	FD() int
}

// selector is the OS readiness mechanism behind a Poll.
type selector interface {
	name() string
	add(fd int, interest EventKind) error
	modify(fd int, interest EventKind) error
	remove(fd int) error
	// wait fills out with up to len(out) ready descriptors.  woken is
	// true when wake was called since the previous wait.
	wait(out []readiness, timeout time.Duration) (n int, woken bool, err error)
	wake() error
	close() error
}

type registration struct {
	fd       int
	interest EventKind
}

// Poll owns the registration table and the OS readiness instance.
type Poll struct {
	mu     sync.Mutex
	sel    selector
	regs   map[Token]*registration
	byFD   map[int]Token
	closed bool
}

// New creates a reactor backed by the platform's readiness mechanism.
// It fails with *errors.InitError when that mechanism is unavailable.
func New() (*Poll, error) {
	sel, err := newSelector()
	if err != nil {
		return nil, err
	}
	return &Poll{
		sel:  sel,
		regs: make(map[Token]*registration),
		byFD: make(map[int]Token),
	}, nil
}

// Register associates src with token and interest.
func (p *Poll) Register(src Source, token Token, interest EventKind) error {
	fd := src.FD()
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return pcerr.Registration("register", fd, uint64(token), pcerr.ErrPollClosed)
	}
	if interest.IsEmpty() {
		return pcerr.Registration("register", fd, uint64(token), pcerr.ErrInvalidInterest)
	}
	if _, ok := p.byFD[fd]; ok {
		return pcerr.Registration("register", fd, uint64(token), pcerr.ErrAlreadyRegistered)
	}
	if _, ok := p.regs[token]; ok {
		return pcerr.Registration("register", fd, uint64(token), pcerr.ErrTokenInUse)
	}
	if err := p.sel.add(fd, interest); err != nil {
		return pcerr.Registration("register", fd, uint64(token), err)
	}
	p.regs[token] = &registration{fd: fd, interest: interest & kindMask}
	p.byFD[fd] = token
	return nil
}

// Reregister replaces the interest mask of an existing registration.
// token may differ from the current one as long as it is not bound to
// another live registration.
func (p *Poll) Reregister(src Source, token Token, interest EventKind) error {
	fd := src.FD()
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return pcerr.Registration("reregister", fd, uint64(token), pcerr.ErrPollClosed)
	}
	old, ok := p.byFD[fd]
	if !ok {
		return pcerr.Registration("reregister", fd, uint64(token), pcerr.ErrNotRegistered)
	}
	if interest.IsEmpty() {
		return pcerr.Registration("reregister", fd, uint64(token), pcerr.ErrInvalidInterest)
	}
	if old != token {
		if _, taken := p.regs[token]; taken {
			return pcerr.Registration("reregister", fd, uint64(token), pcerr.ErrTokenInUse)
		}
	}
	if err := p.sel.modify(fd, interest); err != nil {
		return pcerr.Registration("reregister", fd, uint64(token), err)
	}
	reg := p.regs[old]
	reg.interest = interest & kindMask
	if old != token {
		delete(p.regs, old)
		p.regs[token] = reg
		p.byFD[fd] = token
	}
	return nil
}

// Deregister removes the registration of src.  A second call fails
// with ErrNotRegistered.
func (p *Poll) Deregister(src Source) error {
	fd := src.FD()
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return pcerr.Registration("deregister", fd, 0, pcerr.ErrPollClosed)
	}
	token, ok := p.byFD[fd]
	if !ok {
		return pcerr.Registration("deregister", fd, 0, pcerr.ErrNotRegistered)
	}
	delete(p.byFD, fd)
	delete(p.regs, token)
	if err := p.sel.remove(fd); err != nil {
		return pcerr.Registration("deregister", fd, uint64(token), err)
	}
	return nil
}

// Len returns the number of live registrations.
func (p *Poll) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.regs)
}

// Poll clears events and blocks until at least one registered handle
// satisfies its interest, or timeout elapses.  A negative timeout
// blocks indefinitely.
//
// A timeout is not an error: Poll returns nil and events stays empty.
// Error conditions reported by the OS are always delivered with the
// Error kind, whatever the interest.  ErrInterrupted is returned when
// a signal or Wake ended the wait before anything became ready.
func (p *Poll) Poll(events *Events, timeout time.Duration) error {
	events.Clear()

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return pcerr.ErrPollClosed
	}

	n, woken, err := p.sel.wait(events.ready, timeout)
	if err != nil {
		return err
	}

	p.mu.Lock()
	for _, r := range events.ready[:n] {
		token, ok := p.byFD[r.fd]
		if !ok {
			// deregistered while we were blocked
			continue
		}
		kind := r.kind & (p.regs[token].interest | Error)
		if kind.IsEmpty() {
			continue
		}
		events.push(Event{token: token, kind: kind})
	}
	p.mu.Unlock()

	if woken && events.IsEmpty() {
		return pcerr.ErrInterrupted
	}
	return nil
}

// Wake makes a blocked Poll return ErrInterrupted.  It is safe to call
// from any goroutine.
func (p *Poll) Wake() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return pcerr.ErrPollClosed
	}
	return p.sel.wake()
}

// Close releases the OS instance and drops every registration.
func (p *Poll) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return pcerr.ErrPollClosed
	}
	p.closed = true
	p.regs = nil
	p.byFD = nil
	return p.sel.close()
}

// Backend names the OS readiness mechanism in use ("epoll").
func (p *Poll) Backend() string { return p.sel.name() }
