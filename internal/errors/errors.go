// Package errors provides the error taxonomy shared by the reactor,
// the transport and the session layers.
//
// Sentinels classify outcomes (would-block, interrupted, timed out,
// peer closed).  Structured types carry the operation context (fd,
// token, address) that helps callers decide how to handle a failure
// and gives better diagnostics than plain string wrapping.
package errors

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	// Registration failures.
	ErrAlreadyRegistered = errors.New("handle already registered")
	ErrNotRegistered     = errors.New("handle not registered")
	ErrInvalidInterest   = errors.New("empty interest mask")
	ErrTokenInUse        = errors.New("token already bound to another handle")

	// ErrInterrupted is the single recoverable interruption kind: the
	// blocking poll was woken by a signal or by Poll.Wake before any
	// handle became ready.  Callers retry.
	ErrInterrupted = errors.New("poll interrupted")

	// ErrWouldBlock is returned by non-blocking writes that cannot make
	// progress.  It is never a failure.
	ErrWouldBlock = errors.New("operation would block")

	ErrTimeout             = errors.New("operation timed out")
	ErrPeerClosed          = errors.New("connection closed by peer")
	ErrPollClosed          = errors.New("poll is closed")
	ErrNotConnected        = errors.New("not connected")
	ErrPlatformUnsupported = errors.New("platform unsupported")
)

// ── Structured error types ───────────────────────────────────────────

// InitError reports that the OS readiness mechanism could not be
// created.  It is fatal at startup.
type InitError struct {
	Backend string // "epoll", ...
	Err     error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("poll init (%s): %v", e.Backend, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// RegistrationError is a usage error on the registration table.  Err
// is one of ErrAlreadyRegistered, ErrNotRegistered, ErrInvalidInterest
// or ErrTokenInUse, or the raw OS error when the kernel refused the
// change.
type RegistrationError struct {
	Op    string // "register", "reregister", "deregister"
	FD    int
	Token uint64
	Err   error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("%s fd %d (token %d): %v", e.Op, e.FD, e.Token, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// NetworkError represents a failure in a transport operation.
type NetworkError struct {
	Op   string // operation: "resolve", "socket", "connect", "write", "peer"
	Addr string // network address involved
	Err  error  // underlying error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += " (hint: " + e.Hint + ")"
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{Op: op, Addr: addr, Err: err}
}

// Registration creates a RegistrationError.
func Registration(op string, fd int, token uint64, err error) *RegistrationError {
	return &RegistrationError{Op: op, FD: fd, Token: token, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsWouldBlock reports whether err means "try again after the next
// readiness event".
func IsWouldBlock(err error) bool {
	return errors.Is(err, ErrWouldBlock) ||
		errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EWOULDBLOCK)
}

// IsInterrupted reports whether a poll should simply be retried.
func IsInterrupted(err error) bool {
	return errors.Is(err, ErrInterrupted) || errors.Is(err, syscall.EINTR)
}

// IsTimeout reports whether err is the bounded-wait timeout outcome.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, os.ErrDeadlineExceeded)
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
