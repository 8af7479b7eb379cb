// Package transport is the connection collaborator driven by the
// reactor: it builds non-blocking sockets on raw descriptors so that
// readiness comes from internal/poll rather than the Go runtime's own
// netpoller.  It owns connection establishment and nothing above it.
package transport

import (
	"context"
	"net"
)

// Conn is a non-blocking, socket-like handle.  It satisfies
// poll.Source through FD.
type Conn interface {
	// FD returns the descriptor to register with a Poll.
	FD() int

	// Write attempts a single non-blocking write.  It returns the
	// number of bytes accepted, errors.ErrWouldBlock when the send
	// buffer is full, or a *errors.NetworkError on a hard failure.
	Write(b []byte) (int, error)

	// PeerAddr returns the address of the connected peer.
	PeerAddr() (net.Addr, error)

	// SocketError returns (and clears) the pending socket error, e.g.
	// the outcome of an asynchronous connect.
	SocketError() error

	// Close releases the descriptor.  Deregister it first.
	Close() error
}

// Dialer opens outbound connections.
type Dialer interface {
	// Dial starts a connection to address.  With a non-blocking
	// dialer the connection may still be in progress on return; wait
	// for writable readiness before using it.
	Dial(ctx context.Context, address string) (Conn, error)

	// Close releases any long-lived resources held by the dialer.
	// Stateless dialers return nil.
	Close() error
}
