package transport

import (
	"context"
	"fmt"
)

// Builder configures and opens sockets.
//
//	conn, err := transport.NewBuilder().Nonblocking(true).Connect(ctx, "127.0.0.1:9000")
type Builder struct {
	network     string
	nonblocking bool
	sendBuffer  int
	localPort   int
	noDNS       bool
}

// NewBuilder returns a builder for non-blocking TCP connections.
func NewBuilder() *Builder {
	return &Builder{network: "tcp", nonblocking: true}
}

// Network selects "tcp" or "udp".
func (b *Builder) Network(network string) *Builder {
	b.network = network
	return b
}

// Nonblocking toggles O_NONBLOCK on the socket.
func (b *Builder) Nonblocking(on bool) *Builder {
	b.nonblocking = on
	return b
}

// SendBuffer sets SO_SNDBUF (0 keeps the OS default).
func (b *Builder) SendBuffer(size int) *Builder {
	b.sendBuffer = size
	return b
}

// LocalPort binds the source port before connecting (0 = ephemeral).
func (b *Builder) LocalPort(port int) *Builder {
	b.localPort = port
	return b
}

// NoDNS restricts the target host to numeric IP addresses.
func (b *Builder) NoDNS(on bool) *Builder {
	b.noDNS = on
	return b
}

// Dial implements Dialer.
func (b *Builder) Dial(ctx context.Context, address string) (Conn, error) {
	return b.Connect(ctx, address)
}

// Close is a no-op; a Builder holds no resources.
func (b *Builder) Close() error { return nil }

func (b *Builder) validate() error {
	switch b.network {
	case "tcp", "tcp4", "tcp6", "udp", "udp4", "udp6":
	default:
		return fmt.Errorf("unsupported network %q", b.network)
	}
	if b.sendBuffer < 0 {
		return fmt.Errorf("invalid send buffer size %d", b.sendBuffer)
	}
	if b.localPort < 0 || b.localPort > 65535 {
		return fmt.Errorf("invalid local port %d", b.localPort)
	}
	return nil
}
