//go:build unix

package transport

import (
	"context"
	"net"
	"os"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	pcerr "pollcat/internal/errors"
	"pollcat/util"
)

// Socket is a connected (or connecting) TCP/UDP socket on a raw
// descriptor.
type Socket struct {
	mu      sync.Mutex
	fd      int
	network string
	remote  net.Addr
	closed  bool
}

// Connect creates the socket and starts connecting to address.  For a
// non-blocking TCP socket the handshake usually completes later: wait
// for writable readiness, then check SocketError.
func (b *Builder) Connect(ctx context.Context, address string) (Conn, error) {
	if err := b.validate(); err != nil {
		return nil, pcerr.Wrap("connect", address, err)
	}
	raddr, err := util.ResolveAddr(b.network, address, b.noDNS)
	if err != nil {
		return nil, pcerr.Wrap("resolve", address, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, pcerr.Wrap("connect", address, err)
	}

	ip, port, err := util.AddrIPPort(raddr)
	if err != nil {
		return nil, pcerr.Wrap("connect", address, err)
	}
	family, sa := sockaddr(ip, port)

	sotype := unix.SOCK_STREAM
	if strings.HasPrefix(b.network, "udp") {
		sotype = unix.SOCK_DGRAM
	}

	fd, err := unix.Socket(family, sotype, 0)
	if err != nil {
		return nil, pcerr.Wrap("socket", address, os.NewSyscallError("socket", err))
	}
	unix.CloseOnExec(fd)

	if err := b.setup(fd, family); err != nil {
		unix.Close(fd)
		return nil, pcerr.Wrap("connect", address, err)
	}

	for {
		err = unix.Connect(fd, sa)
		if err != unix.EINTR {
			break
		}
		if !b.nonblocking {
			continue
		}
		// an interrupted non-blocking connect carries on asynchronously
		err = unix.EINPROGRESS
		break
	}
	if err != nil && !(b.nonblocking && err == unix.EINPROGRESS) {
		unix.Close(fd)
		return nil, pcerr.Wrap("connect", raddr.String(), os.NewSyscallError("connect", err))
	}

	return &Socket{fd: fd, network: b.network, remote: raddr}, nil
}

func (b *Builder) setup(fd, family int) error {
	if b.nonblocking {
		if err := unix.SetNonblock(fd, true); err != nil {
			return os.NewSyscallError("setnonblock", err)
		}
	}
	if b.sendBuffer > 0 {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, b.sendBuffer); err != nil {
			return os.NewSyscallError("setsockopt", err)
		}
	}
	if b.localPort > 0 {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
			return os.NewSyscallError("setsockopt", err)
		}
		var local unix.Sockaddr = &unix.SockaddrInet4{Port: b.localPort}
		if family == unix.AF_INET6 {
			local = &unix.SockaddrInet6{Port: b.localPort}
		}
		if err := unix.Bind(fd, local); err != nil {
			return os.NewSyscallError("bind", err)
		}
	}
	return nil
}

func sockaddr(ip net.IP, port int) (int, unix.Sockaddr) {
	if ip4 := ip.To4(); ip4 != nil {
		sa := &unix.SockaddrInet4{Port: port}
		copy(sa.Addr[:], ip4)
		return unix.AF_INET, sa
	}
	sa := &unix.SockaddrInet6{Port: port}
	copy(sa.Addr[:], ip.To16())
	return unix.AF_INET6, sa
}

func (s *Socket) toAddr(sa unix.Sockaddr) net.Addr {
	var (
		ip   net.IP
		port int
	)
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		ip = append(net.IP(nil), a.Addr[:]...)
		port = a.Port
	case *unix.SockaddrInet6:
		ip = append(net.IP(nil), a.Addr[:]...)
		port = a.Port
	default:
		return nil
	}
	if strings.HasPrefix(s.network, "udp") {
		return &net.UDPAddr{IP: ip, Port: port}
	}
	return &net.TCPAddr{IP: ip, Port: port}
}

// FD implements poll.Source.
func (s *Socket) FD() int { return s.fd }

// Write performs one non-blocking write.  A full send buffer yields
// errors.ErrWouldBlock and no bytes written.
func (s *Socket) Write(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, pcerr.Wrap("write", s.remote.String(), net.ErrClosed)
	}
	for {
		n, err := unix.Write(s.fd, b)
		switch {
		case err == nil:
			return n, nil
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, pcerr.ErrWouldBlock
		default:
			return 0, pcerr.Wrap("write", s.remote.String(), os.NewSyscallError("write", err))
		}
	}
}

// PeerAddr returns the connected peer.  It fails with a NetworkError
// wrapping ENOTCONN while a TCP connect is still in progress.
func (s *Socket) PeerAddr() (net.Addr, error) {
	sa, err := unix.Getpeername(s.fd)
	if err != nil {
		return nil, pcerr.Wrap("peer", s.remote.String(), os.NewSyscallError("getpeername", err))
	}
	addr := s.toAddr(sa)
	if addr == nil {
		return nil, pcerr.Wrap("peer", s.remote.String(), pcerr.ErrNotConnected)
	}
	return addr, nil
}

// SocketError reads SO_ERROR.
func (s *Socket) SocketError() error {
	v, err := unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return pcerr.Wrap("connect", s.remote.String(), os.NewSyscallError("getsockopt", err))
	}
	if v != 0 {
		return pcerr.Wrap("connect", s.remote.String(), os.NewSyscallError("connect", unix.Errno(v)))
	}
	return nil
}

// Close releases the descriptor.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return net.ErrClosed
	}
	s.closed = true
	if err := unix.Close(s.fd); err != nil {
		return os.NewSyscallError("close", err)
	}
	return nil
}
