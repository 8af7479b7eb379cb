package util

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ResolveAddr parses a "host:port" target into a *net.TCPAddr or
// *net.UDPAddr, depending on network.  With noDNS the host must be a
// numeric IP.
func ResolveAddr(network, address string, noDNS bool) (net.Addr, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", address, err)
	}
	if host == "" || port == "" {
		return nil, fmt.Errorf("invalid address %q: host and port are required", address)
	}
	if noDNS && net.ParseIP(host) == nil {
		return nil, fmt.Errorf("cannot parse %q as an IP address (DNS disabled)", host)
	}

	switch {
	case strings.HasPrefix(network, "tcp"):
		return net.ResolveTCPAddr(network, address)
	case strings.HasPrefix(network, "udp"):
		return net.ResolveUDPAddr(network, address)
	default:
		return nil, fmt.Errorf("unsupported network %q", network)
	}
}

// AddrIPPort extracts the IP and port of a TCP or UDP address.
func AddrIPPort(addr net.Addr) (net.IP, int, error) {
	switch a := addr.(type) {
	case *net.TCPAddr:
		return a.IP, a.Port, nil
	case *net.UDPAddr:
		return a.IP, a.Port, nil
	default:
		return nil, 0, fmt.Errorf("unsupported address type %T", addr)
	}
}

// FormatAddr returns "host:port".
func FormatAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// FindFreePort returns an available TCP port on 127.0.0.1.
func FindFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("finding free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
