// Package config defines the runtime configuration for pollcat and
// validates it before a run starts.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	pcerr "pollcat/internal/errors"
)

// Config holds every tuneable for a single pollcat run.
type Config struct {
	// ── Connection ───────────────────────────────────────────────────
	Address        string // host:port positional argument
	UDP            bool
	LocalPort      int // -p: local bind port
	NoDNS          bool
	SendBuffer     int // SO_SNDBUF, 0 keeps the OS default
	ConnectTimeout time.Duration

	// ── Message stream ───────────────────────────────────────────────
	Messages []string // sent in rotation, one per iteration
	Count    int
	Interval time.Duration

	// ── Reactor ──────────────────────────────────────────────────────
	EventsCapacity int
	DrainTimeout   time.Duration

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
	Stats   bool
}

// Default returns a Config populated from defaults.go.
func Default() *Config {
	return &Config{
		ConnectTimeout: DefaultConnectTimeout,
		Messages:       []string{DefaultMessage},
		Count:          DefaultCount,
		Interval:       DefaultInterval,
		EventsCapacity: DefaultEventsCapacity,
		DrainTimeout:   DefaultDrainTimeout,
		Verbose:        DefaultVerbosity,
	}
}

// Network returns "udp" or "tcp".
func (c *Config) Network() string {
	if c.UDP {
		return "udp"
	}
	return "tcp"
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
// Failures are returned as *errors.ConfigError.
func (c *Config) Validate() error {
	if c.Address == "" {
		return &pcerr.ConfigError{
			Field:   "address",
			Message: "address required",
			Hint:    "pass the target as host:port, e.g. pollcat 127.0.0.1:9000",
		}
	}
	host, port, err := net.SplitHostPort(c.Address)
	if err != nil {
		return &pcerr.ConfigError{
			Field:   "address",
			Value:   c.Address,
			Message: "cannot parse address",
			Hint:    "use host:port; wrap IPv6 hosts in brackets, e.g. [::1]:9000",
		}
	}
	if host == "" {
		return &pcerr.ConfigError{Field: "address", Value: c.Address, Message: "host is required"}
	}
	if p, err := strconv.Atoi(port); err != nil || p < 1 || p > 65535 {
		return &pcerr.ConfigError{
			Field:   "address",
			Value:   c.Address,
			Message: fmt.Sprintf("invalid port %q", port),
			Hint:    "ports are numeric, 1-65535",
		}
	}
	if c.NoDNS && net.ParseIP(host) == nil {
		return &pcerr.ConfigError{
			Field:   "no-dns",
			Value:   host,
			Message: "cannot parse host as an IP address",
			Hint:    "drop --no-dns to allow hostname resolution",
		}
	}
	if c.LocalPort < 0 || c.LocalPort > 65535 {
		return &pcerr.ConfigError{Field: "local-port", Value: c.LocalPort, Message: "port out of range 0-65535"}
	}
	if c.SendBuffer < 0 {
		return &pcerr.ConfigError{
			Field:   "sndbuf",
			Value:   c.SendBuffer,
			Message: "send buffer size cannot be negative",
			Hint:    "use 0 to keep the OS default",
		}
	}
	if c.ConnectTimeout <= 0 {
		return &pcerr.ConfigError{
			Field:   "timeout",
			Value:   c.ConnectTimeout,
			Message: "connect timeout must be positive",
			Hint:    fmt.Sprintf("the default is %v", DefaultConnectTimeout),
		}
	}
	if len(c.Messages) == 0 {
		return &pcerr.ConfigError{Field: "message", Message: "at least one message is required"}
	}
	for _, m := range c.Messages {
		if m == "" {
			return &pcerr.ConfigError{Field: "message", Message: "message cannot be empty"}
		}
	}
	if c.Count < 0 {
		return &pcerr.ConfigError{Field: "count", Value: c.Count, Message: "message count cannot be negative"}
	}
	if c.Interval < 0 {
		return &pcerr.ConfigError{Field: "interval", Value: c.Interval, Message: "interval cannot be negative"}
	}
	if c.EventsCapacity < 1 {
		return &pcerr.ConfigError{
			Field:   "events",
			Value:   c.EventsCapacity,
			Message: "events capacity must be at least 1",
			Hint:    fmt.Sprintf("the default is %d", DefaultEventsCapacity),
		}
	}
	if c.DrainTimeout < 0 {
		return &pcerr.ConfigError{
			Field:   "drain-timeout",
			Value:   c.DrainTimeout,
			Message: "drain timeout cannot be negative",
			Hint:    "use 0 for a non-blocking drain poll",
		}
	}
	return nil
}
