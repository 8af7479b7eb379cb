package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the POLLCAT_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).  Durations are given
// in milliseconds.

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("POLLCAT_ADDRESS"); v != "" {
		cfg.Address = v
	}
	if envBool("POLLCAT_UDP") {
		cfg.UDP = true
	}
	if envBool("POLLCAT_NO_DNS") {
		cfg.NoDNS = true
	}
	if v, ok := envInt("POLLCAT_LOCAL_PORT"); ok {
		cfg.LocalPort = v
	}
	if v, ok := envInt("POLLCAT_SNDBUF"); ok {
		cfg.SendBuffer = v
	}
	if v, ok := envInt("POLLCAT_TIMEOUT_MS"); ok {
		cfg.ConnectTimeout = millis(v)
	}

	// Message stream
	if v := os.Getenv("POLLCAT_MESSAGE"); v != "" {
		cfg.Messages = []string{v}
	}
	if v, ok := envInt("POLLCAT_COUNT"); ok {
		cfg.Count = v
	}
	if v, ok := envInt("POLLCAT_INTERVAL_MS"); ok {
		cfg.Interval = millis(v)
	}

	// Reactor
	if v, ok := envInt("POLLCAT_EVENTS"); ok {
		cfg.EventsCapacity = v
	}
	if v, ok := envInt("POLLCAT_DRAIN_TIMEOUT_MS"); ok {
		cfg.DrainTimeout = millis(v)
	}

	// Output
	if v, ok := envInt("POLLCAT_VERBOSE"); ok {
		cfg.Verbose = v
	}
	if envBool("POLLCAT_STATS") {
		cfg.Stats = true
	}
}

// ── helpers ──────────────────────────────────────────────────────────

// envInt reports ok only for a set, well-formed integer, so "0" can
// override a non-zero default.
func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
