package core

import (
	"pollcat/config"
	"pollcat/internal/metrics"
	"pollcat/internal/transport"
	"pollcat/util"
)

// Build constructs the Mode for the given configuration.  The config
// is expected to have passed Validate.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	return buildConnect(cfg, logger), nil
}

// ── mode builders ────────────────────────────────────────────────────

func buildConnect(cfg *config.Config, logger *util.Logger) *ConnectMode {
	return &ConnectMode{
		Dialer:         buildDialer(cfg),
		Address:        cfg.Address,
		Messages:       cfg.Messages,
		Count:          cfg.Count,
		Interval:       cfg.Interval,
		ConnectTimeout: cfg.ConnectTimeout,
		DrainTimeout:   cfg.DrainTimeout,
		EventsCapacity: cfg.EventsCapacity,
		Logger:         logger,
		Metrics:        metrics.New(),
		Stats:          cfg.Stats,
	}
}

// ── shared helpers ───────────────────────────────────────────────────

// buildDialer creates a non-blocking socket builder for the config.
func buildDialer(cfg *config.Config) transport.Dialer {
	return transport.NewBuilder().
		Network(cfg.Network()).
		Nonblocking(true).
		SendBuffer(cfg.SendBuffer).
		LocalPort(cfg.LocalPort).
		NoDNS(cfg.NoDNS)
}
