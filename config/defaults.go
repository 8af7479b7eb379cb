package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags and environment variable loading.

const (
	// DefaultMessage is written to the peer when no -m is given.
	DefaultMessage = "This message should be sent to the other side"

	// DefaultCount is the number of messages written per run.
	DefaultCount = 100

	// DefaultInterval is the pause between two messages.
	DefaultInterval = 100 * time.Millisecond

	// DefaultConnectTimeout bounds the wait for connect completion.
	DefaultConnectTimeout = 1000 * time.Millisecond

	// DefaultDrainTimeout bounds the error-only poll before teardown.
	DefaultDrainTimeout = 1000 * time.Millisecond

	// DefaultEventsCapacity is the size of the readiness batch.  The
	// client only ever has one registration, so two slots are plenty.
	DefaultEventsCapacity = 2

	// DefaultVerbosity prints informational messages.
	DefaultVerbosity = 1
)
