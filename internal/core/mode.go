// Package core is the orchestration layer.  It composes the reactor,
// the transport and the session into a complete run and provides a
// builder that assembles that run from a Config.
//
// Architecture layers (bottom → top):
//
//	poll, transport  →  session  →  core  →  cmd (CLI)
package core

import "context"

// Mode represents a complete operational mode of pollcat.  Each mode
// owns its full lifecycle from connection establishment to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
