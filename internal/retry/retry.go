// Package retry provides the loop used around operations that may be
// interrupted before they complete, such as a blocking poll.
//
// Retries are immediate.  Nothing above the reactor waits between
// attempts: would-block is handled by the next readiness event and a
// timeout is an outcome, not a failure to retry.
package retry

import (
	"context"
	"errors"
	"fmt"

	pcerr "pollcat/internal/errors"
)

// ── Permanent errors ─────────────────────────────────────────────────

// PermanentError wraps an error to signal that retrying will not help.
// Return [Permanent](err) from the operation function to stop retrying
// immediately.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as non-retryable.  The loop returns the inner
// error immediately without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err has been marked as permanent.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// ── Policy ───────────────────────────────────────────────────────────

// Policy retries an operation for as long as RetryIf accepts its error.
type Policy struct {
	// RetryIf selects the errors worth another attempt.  Nil retries
	// nothing.
	RetryIf func(error) bool
}

// Interrupts returns a Policy that retries errors classified as
// interrupted and nothing else.
func Interrupts() *Policy {
	return &Policy{RetryIf: pcerr.IsInterrupted}
}

// Do executes fn until it succeeds, returns an error RetryIf rejects,
// returns a permanent error, or ctx is done.
//
// The attempt parameter passed to fn is 1-based.
func (p *Policy) Do(ctx context.Context, fn func(attempt int) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return errors.Unwrap(err)
		}
		if p.RetryIf == nil || !p.RetryIf(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("retry cancelled: %w", ctxErr)
		}
	}
}
