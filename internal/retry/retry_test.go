package retry

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"

	pcerr "pollcat/internal/errors"
)

func TestPolicy_ImmediateSuccess(t *testing.T) {
	calls := 0
	err := Interrupts().Do(context.Background(), func(_ int) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestPolicy_PermanentError(t *testing.T) {
	inner := fmt.Errorf("fatal")
	calls := 0

	p := &Policy{RetryIf: func(error) bool { return true }}
	err := p.Do(context.Background(), func(_ int) error {
		calls++
		return Permanent(inner)
	})

	if !errors.Is(err, inner) {
		t.Errorf("expected inner error, got %v", err)
	}
	if IsPermanent(err) {
		t.Error("returned error should be unwrapped")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestPolicy_NilRetryIfRetriesNothing(t *testing.T) {
	calls := 0
	err := (&Policy{}).Do(context.Background(), func(_ int) error {
		calls++
		return pcerr.ErrInterrupted
	})
	if !errors.Is(err, pcerr.ErrInterrupted) {
		t.Errorf("got %v, want ErrInterrupted", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestPolicy_RetryIf(t *testing.T) {
	p := &Policy{RetryIf: func(err error) bool { return err.Error() == "again" }}
	calls := 0

	err := p.Do(context.Background(), func(attempt int) error {
		calls++
		if attempt < 3 {
			return fmt.Errorf("again")
		}
		return fmt.Errorf("stop")
	})

	if err == nil || err.Error() != "stop" {
		t.Fatalf("expected 'stop', got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestPermanent_Nil(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"permanent", Permanent(fmt.Errorf("x")), true},
		{"wrapped permanent", fmt.Errorf("outer: %w", Permanent(fmt.Errorf("x"))), true},
		{"not permanent", fmt.Errorf("x"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPermanent(tt.err); got != tt.want {
				t.Errorf("IsPermanent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInterrupts(t *testing.T) {
	calls := 0
	err := Interrupts().Do(context.Background(), func(attempt int) error {
		calls++
		switch attempt {
		case 1:
			return pcerr.ErrInterrupted
		case 2:
			return fmt.Errorf("epoll_wait: %w", syscall.EINTR)
		default:
			return nil
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}

	// anything else is returned untouched
	err = Interrupts().Do(context.Background(), func(_ int) error {
		return pcerr.ErrPeerClosed
	})
	if !errors.Is(err, pcerr.ErrPeerClosed) {
		t.Errorf("got %v, want ErrPeerClosed", err)
	}
}

func TestInterrupts_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := Interrupts().Do(ctx, func(_ int) error {
		calls++
		cancel()
		return pcerr.ErrInterrupted
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
