package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	pcerr "pollcat/internal/errors"
)

func captureUsage(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := usageOut
	usageOut = buf
	t.Cleanup(func() { usageOut = prev })
	return buf
}

// TestExecute_Version verifies --version prints a version string.
func TestExecute_Version(t *testing.T) {
	out := captureUsage(t)
	if err := Execute(context.Background(), []string{"--version"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "pollcat ") {
		t.Errorf("version output = %q", out)
	}
}

// TestExecute_Help verifies --help returns without error.
func TestExecute_Help(t *testing.T) {
	out := captureUsage(t)
	if err := Execute(context.Background(), []string{"--help"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Errorf("help output missing usage:\n%s", out)
	}
}

// TestExecute_MissingAddress verifies that running without a target is
// a usage error.
func TestExecute_MissingAddress(t *testing.T) {
	t.Setenv("POLLCAT_ADDRESS", "")
	out := captureUsage(t)

	err := Execute(context.Background(), []string{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "address required") {
		t.Errorf("error = %v, want address required", err)
	}
	var ce *pcerr.ConfigError
	if !errors.As(err, &ce) {
		t.Errorf("expected *ConfigError, got %T", err)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Error("usage should be printed")
	}
}

// TestExecute_DryRun verifies --dry-run validates and exits cleanly.
func TestExecute_DryRun(t *testing.T) {
	captureUsage(t)
	err := Execute(context.Background(), []string{
		"-n", "5", "-i", "10ms", "-m", "hi", "--dry-run", "127.0.0.1:9",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestExecute_DryRunInvalid verifies --dry-run still catches bad configs.
func TestExecute_DryRunInvalid(t *testing.T) {
	captureUsage(t)
	tests := [][]string{
		{"--dry-run", "127.0.0.1"},
		{"--dry-run", "--events", "0", "127.0.0.1:9"},
		{"--dry-run", "--count=-1", "127.0.0.1:9"},
		{"--dry-run", "--no-dns", "localhost:9"},
		{"--dry-run", "-m", "a", "-m", "", "127.0.0.1:9"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			if err := Execute(context.Background(), args); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

// TestExecute_EnvAddress verifies the address can come from the
// environment.
func TestExecute_EnvAddress(t *testing.T) {
	captureUsage(t)
	t.Setenv("POLLCAT_ADDRESS", "127.0.0.1:9")
	if err := Execute(context.Background(), []string{"--dry-run"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestExecute_InvalidFlags verifies unknown flags produce an error.
func TestExecute_InvalidFlags(t *testing.T) {
	captureUsage(t)
	err := Execute(context.Background(), []string{"--nonexistent-flag"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestExecute_TooManyArgs(t *testing.T) {
	captureUsage(t)
	err := Execute(context.Background(), []string{"127.0.0.1:1", "127.0.0.1:2"})
	if err == nil || !strings.Contains(err.Error(), "too many arguments") {
		t.Fatalf("err = %v, want too many arguments", err)
	}
}

// TestExecute_Run drives a short stream end to end.
func TestExecute_Run(t *testing.T) {
	captureUsage(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	received := make(chan int, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		n, _ := io.Copy(io.Discard, conn)
		received <- int(n)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = Execute(ctx, []string{
		"-n", "3", "-i", "1ms", "-m", "abcd", "-m", "xy", "--drain-timeout", "10ms", ln.Addr().String(),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	select {
	case n := <-received:
		// abcd, xy, abcd
		if n != 10 {
			t.Errorf("peer got %d bytes, want 10", n)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for peer")
	}
}
