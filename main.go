// pollcat writes a paced message stream to a peer through a
// readiness-based I/O reactor.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pollcat/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "pollcat: %v\n", err)
		os.Exit(1)
	}
}
