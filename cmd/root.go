// Package cmd wires up the CLI flags and dispatches to the core.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"pollcat/config"
	"pollcat/internal/core"
	pcerr "pollcat/internal/errors"
	"pollcat/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X pollcat/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// usageOut receives usage and version text.
var usageOut io.Writer = os.Stderr //nolint:gochecknoglobals

// Execute parses args and runs pollcat.
func Execute(ctx context.Context, args []string) error {
	cfg := config.Default()
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("pollcat", flag.ContinueOnError)
	fs.SetOutput(usageOut)

	// ── connection ───────────────────────────────────────────────
	fs.BoolVarP(&cfg.UDP, "udp", "u", cfg.UDP, "UDP mode")
	fs.IntVarP(&cfg.LocalPort, "local-port", "p", cfg.LocalPort, "Local source port (0 = ephemeral)")
	fs.BoolVar(&cfg.NoDNS, "no-dns", cfg.NoDNS, "Numeric-only, no DNS resolution")
	fs.DurationVarP(&cfg.ConnectTimeout, "timeout", "w", cfg.ConnectTimeout, "Connect timeout")
	fs.IntVar(&cfg.SendBuffer, "sndbuf", cfg.SendBuffer, "Socket send buffer size in bytes (0 = OS default)")

	// ── message stream ───────────────────────────────────────────
	fs.StringArrayVarP(&cfg.Messages, "message", "m", cfg.Messages, "Message to send (repeat to rotate through several)")
	fs.IntVarP(&cfg.Count, "count", "n", cfg.Count, "Number of messages")
	fs.DurationVarP(&cfg.Interval, "interval", "i", cfg.Interval, "Pause between messages")

	// ── reactor ──────────────────────────────────────────────────
	fs.IntVar(&cfg.EventsCapacity, "events", cfg.EventsCapacity, "Readiness events per poll")
	fs.DurationVar(&cfg.DrainTimeout, "drain-timeout", cfg.DrainTimeout, "Error-only poll before teardown")

	// ── output ───────────────────────────────────────────────────
	baseVerbosity := cfg.Verbose
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&cfg.Stats, "stats", cfg.Stats, "Print metrics as JSON on exit")

	var showVersion, showHelp, dryRun bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")
	fs.BoolVar(&dryRun, "dry-run", false, "Validate the configuration and exit")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	// -v raises the level set by defaults and POLLCAT_VERBOSE
	cfg.Verbose += baseVerbosity

	if showHelp {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(usageOut, "pollcat %s\n", version)
		return nil
	}

	// ── positional arguments ─────────────────────────────────────
	switch rest := fs.Args(); len(rest) {
	case 0:
	case 1:
		cfg.Address = rest[0]
	default:
		return fmt.Errorf("too many arguments: expected a single address")
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		var ce *pcerr.ConfigError
		if pcerr.As(err, &ce) && ce.Field == "address" && cfg.Address == "" {
			printUsage(fs)
		}
		return err
	}

	logger := util.NewLogger(cfg.Verbose)
	if dryRun {
		logger.Info("configuration OK: %s %s, %d messages from %d distinct every %v",
			cfg.Network(), cfg.Address, cfg.Count, len(cfg.Messages), cfg.Interval)
		return nil
	}

	// ── build and run ────────────────────────────────────────────
	mode, err := core.Build(cfg, logger)
	if err != nil {
		return err
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(usageOut, `pollcat v%s

Writes a paced stream of messages to a TCP or UDP peer through a
readiness-based reactor, waiting for the socket to become writable
before every write.

Usage:
  pollcat [options] <host:port>

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(usageOut, `
Examples:
  pollcat 127.0.0.1:9000                      100 messages, 100ms apart
  pollcat -n 10 -i 1s -m hello host:9000      Custom stream
  pollcat -n 4 -m ping -m pong host:9000      Alternate two messages
  pollcat -u -n 5 127.0.0.1:5000              UDP
  pollcat --stats -vv 127.0.0.1:9000          Metrics and debug output
`)
}
