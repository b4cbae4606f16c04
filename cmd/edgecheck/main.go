// Command edgecheck probes a running edge and verifies that plain HTTP
// redirects to HTTPS and that HTTPS responses carry the security headers.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/eastkentcx/ekcx/internal/edgecheck"
	"github.com/eastkentcx/ekcx/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if err := logger.InitWriter(os.Stderr); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	cfg, err := parseFlags(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	report, err := edgecheck.Run(ctx, cfg)
	if report.Stats.Checks > 0 {
		edgecheck.PrintSummary(stdout, report)
	}
	return err
}

func parseFlags(args []string) (*edgecheck.Config, error) {
	cfg := &edgecheck.Config{}
	fs := pflag.NewFlagSet("edgecheck", pflag.ContinueOnError)
	fs.StringVar(&cfg.HTTPURL, "http", "http://eastkentcx.co.uk", "base URL of the plain HTTP listener")
	fs.StringVar(&cfg.HTTPSURL, "https", "https://eastkentcx.co.uk", "base URL of the TLS listener")
	fs.StringSliceVar(&cfg.Paths, "path", nil, "request URI to probe; repeatable (default: every page family)")
	fs.IntVarP(&cfg.Workers, "workers", "w", edgecheck.DefaultWorkers, "concurrent probes")
	fs.DurationVar(&cfg.Timeout, "timeout", edgecheck.DefaultTimeout, "per-request timeout")
	fs.BoolVarP(&cfg.Insecure, "insecure", "k", false, "skip TLS certificate verification")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log passing checks too")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return cfg, nil
}
