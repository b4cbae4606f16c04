// Command edge terminates TLS for the league site, redirects plain HTTP to
// HTTPS and forwards requests to the application socket.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/eastkentcx/ekcx/internal/adapters/http/edge"
	"github.com/eastkentcx/ekcx/internal/config"
	"github.com/eastkentcx/ekcx/internal/otel"
	"github.com/eastkentcx/ekcx/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	access, errs, closeLogs, err := openLogs(cfg.Edge)
	if err != nil {
		return err
	}
	defer closeLogs()

	// Operational messages share the error log with the proxy's failures.
	if err := logger.InitWriter(errs); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	log := logger.Named("edge")

	if cfg.Tracing.Enabled {
		shutdown, err := otel.Init(ctx, cfg.Tracing.ServiceName, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn(ctx, "tracer shutdown failed", logger.Error(err))
			}
		}()
	}

	srv, err := edge.New(cfg.Edge,
		edge.WithLogWriters(access, errs),
		edge.WithTracing(cfg.Tracing.Enabled),
	)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

// openLogs opens the access and error logs. The returned func closes both.
func openLogs(cfg config.EdgeConfig) (access, errs io.Writer, closeFn func(), err error) {
	a, err := logger.OpenFile(cfg.AccessLog)
	if err != nil {
		return nil, nil, nil, err
	}
	e, err := logger.OpenFile(cfg.ErrorLog)
	if err != nil {
		_ = a.Close()
		return nil, nil, nil, err
	}
	return a, e, func() {
		_ = a.Close()
		_ = e.Close()
	}, nil
}
