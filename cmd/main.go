// Command ekcx serves the league site on its application socket and keeps
// the published standings and results up to date.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/eastkentcx/ekcx/internal/adapters/http/site"
	app "github.com/eastkentcx/ekcx/internal/app"
	"github.com/eastkentcx/ekcx/internal/config"
	"github.com/eastkentcx/ekcx/pkg/logger"
	"github.com/eastkentcx/ekcx/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 75 * time.Second
	writeTimeout           = 75 * time.Second
	idleTimeout            = 75 * time.Second
	readHeaderTimeout      = 5 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Initialize logging
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := app.New(cfg.Site, app.WithLogger(loggerInstance.Named("service")))
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Site.ShutdownTimeout)
		defer cancel()
		svc.Stop(stopCtx)
	}()

	go startServiceMetricsUpdater(ctx, svc)

	handler, err := newHandler(ctx, cfg.Site, svc)
	if err != nil {
		return err
	}

	ln, err := site.Listen(cfg.Site.Listen, os.FileMode(cfg.Site.SocketMode))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("listen", cfg.Site.Listen))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server failure
	select {
	case <-ctx.Done():
	case err = <-errCh:
		loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
	}
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Site.ShutdownTimeout)
	defer cancel()
	if shutErr := srv.Shutdown(shutdownCtx); shutErr != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(shutErr))
	}

	loggerInstance.Info(ctx, "server stopped")
	return err
}

// newHandler builds the site handler over a started service.
func newHandler(ctx context.Context, cfg config.SiteConfig, svc *app.Service) (http.Handler, error) {
	s, err := site.New(site.Config{
		StandingsDir: cfg.StandingsDir,
		Season:       cfg.Season,
	}, svc.Calendar(), svc.Store(),
		site.WithLogger(logger.Get().Named("site")),
		site.WithStats(svc),
	)
	if err != nil {
		return nil, err
	}
	return s.Handler(ctx), nil
}

// startServiceMetricsUpdater refreshes service gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateQueueSize(svc.QueueLen(ctx))
		}
	}
}
