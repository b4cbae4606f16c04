// Package edge is the public front of the deployment: it redirects plain
// HTTP to HTTPS, terminates TLS and forwards every request to the site's
// Unix socket, adding security headers and writing access and error logs.
package edge

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/crypto/acme/autocert"

	"github.com/eastkentcx/ekcx/internal/adapters/http/api"
	"github.com/eastkentcx/ekcx/internal/config"
	"github.com/eastkentcx/ekcx/pkg/logger"
)

const (
	readHeaderTimeout = 10 * time.Second
	// keepAliveTimeout matches the usual 75s client keep-alive of web proxies.
	keepAliveTimeout = 75 * time.Second
	certDebounce     = time.Second
)

// Server runs the HTTP redirect listeners, the HTTPS proxy listeners and
// an optional metrics listener.
type Server struct {
	cfg config.EdgeConfig

	logger    logger.Logger
	accessLog logger.Logger
	errorLog  logger.Logger
	serverLog *log.Logger
	tracing   bool

	certs     *CertReloader
	acme      *autocert.Manager
	tlsConfig *tls.Config
}

// New prepares the edge. The certificate pair is loaded immediately
// unless ACME is enabled.
func New(cfg config.EdgeConfig, opts ...Option) (*Server, error) {
	if len(cfg.Hostnames) == 0 {
		return nil, ErrNoHostnames
	}
	s := &Server{
		cfg:    cfg,
		logger: logger.Get().Named("edge"),
	}
	s.accessLog = s.logger.Named("access")
	s.errorLog = s.logger
	for _, opt := range opts {
		opt(s)
	}

	if cfg.ACME.Enabled {
		s.acme = &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			Cache:      autocert.DirCache(cfg.ACME.CacheDir),
			HostPolicy: autocert.HostWhitelist(cfg.Hostnames...),
			Email:      cfg.ACME.Email,
		}
		s.tlsConfig = s.acme.TLSConfig()
	} else {
		certs, err := NewCertReloader(cfg.CertFile, cfg.KeyFile, s.logger)
		if err != nil {
			return nil, err
		}
		s.certs = certs
		s.tlsConfig = &tls.Config{GetCertificate: certs.GetCertificate} //nolint:gosec // MinVersion set below
	}
	s.tlsConfig.MinVersion = tls.VersionTLS12
	return s, nil
}

// HTTPHandler redirects to HTTPS, answering ACME challenges first when enabled.
func (s *Server) HTTPHandler() http.Handler {
	h := Redirect(s.cfg.Hostnames[0])
	if s.acme != nil {
		h = s.acme.HTTPHandler(h)
	}
	return AccessLog(s.accessLog, "edge_http", h)
}

// HTTPSHandler proxies to the upstream socket.
func (s *Server) HTTPSHandler() http.Handler {
	var h http.Handler = NewProxy(ProxyConfig{
		Socket:         s.cfg.UpstreamSocket,
		ConnectTimeout: s.cfg.ConnectTimeout,
		SendTimeout:    s.cfg.SendTimeout,
		ReadTimeout:    s.cfg.ReadTimeout,
	}, s.errorLog)
	if s.tracing {
		h = otelhttp.NewHandler(h, "edge")
	}
	return AccessLog(s.accessLog, "edge_https", SecurityHeaders(h))
}

// Run listens on the configured addresses and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	var plain, secure []net.Listener
	closeAll := func() {
		for _, ln := range append(plain, secure...) {
			_ = ln.Close()
		}
	}
	for _, addr := range s.cfg.HTTPAddrs {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			closeAll()
			return fmt.Errorf("%w: %s: %w", ErrListen, addr, err)
		}
		plain = append(plain, ln)
	}
	for _, addr := range s.cfg.HTTPSAddrs {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			closeAll()
			return fmt.Errorf("%w: %s: %w", ErrListen, addr, err)
		}
		secure = append(secure, ln)
	}
	return s.Serve(ctx, plain, secure)
}

// Serve serves on already-open listeners until ctx is done or a server
// fails, then shuts every server down gracefully.
func (s *Server) Serve(ctx context.Context, plain, secure []net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var servers []*http.Server
	errCh := make(chan error, len(plain)+len(secure)+1)
	var wg sync.WaitGroup
	start := func(srv *http.Server, ln net.Listener, tlsOn bool) {
		servers = append(servers, srv)
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.logger.Info(ctx, "edge listening", logger.String("addr", ln.Addr().String()), logger.Bool("tls", tlsOn))
			var err error
			if tlsOn {
				err = srv.ServeTLS(ln, "", "")
			} else {
				err = srv.Serve(ln)
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("serve %s: %w", ln.Addr(), err)
			}
		}()
	}

	httpHandler := s.HTTPHandler()
	for _, ln := range plain {
		start(s.newServer(httpHandler, nil), ln, false)
	}
	httpsHandler := s.HTTPSHandler()
	for _, ln := range secure {
		start(s.newServer(httpsHandler, s.tlsConfig.Clone()), ln, true)
	}

	if s.cfg.MetricsAddr != "" {
		ln, err := net.Listen("tcp", s.cfg.MetricsAddr)
		if err != nil {
			s.logger.Error(ctx, "metrics listener failed", logger.String("addr", s.cfg.MetricsAddr), logger.Error(err))
		} else {
			mux := http.NewServeMux()
			api.NewServer("edge", nil).Register(ctx, mux)
			start(s.newServer(mux, nil), ln, false)
		}
	}

	if s.certs != nil {
		go func() {
			if err := s.certs.Watch(ctx, certDebounce); err != nil {
				s.logger.Error(ctx, "certificate watcher stopped", logger.Error(err))
			}
		}()
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
		s.logger.Error(ctx, "edge server failed", logger.Error(err))
	}

	s.logger.Info(ctx, "shutting down edge")
	shutdownCtx, done := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer done()
	for _, srv := range servers {
		if shutErr := srv.Shutdown(shutdownCtx); shutErr != nil {
			s.logger.Warn(ctx, "graceful shutdown failed", logger.String("addr", srv.Addr), logger.Error(shutErr))
			_ = srv.Close()
		}
	}
	wg.Wait()
	return err
}

func (s *Server) newServer(h http.Handler, tlsConfig *tls.Config) *http.Server {
	return &http.Server{
		Handler:           h,
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       keepAliveTimeout,
		ErrorLog:          s.serverLog,
	}
}
