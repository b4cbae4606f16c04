package edge

import (
	"io"
	"log"

	"github.com/eastkentcx/ekcx/pkg/logger"
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the process logger used for lifecycle messages.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLogWriters directs the access log and the error log to separate
// writers, typically files opened with logger.OpenFile.
func WithLogWriters(access, errs io.Writer) Option {
	return func(s *Server) {
		if access != nil {
			s.accessLog = logger.New(access)
		}
		if errs != nil {
			s.errorLog = logger.New(errs)
			s.serverLog = log.New(errs, "http: ", log.LstdFlags)
		}
	}
}

// WithTracing wraps the proxy handler with OpenTelemetry instrumentation.
func WithTracing(enabled bool) Option {
	return func(s *Server) {
		s.tracing = enabled
	}
}
