package api

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/eastkentcx/ekcx/pkg/metrics"
)

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapped := NewResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		statusCodeStr := strconv.Itoa(wrapped.Status())
		metrics.RecordHTTPRequest(endpoint, r.Method, statusCodeStr)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, statusCodeStr, time.Since(start).Seconds())
	}
}

// ResponseWriter wraps http.ResponseWriter to capture the status code and
// the number of body bytes written.
type ResponseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int64
	wrote      bool
}

// NewResponseWriter wraps w. The status defaults to 200.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader implements http.ResponseWriter.
func (rw *ResponseWriter) WriteHeader(code int) {
	if !rw.wrote {
		rw.statusCode = code
		rw.wrote = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Write implements http.ResponseWriter.
func (rw *ResponseWriter) Write(b []byte) (int, error) {
	rw.wrote = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}

// Status returns the response status code.
func (rw *ResponseWriter) Status() int { return rw.statusCode }

// Bytes returns the number of body bytes written.
func (rw *ResponseWriter) Bytes() int64 { return rw.bytes }

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *ResponseWriter) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

// Flush implements http.Flusher for streamed proxy responses.
func (rw *ResponseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		rw.wrote = true
		f.Flush()
	}
}

// Hijack implements http.Hijacker so upgraded connections pass through.
func (rw *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	return h.Hijack()
}
