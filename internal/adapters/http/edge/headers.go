package edge

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

// Security headers added to every HTTPS response.
const (
	HeaderContentTypeOptions = "X-Content-Type-Options"
	HeaderXSSProtection      = "X-XSS-Protection"

	contentTypeOptions = "nosniff"
	xssProtection      = "1; mode=block"
)

// SecurityHeaders sets the security headers on every response written by
// next, whatever its status. Values are set when the header is written, so
// they replace anything copied from the upstream response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &secureWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		if !sw.wrote {
			// Handlers that write nothing still produce a 200.
			sw.WriteHeader(http.StatusOK)
		}
	})
}

type secureWriter struct {
	http.ResponseWriter
	wrote bool
}

func (w *secureWriter) WriteHeader(code int) {
	h := w.Header()
	h.Set(HeaderContentTypeOptions, contentTypeOptions)
	h.Set(HeaderXSSProtection, xssProtection)
	if code >= http.StatusOK {
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *secureWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *secureWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (w *secureWriter) Flush() {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *secureWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	w.wrote = true
	return h.Hijack()
}
