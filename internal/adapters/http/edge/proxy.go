package edge

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"time"

	"github.com/eastkentcx/ekcx/pkg/logger"
	"github.com/eastkentcx/ekcx/pkg/metrics"
)

// upstreamHost names the upstream in outbound URLs. The dialer ignores it.
const upstreamHost = "upstream"

// ProxyConfig identifies the upstream socket and its timeouts.
type ProxyConfig struct {
	Socket string

	// ConnectTimeout bounds the dial.
	ConnectTimeout time.Duration
	// SendTimeout bounds the gap between two successive writes.
	SendTimeout time.Duration
	// ReadTimeout bounds the gap between two successive reads.
	ReadTimeout time.Duration
}

// NewProxy returns a reverse proxy that forwards every request unchanged
// to the upstream socket. Failures are answered with 502, or 504 when a
// timeout expired, and logged to errorLog.
func NewProxy(cfg ProxyConfig, errorLog logger.Logger) *httputil.ReverseProxy {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, "unix", cfg.Socket)
			if err != nil {
				return nil, err
			}
			return &timeoutConn{Conn: conn, send: cfg.SendTimeout, read: cfg.ReadTimeout}, nil
		},
		MaxIdleConnsPerHost: 16,
		// Shorter than the read timeout so idle connections close before
		// their pending read expires.
		IdleConnTimeout:       idleTimeout(cfg.ReadTimeout),
		ExpectContinueTimeout: time.Second,
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Scheme = "http"
			pr.Out.URL.Host = upstreamHost
			pr.Out.Host = pr.In.Host

			// Rewrite drops inbound forwarding headers; keep the chain.
			if prior := pr.In.Header.Values("X-Forwarded-For"); len(prior) > 0 {
				pr.Out.Header["X-Forwarded-For"] = append([]string(nil), prior...)
			}
			pr.SetXForwarded()
			pr.Out.Header.Set("X-Forwarded-Proto", "https")
			if ip, _, err := net.SplitHostPort(pr.In.RemoteAddr); err == nil {
				pr.Out.Header.Set("X-Real-IP", ip)
			}
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			status, kind := http.StatusBadGateway, "unavailable"
			switch {
			case isTimeout(err):
				status, kind = http.StatusGatewayTimeout, "timeout"
			case errors.Is(err, context.Canceled):
				kind = "canceled"
			}
			metrics.RecordUpstreamError(kind)
			errorLog.Error(r.Context(), "upstream request failed",
				logger.String("kind", kind),
				logger.String("upstream", "unix:"+cfg.Socket),
				logger.String("client", clientIP(r)),
				logger.String("method", r.Method),
				logger.String("uri", r.RequestURI),
				logger.String("host", r.Host),
				logger.Error(err),
			)
			http.Error(w, http.StatusText(status), status)
		},
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func idleTimeout(read time.Duration) time.Duration {
	if d := read - 15*time.Second; d > 0 {
		return d
	}
	return read / 2
}

// timeoutConn arms a fresh deadline before every read and write, so a
// deadline bounds the gap between operations, not the whole exchange.
//
// The transport keeps a read pending on idle pooled connections. Each
// successful write re-arms the read deadline so that pending read gets
// the full read timeout for the response, however long the connection
// sat idle.
type timeoutConn struct {
	net.Conn
	send time.Duration
	read time.Duration
}

func (c *timeoutConn) Read(b []byte) (int, error) {
	if c.read > 0 {
		if err := c.Conn.SetReadDeadline(time.Now().Add(c.read)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Read(b)
}

func (c *timeoutConn) Write(b []byte) (int, error) {
	if c.send > 0 {
		if err := c.Conn.SetWriteDeadline(time.Now().Add(c.send)); err != nil {
			return 0, err
		}
	}
	n, err := c.Conn.Write(b)
	if err == nil && c.read > 0 {
		err = c.Conn.SetReadDeadline(time.Now().Add(c.read))
	}
	return n, err
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
