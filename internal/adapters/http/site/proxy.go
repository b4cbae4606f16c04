package site

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type schemeKey struct{}

// ProxyHeaders trusts the forwarding headers set by the edge proxy, from any
// peer: the application only listens on a local socket. It rewrites the
// request host and client address and records the effective scheme.
func ProxyHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if proto := strings.ToLower(firstValue(r.Header.Get("X-Forwarded-Proto"))); proto == "http" || proto == "https" {
			r = r.WithContext(context.WithValue(r.Context(), schemeKey{}, proto))
		}
		if host := firstValue(r.Header.Get("X-Forwarded-Host")); host != "" {
			r.Host = host
		}
		// The edge sets X-Real-IP itself; earlier X-Forwarded-For hops come
		// from the client and can be forged.
		client := strings.TrimSpace(r.Header.Get("X-Real-IP"))
		if client == "" {
			client = lastValue(r.Header.Values("X-Forwarded-For"))
		}
		if client != "" {
			r.RemoteAddr = net.JoinHostPort(client, "0")
		}
		next.ServeHTTP(w, r)
	})
}

// Scheme returns the scheme the client used to reach the site.
func Scheme(r *http.Request) string {
	if s, ok := r.Context().Value(schemeKey{}).(string); ok {
		return s
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// ClientIP returns the client address without port.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// firstValue returns the first element of a comma separated header value.
func firstValue(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}

// lastValue returns the last element across comma separated header values.
func lastValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	v := values[len(values)-1]
	if i := strings.LastIndexByte(v, ','); i >= 0 {
		v = v[i+1:]
	}
	return strings.TrimSpace(v)
}
