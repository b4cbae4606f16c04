package edge

import (
	"net"
	"net/http"
	"strings"

	"github.com/eastkentcx/ekcx/pkg/metrics"
)

// Redirect answers every request with 301 to the same request URI over
// https. The target host is the request host without its port, lowercased,
// or fallback when the request names no host.
func Redirect(fallback string) http.Handler {
	fallback = strings.ToLower(fallback)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := hostOnly(r.Host)
		if host == "" {
			host = fallback
		}
		uri := r.RequestURI
		if uri == "" || !strings.HasPrefix(uri, "/") {
			uri = r.URL.RequestURI()
		}

		metrics.RecordRedirect()
		w.Header().Set("Location", "https://"+host+uri)
		w.WriteHeader(http.StatusMovedPermanently)
	})
}

// hostOnly strips the port from a Host header value.
func hostOnly(hostport string) string {
	host := strings.TrimSpace(hostport)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
		if strings.Contains(h, ":") {
			host = "[" + h + "]"
		}
	}
	return strings.ToLower(host)
}
