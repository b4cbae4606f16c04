package edge

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/eastkentcx/ekcx/internal/adapters/http/api"
	"github.com/eastkentcx/ekcx/pkg/logger"
	"github.com/eastkentcx/ekcx/pkg/metrics"
)

// RequestIDHeader carries the request id to the upstream and the client.
const RequestIDHeader = "X-Request-ID"

// AccessLog writes one line per request to l and records request metrics
// under endpoint. A request id is taken from the client or generated.
func AccessLog(l logger.Logger, endpoint string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)

		rw := api.NewResponseWriter(w)
		next.ServeHTTP(rw, r)
		elapsed := time.Since(start)

		status := strconv.Itoa(rw.Status())
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, elapsed.Seconds())

		l.Info(r.Context(), "request",
			logger.String("request_id", id),
			logger.String("client", clientIP(r)),
			logger.String("host", r.Host),
			logger.String("method", r.Method),
			logger.String("uri", r.RequestURI),
			logger.String("proto", r.Proto),
			logger.Int("status", rw.Status()),
			logger.Int64("bytes", rw.Bytes()),
			logger.Duration("duration", elapsed),
			logger.String("referer", r.Referer()),
			logger.String("user_agent", r.UserAgent()),
		)
	})
}
