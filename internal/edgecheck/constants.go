package edgecheck

import "time"

// DefaultPaths cover every page family of the site plus a missing page,
// so error responses are checked too.
var DefaultPaths = []string{
	"/",
	"/events/",
	"/events/2025/1",
	"/standings/2025/mens",
	"/rules",
	"/faq",
	"/media/",
	"/static/css/site.css",
	"/favicon.ico",
	"/healthz",
	"/this-page-does-not-exist",
	"/standings/2025/mens?sort=total&x=%2F",
}

// Expected security headers.
var SecurityHeaders = map[string]string{
	"X-Content-Type-Options": "nosniff",
	"X-XSS-Protection":       "1; mode=block",
}

// Runner configuration constants.
const (
	DefaultWorkers       = 4
	DefaultTimeout       = 10 * time.Second
	PercentageMultiplier = 100
)
