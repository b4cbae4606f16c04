// Package edgecheck probes a running edge for the externally visible
// guarantees: plain HTTP redirects to HTTPS with the request URI intact,
// and every HTTPS response carries the security headers.
package edgecheck

import "time"

// Config holds configuration for a check run.
type Config struct {
	HTTPURL  string        // Base URL of the plaintext listener, e.g. http://eastkentcx.co.uk
	HTTPSURL string        // Base URL of the TLS listener, e.g. https://eastkentcx.co.uk
	Paths    []string      // Request URIs to probe
	Workers  int           // Number of concurrent probes
	Timeout  time.Duration // HTTP request timeout
	Insecure bool          // Skip TLS certificate verification
	Verbose  bool          // Log every check, not only failures
}

// Kind names a check.
type Kind string

// Check kinds.
const (
	KindRedirect Kind = "redirect"
	KindHeaders  Kind = "headers"
)

// Result is the outcome of one probe.
type Result struct {
	Kind    Kind          `json:"kind"`
	URL     string        `json:"url"`
	Status  int           `json:"status"`
	Passed  bool          `json:"passed"`
	Problem string        `json:"problem,omitempty"`
	Took    time.Duration `json:"took"`
}

// Stats holds run statistics.
type Stats struct {
	Checks    int
	Passed    int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Report is the outcome of a run, results in request order.
type Report struct {
	Results []Result
	Stats   Stats
}
