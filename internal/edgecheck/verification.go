package edgecheck

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// checkRedirect expects a 301 to the same URI on https.
func checkRedirect(ctx context.Context, c *checker, path string) Result {
	target := c.httpURL + path
	res := Result{Kind: KindRedirect, URL: target}
	start := time.Now()
	resp, err := get(ctx, c.client, target)
	res.Took = time.Since(start)
	if err != nil {
		res.Problem = err.Error()
		return res
	}
	res.Status = resp.StatusCode

	want := "https://" + c.redirectHost + path
	switch got := resp.Header.Get("Location"); {
	case resp.StatusCode != http.StatusMovedPermanently:
		res.Problem = fmt.Sprintf("status %d, want 301", resp.StatusCode)
	case got != want:
		res.Problem = fmt.Sprintf("location %q, want %q", got, want)
	default:
		res.Passed = true
	}
	return res
}

// checkHeaders expects both security headers whatever the status.
func checkHeaders(ctx context.Context, c *checker, path string) Result {
	target := c.httpsURL + path
	res := Result{Kind: KindHeaders, URL: target}
	start := time.Now()
	resp, err := get(ctx, c.client, target)
	res.Took = time.Since(start)
	if err != nil {
		res.Problem = err.Error()
		return res
	}
	res.Status = resp.StatusCode

	var missing []string
	for name, value := range SecurityHeaders {
		if got := resp.Header.Values(name); len(got) != 1 || got[0] != value {
			missing = append(missing, fmt.Sprintf("%s=%q", name, strings.Join(got, ", ")))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		res.Problem = "bad security headers: " + strings.Join(missing, "; ")
		return res
	}
	res.Passed = true
	return res
}

// redirectHost is the host a redirect from base must name: its hostname,
// lowercased, without port.
func redirectHost(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, base)
	}
	host := u.Hostname()
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return strings.ToLower(host), nil
}
