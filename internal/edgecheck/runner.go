package edgecheck

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/eastkentcx/ekcx/pkg/logger"
)

type checker struct {
	client       *http.Client
	httpURL      string
	httpsURL     string
	redirectHost string
}

// Run probes every path on both listeners concurrently. It returns
// ErrChecksFailed along with the report when any probe failed.
func Run(ctx context.Context, cfg *Config) (Report, error) {
	log := logger.Get().Named("edgecheck")
	stats := Stats{StartTime: time.Now()}

	host, err := redirectHost(cfg.HTTPURL)
	if err != nil {
		return Report{}, err
	}
	if _, err := redirectHost(cfg.HTTPSURL); err != nil {
		return Report{}, err
	}
	paths := cfg.Paths
	if len(paths) == 0 {
		paths = DefaultPaths
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &checker{
		client:       newHTTPClient(timeout, cfg.Insecure),
		httpURL:      strings.TrimSuffix(cfg.HTTPURL, "/"),
		httpsURL:     strings.TrimSuffix(cfg.HTTPSURL, "/"),
		redirectHost: host,
	}

	log.Info(ctx, "starting edge checks",
		logger.String("http", c.httpURL),
		logger.String("https", c.httpsURL),
		logger.Int("paths", len(paths)),
		logger.Int("workers", cfg.Workers),
	)

	probes := make([]probe, 0, len(paths)*2)
	for _, p := range paths {
		path := p
		probes = append(probes,
			func(ctx context.Context) Result { return checkRedirect(ctx, c, path) },
			func(ctx context.Context) Result { return checkHeaders(ctx, c, path) },
		)
	}
	results := runProbes(ctx, cfg.Workers, probes)

	for _, r := range results {
		stats.Checks++
		if r.Passed {
			stats.Passed++
			if cfg.Verbose {
				log.Info(ctx, "check passed", logger.String("kind", string(r.Kind)),
					logger.String("url", r.URL), logger.Int("status", r.Status))
			}
			continue
		}
		stats.Failed++
		log.Warn(ctx, "check failed", logger.String("kind", string(r.Kind)),
			logger.String("url", r.URL), logger.Int("status", r.Status), logger.String("problem", r.Problem))
	}
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	report := Report{Results: results, Stats: stats}
	if stats.Failed > 0 {
		return report, fmt.Errorf("%w: %d of %d", ErrChecksFailed, stats.Failed, stats.Checks)
	}
	return report, nil
}

// PrintSummary writes a human readable summary of report to w.
func PrintSummary(w io.Writer, report Report) {
	s := report.Stats
	rate := 0.0
	if s.Checks > 0 {
		rate = float64(s.Passed) / float64(s.Checks) * PercentageMultiplier
	}
	fmt.Fprintf(w, "Edge checks: %d run, %d passed, %d failed (%.1f%%) in %s\n",
		s.Checks, s.Passed, s.Failed, rate, s.Duration.Round(time.Millisecond))
	for _, r := range report.Results {
		mark := "PASS"
		if !r.Passed {
			mark = "FAIL"
		}
		line := fmt.Sprintf("  %s %-8s %3d %s", mark, r.Kind, r.Status, r.URL)
		if r.Problem != "" {
			line += "  (" + r.Problem + ")"
		}
		fmt.Fprintln(w, line)
	}
}
