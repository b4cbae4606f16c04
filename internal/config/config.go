// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - One Config serves every binary; each reads the section it needs.
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped with this package's sentinels.
package config

import (
	"time"
)

// Default timeouts towards the upstream socket.
const (
	DefaultProxyTimeout = 75 * time.Second
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	Site    SiteConfig    `koanf:"site"`
	Edge    EdgeConfig    `koanf:"edge"`
	Tracing TracingConfig `koanf:"tracing"`
}

// SiteConfig configures the league web application and its generators.
type SiteConfig struct {
	// Listen is a unix:///path socket URI or a TCP address such as ":8000".
	Listen string `koanf:"listen"`

	// SocketMode is the permission applied to a unix socket after bind.
	SocketMode uint32 `koanf:"socket_mode"`

	// StandingsDir receives <year>/<category>.html fragments.
	StandingsDir string `koanf:"standings_dir"`

	// ResultsDir holds <year>/<round>/ race result spreadsheets.
	ResultsDir string `koanf:"results_dir"`

	// ResultsStore selects the results backend: json or sqlite.
	ResultsStore string `koanf:"results_store"`
	ResultsJSON  string `koanf:"results_json"`
	SQLitePath   string `koanf:"sqlite_path"`

	// CalendarFile is the YAML event calendar. Empty uses the built-in season.
	CalendarFile string `koanf:"calendar_file"`

	// Season is the year regenerated by the scheduler and the watcher.
	Season int `koanf:"season"`

	// Schedule is a cron expression for periodic regeneration. Empty disables it.
	Schedule string `koanf:"schedule"`

	// Watch enables regeneration when files under ResultsDir change.
	Watch         bool          `koanf:"watch"`
	WatchDebounce time.Duration `koanf:"watch_debounce"`

	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// EdgeConfig configures the TLS-terminating reverse proxy.
type EdgeConfig struct {
	// Hostnames served by the edge. The first one is used when a request carries no Host.
	Hostnames []string `koanf:"hostnames"`

	HTTPAddrs  []string `koanf:"http_addrs"`
	HTTPSAddrs []string `koanf:"https_addrs"`

	CertFile string     `koanf:"cert_file"`
	KeyFile  string     `koanf:"key_file"`
	ACME     ACMEConfig `koanf:"acme"`

	// UpstreamSocket is the filesystem path of the application socket.
	UpstreamSocket string `koanf:"upstream_socket"`

	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	SendTimeout    time.Duration `koanf:"send_timeout"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`

	AccessLog string `koanf:"access_log"`
	ErrorLog  string `koanf:"error_log"`

	// MetricsAddr exposes /metrics and /healthz for the edge. Empty disables it.
	MetricsAddr string `koanf:"metrics_addr"`

	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ACMEConfig enables automatic certificates instead of the cert/key pair.
type ACMEConfig struct {
	Enabled  bool   `koanf:"enabled"`
	CacheDir string `koanf:"cache_dir"`
	Email    string `koanf:"email"`
}

// TracingConfig toggles OTLP tracing. Exporter details come from the
// standard OTEL_* environment variables.
type TracingConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel: "info",
		Site: SiteConfig{
			Listen:          "unix:///run/ekcx/ekcx.sock",
			SocketMode:      0o660,
			StandingsDir:    "app/static/standings",
			ResultsDir:      "results",
			ResultsStore:    "json",
			ResultsJSON:     "app/data/results.json",
			SQLitePath:      "app/data/results.db",
			Season:          2025,
			WatchDebounce:   2 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Edge: EdgeConfig{
			Hostnames:       []string{"eastkentcx.co.uk", "www.eastkentcx.co.uk"},
			HTTPAddrs:       []string{":80"},
			HTTPSAddrs:      []string{":443"},
			CertFile:        "/etc/letsencrypt/live/eastkentcx.co.uk/fullchain.pem",
			KeyFile:         "/etc/letsencrypt/live/eastkentcx.co.uk/privkey.pem",
			ACME:            ACMEConfig{CacheDir: "/var/cache/ekcx/acme"},
			UpstreamSocket:  "/run/ekcx/ekcx.sock",
			ConnectTimeout:  DefaultProxyTimeout,
			SendTimeout:     DefaultProxyTimeout,
			ReadTimeout:     DefaultProxyTimeout,
			AccessLog:       "/var/log/ekcx/access.log",
			ErrorLog:        "/var/log/ekcx/error.log",
			ShutdownTimeout: 10 * time.Second,
		},
		Tracing: TracingConfig{
			ServiceName: "ekcx",
		},
	}
}
