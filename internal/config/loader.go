package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every configuration environment variable.
const EnvPrefix = "EKCX_"

// FileEnv names the variable that points at an optional YAML file.
const FileEnv = EnvPrefix + "CONFIG"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if EKCX_CONFIG is set
//  3. env (prefix EKCX_, "__" separates nested keys: EKCX_EDGE__READ_TIMEOUT)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Single underscores stay inside a key to match koanf tags on the struct.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "__", ".")
		if key == "config" {
			// The file variable itself is not a config key.
			return "", nil
		}
		if isListKey(key) {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants every binary relies on.
func (c *Config) Validate() error {
	switch c.Site.ResultsStore {
	case "json", "sqlite":
	default:
		return fmt.Errorf("%w: site.results_store must be json or sqlite, got %q", ErrInvalidConfig, c.Site.ResultsStore)
	}
	if c.Site.Listen == "" {
		return fmt.Errorf("%w: site.listen must not be empty", ErrInvalidConfig)
	}
	if len(c.Edge.Hostnames) == 0 {
		return fmt.Errorf("%w: edge.hostnames must not be empty", ErrInvalidConfig)
	}
	if c.Edge.UpstreamSocket == "" {
		return fmt.Errorf("%w: edge.upstream_socket must not be empty", ErrInvalidConfig)
	}
	if c.Edge.ConnectTimeout <= 0 || c.Edge.SendTimeout <= 0 || c.Edge.ReadTimeout <= 0 {
		return fmt.Errorf("%w: edge timeouts must be positive", ErrInvalidConfig)
	}
	if !c.Edge.ACME.Enabled && (c.Edge.CertFile == "" || c.Edge.KeyFile == "") {
		return fmt.Errorf("%w: edge.cert_file and edge.key_file are required without acme", ErrInvalidConfig)
	}
	return nil
}

// isListKey reports whether an env key maps to a []string field.
func isListKey(key string) bool {
	return strings.HasSuffix(key, "hostnames") || strings.HasSuffix(key, "_addrs")
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
