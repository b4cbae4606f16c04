package site

import "github.com/eastkentcx/ekcx/pkg/logger"

// Option applies a configuration option to the Site.
type Option func(*Site)

// WithLogger sets a custom logger for the site.
func WithLogger(l logger.Logger) Option {
	return func(s *Site) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStats exposes the last generation summary on /stats.
func WithStats(p StatsProvider) Option {
	return func(s *Site) {
		s.stats = p
	}
}
