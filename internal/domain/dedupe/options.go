package dedupe

import (
	"github.com/eastkentcx/ekcx/pkg/logger"
)

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithLogger sets a custom logger for normalization reports.
func WithLogger(l logger.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithTeamAliases replaces the predefined team aliases (abbreviation -> full name).
func WithTeamAliases(aliases map[string]string) Option {
	return func(n *Normalizer) {
		if aliases != nil {
			n.aliases = make(map[string]string, len(aliases))
			for k, v := range aliases {
				n.aliases[k] = v
			}
		}
	}
}
