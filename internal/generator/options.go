package generator

import (
	"github.com/eastkentcx/ekcx/internal/adapters/resultsfile"
	"github.com/eastkentcx/ekcx/internal/domain/dedupe"
	"github.com/eastkentcx/ekcx/pkg/logger"
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithLogger sets a custom logger for the generator.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithReader replaces the results file reader.
func WithReader(r *resultsfile.Reader) Option {
	return func(g *Generator) {
		if r != nil {
			g.reader = r
		}
	}
}

// WithNormalizer replaces the rider and team normalizer.
func WithNormalizer(n *dedupe.Normalizer) Option {
	return func(g *Generator) {
		if n != nil {
			g.normalizer = n
		}
	}
}
