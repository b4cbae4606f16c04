package repository

import "github.com/eastkentcx/ekcx/pkg/logger"

// Option applies a configuration option to a results store.
type Option func(*options)

type options struct {
	logger logger.Logger
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: logger.Get().Named("repository")}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
