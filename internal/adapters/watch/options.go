package watch

import "github.com/eastkentcx/ekcx/pkg/logger"

// Option applies a configuration option to the Watcher.
type Option func(*Watcher)

// WithLogger sets a custom logger for the watcher.
func WithLogger(l logger.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}
