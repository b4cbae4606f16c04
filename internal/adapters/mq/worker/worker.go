// Package worker drains regeneration triggers and rebuilds published output.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eastkentcx/ekcx/internal/adapters/mq/queue"
	"github.com/eastkentcx/ekcx/pkg/logger"
	"github.com/eastkentcx/ekcx/pkg/metrics"
)

// Regenerator rebuilds the standings and result sections of a season.
type Regenerator interface {
	Regenerate(ctx context.Context, year int) error
}

// Queue defines how workers receive triggers.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Trigger
}

// Worker processes triggers one at a time.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// A regeneration in progress is allowed to finish.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker over an in-memory queue.
type InMemoryWorker struct {
	queue       Queue
	regenerator Regenerator
	name        string

	// Shutdown control
	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, r Regenerator, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:       q,
		regenerator: r,
		name:        "worker",
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
		logger:      logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	triggers := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-triggers:
			if !ok {
				return
			}
			if err := w.process(ctx, t); err != nil {
				w.logger.Error(ctx, "regeneration failed", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker. It may be called more than once.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, t queue.Trigger) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(time.Since(start))
	}()

	w.logger.Info(ctx, "regenerating",
		logger.Int("year", t.Year),
		logger.String("source", t.Source),
		logger.Duration("queued", start.Sub(t.At)),
	)

	if err := w.regenerator.Regenerate(ctx, t.Year); err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("regenerate %d (%s): %w", t.Year, t.Source, err)
	}

	w.logger.Info(ctx, "regeneration complete",
		logger.Int("year", t.Year),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}
