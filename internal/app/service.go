// Package service wires the site's background machinery: the calendar, the
// results store, the generator and the regeneration pipeline fed by the
// startup trigger, the cron schedule and the results watcher.
package service

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/eastkentcx/ekcx/internal/adapters/calendar"
	eventqueue "github.com/eastkentcx/ekcx/internal/adapters/mq/queue"
	"github.com/eastkentcx/ekcx/internal/adapters/mq/worker"
	"github.com/eastkentcx/ekcx/internal/adapters/repository"
	"github.com/eastkentcx/ekcx/internal/adapters/watch"
	"github.com/eastkentcx/ekcx/internal/config"
	"github.com/eastkentcx/ekcx/internal/domain/model"
	"github.com/eastkentcx/ekcx/internal/generator"
	"github.com/eastkentcx/ekcx/pkg/logger"
	"github.com/eastkentcx/ekcx/pkg/metrics"
)

// resultExtensions are the files whose changes trigger regeneration.
var resultExtensions = []string{".csv", ".xlsx"}

// Service owns the site's long-running components.
type Service struct {
	mu sync.RWMutex

	cfg config.SiteConfig

	// Core components
	calendar  *calendar.Calendar
	store     repository.Store
	generator *generator.Generator
	queue     *eventqueue.InMemoryQueue
	worker    *worker.InMemoryWorker
	cron      *cron.Cron
	watchers  []*watch.Watcher

	// State
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Nothing runs until Start.
func New(cfg config.SiteConfig, opts ...Option) *Service {
	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the calendar and the store, starts the regeneration worker,
// the scheduler and the watchers, and queues a startup regeneration.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	cal, err := calendar.Load(s.cfg.CalendarFile)
	if err != nil {
		return err
	}
	store, err := repository.New(s.cfg.ResultsStore, s.storePath(), repository.WithLogger(s.logger.Named("store")))
	if err != nil {
		return err
	}

	s.calendar = cal
	s.store = store
	s.generator = generator.New(generator.Paths{
		ResultsDir:   s.cfg.ResultsDir,
		StandingsDir: s.cfg.StandingsDir,
	}, store, cal, generator.WithLogger(s.logger.Named("generator")))
	s.queue = eventqueue.NewInMemoryQueue()
	s.worker = worker.NewInMemoryWorker(s.queue, s.generator,
		worker.WithName("regenerate"),
		worker.WithLogger(s.logger),
	)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	go s.worker.Run(runCtx)

	if err := s.startSchedule(runCtx); err != nil {
		s.stopLocked(ctx)
		return err
	}
	if s.cfg.Watch {
		if err := s.startWatchers(runCtx); err != nil {
			s.stopLocked(ctx)
			return err
		}
	}

	s.started = true
	s.logger.Info(ctx, "site service started",
		logger.Int("season", s.cfg.Season),
		logger.String("results_store", s.cfg.ResultsStore),
		logger.String("schedule", s.cfg.Schedule),
		logger.Bool("watch", s.cfg.Watch),
	)

	s.enqueue(runCtx, eventqueue.SourceStartup)
	return nil
}

func (s *Service) storePath() string {
	if s.cfg.ResultsStore == repository.BackendSQLite {
		return s.cfg.SQLitePath
	}
	return s.cfg.ResultsJSON
}

func (s *Service) startSchedule(ctx context.Context) error {
	if s.cfg.Schedule == "" {
		return nil
	}
	if _, err := cron.ParseStandard(s.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.cfg.Schedule, err)
	}
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.cfg.Schedule, func() { s.enqueue(ctx, eventqueue.SourceCron) }); err != nil {
		return fmt.Errorf("failed to schedule regeneration: %w", err)
	}
	s.cron.Start()
	return nil
}

func (s *Service) startWatchers(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.ResultsDir, 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	results, err := watch.New(watch.Config{
		Paths:      []string{s.cfg.ResultsDir},
		Debounce:   s.cfg.WatchDebounce,
		Extensions: resultExtensions,
		SkipHidden: true,
	}, watch.WithLogger(s.logger.Named("watch")))
	if err != nil {
		return err
	}
	s.run(ctx, results, func(ctx context.Context, path string) {
		s.logger.Info(ctx, "results changed", logger.String("path", path))
		s.enqueue(ctx, eventqueue.SourceWatch)
	})

	if path := s.calendar.Path(); path != "" {
		events, err := watch.New(watch.Config{Paths: []string{path}, Debounce: s.cfg.WatchDebounce},
			watch.WithLogger(s.logger.Named("watch")))
		if err != nil {
			return err
		}
		s.run(ctx, events, func(ctx context.Context, _ string) {
			if err := s.calendar.Reload(); err != nil {
				s.logger.Error(ctx, "calendar reload failed", logger.Error(err))
				return
			}
			s.logger.Info(ctx, "calendar reloaded", logger.String("path", path))
		})
	}
	return nil
}

func (s *Service) run(ctx context.Context, w *watch.Watcher, onChange func(context.Context, string)) {
	s.watchers = append(s.watchers, w)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := w.Watch(ctx, onChange); err != nil {
			s.logger.Error(ctx, "watcher stopped", logger.Error(err))
		}
	}()
}

func (s *Service) enqueue(ctx context.Context, source string) {
	t := eventqueue.Trigger{Year: s.cfg.Season, Source: source}
	if !s.queue.Enqueue(ctx, t) {
		s.logger.Warn(ctx, "regeneration not queued", logger.String("source", source))
		return
	}
	metrics.UpdateQueueSize(s.queue.Len(ctx))
}

// Regenerate queues a manual regeneration of the season. It reports false
// when the service is not running.
func (s *Service) Regenerate(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return false
	}
	s.enqueue(ctx, eventqueue.SourceManual)
	return true
}

// Stop shuts the components down in reverse order of Start.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(ctx, "stopping site service...")
	s.stopLocked(ctx)
	s.started = false
	s.logger.Info(ctx, "site service stopped")
}

func (s *Service) stopLocked(ctx context.Context) {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.cron = nil
	}
	for _, w := range s.watchers {
		if err := w.Stop(); err != nil {
			s.logger.Warn(ctx, "failed to stop watcher", logger.Error(err))
		}
	}
	s.watchers = nil
	s.wg.Wait()

	if err := s.worker.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker shutdown failed", logger.Error(err))
	}
	if s.cancel != nil {
		s.cancel()
	}
	_ = s.queue.Close()
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "failed to close results store", logger.Error(err))
	}
}

// QueueLen reports pending regenerations; zero when not running.
func (s *Service) QueueLen(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return 0
	}
	return s.queue.Len(ctx)
}

// Calendar returns the event calendar. It is nil before Start.
func (s *Service) Calendar() *calendar.Calendar {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calendar
}

// Store returns the results store. It is nil before Start.
func (s *Service) Store() repository.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// Summary reports the last standings generation.
func (s *Service) Summary() (model.Summary, bool) {
	s.mu.RLock()
	g := s.generator
	s.mu.RUnlock()
	if g == nil {
		return model.Summary{}, false
	}
	return g.Summary()
}
