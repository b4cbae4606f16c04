// Package watch turns filesystem changes into debounced callbacks.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/eastkentcx/ekcx/pkg/logger"
)

const defaultDebounce = 100 * time.Millisecond

// ErrRunning is returned when Watch is called twice.
var ErrRunning = errors.New("watcher already running")

// Config describes what to watch.
type Config struct {
	// Paths are files or directories. Directories are watched recursively
	// and new subdirectories are picked up as they appear. Files are watched
	// through their parent directory so atomic replacements are seen.
	Paths []string

	// Debounce is the quiet period before the callback fires.
	Debounce time.Duration

	// Extensions limits directory events to these file extensions. Empty means all.
	Extensions []string

	// SkipHidden ignores dot files and directories.
	SkipHidden bool
}

// Watcher watches Config.Paths and reports changes.
type Watcher struct {
	fs       *fsnotify.Watcher
	cfg      Config
	debounce *Debouncer
	logger   logger.Logger

	files map[string]bool // cleaned file paths watched via their parent

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a watcher. Nothing is watched until Watch is called.
func New(cfg Config, opts ...Option) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		fs:       fsw,
		cfg:      cfg,
		debounce: NewDebouncer(cfg.Debounce),
		logger:   logger.Get().Named("watch"),
		files:    map[string]bool{},
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch blocks until ctx is done or Stop is called. onChange receives the
// last changed path of each debounced burst.
func (w *Watcher) Watch(ctx context.Context, onChange func(ctx context.Context, path string)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrRunning
	}
	w.running = true
	w.mu.Unlock()
	defer close(w.doneCh)

	for _, p := range w.cfg.Paths {
		if err := w.addPath(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
	}
	w.logger.Info(ctx, "file watcher started",
		logger.Any("paths", w.cfg.Paths),
		logger.Duration("debounce", w.cfg.Debounce),
	)

	for {
		select {
		case <-ctx.Done():
			w.debounce.Stop()
			return nil
		case <-w.stopCh:
			w.debounce.Stop()
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if ev.Has(fsnotify.Create) {
				w.maybeAddDir(ctx, ev.Name)
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug(ctx, "file event", logger.String("path", ev.Name), logger.String("op", ev.Op.String()))
			name := ev.Name
			w.debounce.Trigger(func() { onChange(ctx, name) })

		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error(ctx, "file watcher error", logger.Error(err))
		}
	}
}

// Stop stops a running Watch and releases the fsnotify handle.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	w.debounce.Stop()
	if err := w.fs.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		w.files[filepath.Clean(path)] = true
		return w.fs.Add(filepath.Dir(path))
	}
	return filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.cfg.SkipHidden && p != path && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fs.Add(p)
	})
}

// maybeAddDir follows directories created under a watched tree.
func (w *Watcher) maybeAddDir(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if w.cfg.SkipHidden && strings.HasPrefix(filepath.Base(path), ".") {
		return
	}
	if err := w.addPath(path); err != nil {
		w.logger.Warn(ctx, "failed to watch new directory", logger.String("path", path), logger.Error(err))
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(ev.Name)
	if w.files[name] {
		return true
	}
	// Events for siblings of a watched file.
	if len(w.files) > 0 && !w.underWatchedDir(name) {
		return false
	}
	base := filepath.Base(name)
	if w.cfg.SkipHidden && strings.HasPrefix(base, ".") {
		return false
	}
	if len(w.cfg.Extensions) == 0 {
		return true
	}
	if info, err := os.Stat(name); err == nil && info.IsDir() {
		return true
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range w.cfg.Extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

func (w *Watcher) underWatchedDir(name string) bool {
	for _, p := range w.cfg.Paths {
		p = filepath.Clean(p)
		if w.files[p] {
			continue
		}
		if name == p || strings.HasPrefix(name, p+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
