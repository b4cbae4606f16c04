package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/eastkentcx/ekcx/internal/adapters/watch"
	"github.com/eastkentcx/ekcx/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) record(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.paths) == 0 {
		return ""
	}
	return r.paths[len(r.paths)-1]
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func startWatcher(t *testing.T, cfg watch.Config, rec *recorder) *watch.Watcher {
	t.Helper()
	w, err := watch.New(cfg)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Watch(ctx, rec.record) }()
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	// Give the watcher time to register its paths.
	time.Sleep(50 * time.Millisecond)
	return w
}

func TestDirectoryWatch(t *testing.T) {
	convey.Convey("Given a watched results tree", t, func() {
		dir := t.TempDir()
		rec := &recorder{}
		startWatcher(t, watch.Config{
			Paths:      []string{dir},
			Debounce:   50 * time.Millisecond,
			Extensions: []string{".xlsx", ".csv"},
			SkipHidden: true,
		}, rec)

		convey.Convey("When several result files are written in a burst", func() {
			for _, name := range []string{"mens.xlsx", "womens.xlsx", "u12.csv"} {
				convey.So(os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644), convey.ShouldBeNil)
			}

			convey.Convey("Then a single callback should fire", func() {
				convey.So(eventually(func() bool { return rec.count() == 1 }), convey.ShouldBeTrue)
				time.Sleep(100 * time.Millisecond)
				convey.So(rec.count(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a round directory is created and filled", func() {
			round := filepath.Join(dir, "2025", "3")
			convey.So(os.MkdirAll(round, 0o755), convey.ShouldBeNil)
			time.Sleep(150 * time.Millisecond)
			before := rec.count()
			convey.So(os.WriteFile(filepath.Join(round, "v40.xlsx"), []byte("x"), 0o644), convey.ShouldBeNil)

			convey.Convey("Then files in the new directory should be seen", func() {
				convey.So(eventually(func() bool { return rec.last() == filepath.Join(round, "v40.xlsx") }), convey.ShouldBeTrue)
				convey.So(rec.count(), convey.ShouldBeGreaterThan, before)
			})
		})

		convey.Convey("When an unrelated file is written", func() {
			convey.So(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644), convey.ShouldBeNil)
			convey.So(os.WriteFile(filepath.Join(dir, ".~lock.mens.xlsx"), []byte("x"), 0o644), convey.ShouldBeNil)

			convey.Convey("Then no callback should fire", func() {
				time.Sleep(150 * time.Millisecond)
				convey.So(rec.count(), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestFileWatch(t *testing.T) {
	convey.Convey("Given a watched calendar file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "events.yaml")
		convey.So(os.WriteFile(path, []byte("2025: {}\n"), 0o644), convey.ShouldBeNil)
		rec := &recorder{}
		startWatcher(t, watch.Config{Paths: []string{path}, Debounce: 20 * time.Millisecond}, rec)

		convey.Convey("When the file is atomically replaced", func() {
			tmp := filepath.Join(dir, ".events.yaml.tmp")
			convey.So(os.WriteFile(tmp, []byte("2026: {}\n"), 0o644), convey.ShouldBeNil)
			convey.So(os.Rename(tmp, path), convey.ShouldBeNil)

			convey.Convey("Then the callback should name the file", func() {
				convey.So(eventually(func() bool { return rec.last() == path }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a sibling file changes", func() {
			convey.So(os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644), convey.ShouldBeNil)

			convey.Convey("Then it should be ignored", func() {
				time.Sleep(100 * time.Millisecond)
				convey.So(rec.count(), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestWatchTwice(t *testing.T) {
	convey.Convey("Given a running watcher", t, func() {
		w := startWatcher(t, watch.Config{Paths: []string{t.TempDir()}}, &recorder{})

		convey.Convey("Then a second Watch should fail", func() {
			err := w.Watch(context.Background(), func(context.Context, string) {})
			convey.So(err, convey.ShouldEqual, watch.ErrRunning)
		})
	})
}

func TestDebouncer(t *testing.T) {
	convey.Convey("Given a debouncer", t, func() {
		d := watch.NewDebouncer(30 * time.Millisecond)
		var mu sync.Mutex
		fired := 0
		inc := func() { mu.Lock(); fired++; mu.Unlock() }
		get := func() int { mu.Lock(); defer mu.Unlock(); return fired }

		convey.Convey("When triggered repeatedly", func() {
			for i := 0; i < 5; i++ {
				d.Trigger(inc)
				time.Sleep(5 * time.Millisecond)
			}
			time.Sleep(100 * time.Millisecond)
			convey.So(get(), convey.ShouldEqual, 1)
		})

		convey.Convey("When stopped before the quiet period ends", func() {
			d.Trigger(inc)
			d.Stop()
			d.Trigger(inc)
			time.Sleep(80 * time.Millisecond)
			convey.So(get(), convey.ShouldEqual, 0)
		})
	})
}
