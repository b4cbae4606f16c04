package watch

import (
	"sync"
	"time"
)

// Debouncer collects rapid events and fires the latest callback once a
// quiet period has passed.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopped  bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger (re)arms the timer with callback.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	cb := d.callback
	d.callback = nil
	stopped := d.stopped
	d.mu.Unlock()

	if cb != nil && !stopped {
		cb()
	}
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
