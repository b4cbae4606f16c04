// Package queue defines the contract for enqueuing and consuming
// regeneration triggers.
//
// Triggers only say "a season's published output may be stale", so a new
// trigger for a season that already has one pending is coalesced into it
// instead of queued. Distinct seasons queue separately, up to the
// capacity.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/eastkentcx/ekcx/pkg/metrics"
)

// Default queue configuration constants.
const (
	// defaultQueueCapacity is the number of seasons that may wait at once.
	defaultQueueCapacity = 4
)

// Trigger sources.
const (
	SourceStartup = "startup"
	SourceCron    = "cron"
	SourceWatch   = "watch"
	SourceManual  = "manual"
)

// Trigger asks the worker to regenerate a season.
type Trigger struct {
	Year   int
	Source string
	At     time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a trigger to the queue, coalescing it into a pending
	// trigger for the same year. Returns false only when the queue is closed
	// or ctx is done.
	Enqueue(ctx context.Context, t Trigger) bool

	// Dequeue returns a channel that will receive triggers as they become available.
	// The channel will be closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Trigger

	// Len returns the current number of pending triggers.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	// After closing, no new triggers can be enqueued and the dequeue channel will be closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	triggers chan Trigger
	capacity int
	mu       sync.RWMutex
	closed   bool

	// pending holds the years with a trigger in the channel.
	pendingMu sync.Mutex
	pending   map[int]struct{}
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
		pending:  make(map[int]struct{}),
	}

	for _, opt := range opts {
		opt(q)
	}

	q.triggers = make(chan Trigger, q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a trigger to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Trigger) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed || ctx.Err() != nil {
		return false
	}
	if t.At.IsZero() {
		t.At = time.Now()
	}

	q.pendingMu.Lock()
	defer q.pendingMu.Unlock()

	if _, ok := q.pending[t.Year]; ok {
		// The pending trigger will regenerate everything this one would.
		metrics.RecordQueueCoalesced()
		return true
	}

	select {
	case q.triggers <- t:
		q.pending[t.Year] = struct{}{}
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.triggers))
	default:
		// Every slot holds another season; this one waits for the next trigger.
		metrics.RecordQueueCoalesced()
	}
	return true
}

// Dequeue returns a channel that will receive triggers as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Trigger {
	out := make(chan Trigger)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case t, ok := <-q.triggers:
				if !ok {
					return
				}
				q.pendingMu.Lock()
				delete(q.pending, t.Year)
				q.pendingMu.Unlock()
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.triggers))
				select {
				case out <- t:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of pending triggers.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.triggers)
	metrics.UpdateQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.triggers)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
