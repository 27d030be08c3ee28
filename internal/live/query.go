// Package live keeps query results current with the store.
//
// A Query subscribes to the store's change feed, re-runs its query after
// every commit that touched one of its collections and hands the fresh
// result to its own subscribers.
package live

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/smart-park/backend/internal/storage"
)

// ErrNotStarted is returned by Current before Start has run.
var ErrNotStarted = errors.New("live query not started")

// Feed is the source of commit notifications.
type Feed interface {
	Subscribe(fn storage.Subscriber) (unsubscribe func())
}

// RunFunc loads the query result.
type RunFunc[T any] func(ctx context.Context) (T, error)

// Listener receives every refreshed result, or the error of a failed refresh.
type Listener[T any] func(result T, err error)

// Query is a continuously updated view over the store.
type Query[T any] struct {
	feed        Feed
	run         RunFunc[T]
	collections []storage.Collection

	// refreshMu orders refreshes so an older result never replaces a newer one.
	refreshMu sync.Mutex

	mu        sync.RWMutex
	ctx       context.Context
	started   bool
	current   T
	err       error
	revision  uint64
	listeners map[string]Listener[T]
	unsub     func()
}

// New creates a query over feed. With no collections the query refreshes
// after every commit.
func New[T any](feed Feed, run RunFunc[T], collections ...storage.Collection) *Query[T] {
	return &Query[T]{
		feed:        feed,
		run:         run,
		collections: collections,
		listeners:   make(map[string]Listener[T]),
	}
}

// Start runs the query once and then follows the change feed. Refreshes
// run with ctx until Stop is called.
func (q *Query[T]) Start(ctx context.Context) error {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return nil
	}
	q.ctx = ctx
	q.started = true
	q.mu.Unlock()

	unsub := q.feed.Subscribe(q.onChange)

	q.mu.Lock()
	q.unsub = unsub
	q.mu.Unlock()

	return q.Refresh()
}

// Stop detaches the query from the change feed. The last result stays
// readable.
func (q *Query[T]) Stop() {
	q.mu.Lock()
	unsub := q.unsub
	q.unsub = nil
	q.started = false
	q.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// Current returns the most recent result and the error of the most
// recent refresh.
func (q *Query[T]) Current() (T, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.revision == 0 && q.err == nil {
		var zero T
		return zero, ErrNotStarted
	}
	return q.current, q.err
}

// Revision counts completed refreshes.
func (q *Query[T]) Revision() uint64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.revision
}

// Subscribe registers fn to receive every refreshed result.
func (q *Query[T]) Subscribe(fn Listener[T]) (unsubscribe func()) {
	id := uuid.NewString()

	q.mu.Lock()
	q.listeners[id] = fn
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		delete(q.listeners, id)
		q.mu.Unlock()
	}
}

// Refresh re-runs the query now and notifies listeners. Concurrent calls
// run one at a time; listeners must not call Refresh.
func (q *Query[T]) Refresh() error {
	q.refreshMu.Lock()
	defer q.refreshMu.Unlock()

	q.mu.RLock()
	ctx := q.ctx
	q.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := q.run(ctx)

	q.mu.Lock()
	if err == nil {
		q.current = result
		q.revision++
	}
	q.err = err
	current := q.current
	listeners := make([]Listener[T], 0, len(q.listeners))
	for _, fn := range q.listeners {
		listeners = append(listeners, fn)
	}
	q.mu.Unlock()

	for _, fn := range listeners {
		fn(current, err)
	}
	return err
}

func (q *Query[T]) onChange(cs storage.ChangeSet) {
	if len(q.collections) > 0 && !cs.Touches(q.collections...) {
		return
	}
	// Failures are kept for Current and passed to listeners.
	_ = q.Refresh()
}
