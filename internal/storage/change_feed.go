package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChangeSet describes one committed unit of work.
type ChangeSet struct {
	Collections []Collection `json:"collections"`
	CommittedAt time.Time    `json:"committed_at"`
}

// Touches reports whether any of the given collections changed.
func (c ChangeSet) Touches(collections ...Collection) bool {
	for _, want := range collections {
		for _, got := range c.Collections {
			if got == want {
				return true
			}
		}
	}
	return false
}

// Subscriber receives a change set after each commit.
type Subscriber func(ChangeSet)

type changeFeed struct {
	mu   sync.RWMutex
	subs map[string]Subscriber
}

func newChangeFeed() *changeFeed {
	return &changeFeed{subs: make(map[string]Subscriber)}
}

func (f *changeFeed) subscribe(fn Subscriber) func() {
	id := uuid.NewString()

	f.mu.Lock()
	f.subs[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *changeFeed) publish(cs ChangeSet) {
	f.mu.RLock()
	subs := make([]Subscriber, 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.RUnlock()

	// Called outside the lock so subscribers may subscribe or unsubscribe.
	for _, fn := range subs {
		fn(cs)
	}
}

// Subscribe registers fn to be called after every committed unit of work
// that wrote to the store. The returned function removes the subscription.
func (db *DB) Subscribe(fn Subscriber) (unsubscribe func()) {
	return db.feed.subscribe(fn)
}
