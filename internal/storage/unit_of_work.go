package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// Collection names one of the persisted record sets.
type Collection string

const (
	CollectionSpots    Collection = "spots"
	CollectionVehicles Collection = "vehicles"
	CollectionLogs     Collection = "logs"
)

// AllCollections lists every collection in the store.
var AllCollections = Scope{CollectionSpots, CollectionVehicles, CollectionLogs}

// Scope is the set of collections a unit of work may touch.
type Scope []Collection

// Has reports whether c is part of the scope.
func (s Scope) Has(c Collection) bool {
	for _, sc := range s {
		if sc == c {
			return true
		}
	}
	return false
}

// Union returns a scope containing the collections of both scopes.
func (s Scope) Union(other Scope) Scope {
	out := append(Scope{}, s...)
	for _, c := range other {
		if !out.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// UnitOfWork gives a transaction body typed handles to the collections it
// declared. All writes made through the handles commit or roll back together.
type UnitOfWork struct {
	tx       *sql.Tx
	scope    Scope
	readOnly bool
	touched  map[Collection]bool
}

func newUnitOfWork(tx *sql.Tx, scope Scope, readOnly bool) *UnitOfWork {
	return &UnitOfWork{
		tx:       tx,
		scope:    scope,
		readOnly: readOnly,
		touched:  make(map[Collection]bool),
	}
}

func (u *UnitOfWork) base(c Collection) BaseRepository {
	b := newBaseRepository(u.tx, c, u.touch)
	b.readOnly = u.readOnly
	if !u.scope.Has(c) {
		b.guard = fmt.Errorf("%w: %s", ErrOutOfScope, c)
	}
	return b
}

// Spots returns the spot repository bound to this unit.
func (u *UnitOfWork) Spots() *SpotRepository {
	return &SpotRepository{BaseRepository: u.base(CollectionSpots)}
}

// Vehicles returns the vehicle repository bound to this unit.
func (u *UnitOfWork) Vehicles() *VehicleRepository {
	return &VehicleRepository{BaseRepository: u.base(CollectionVehicles)}
}

// Logs returns the audit log bound to this unit.
func (u *UnitOfWork) Logs() *LogRepository {
	return &LogRepository{BaseRepository: u.base(CollectionLogs)}
}

func (u *UnitOfWork) touch(c Collection) {
	u.touched[c] = true
}

// Touched returns the collections written so far, in stable order.
func (u *UnitOfWork) Touched() []Collection {
	out := make([]Collection, 0, len(u.touched))
	for c := range u.touched {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Update runs fn as a single atomic unit over the collections in scope.
// Returning nil commits; returning an error rolls everything back and the
// error is passed through unchanged. Subscribers are notified after commit
// when at least one collection was written.
func (db *DB) Update(ctx context.Context, scope Scope, fn func(ctx context.Context, uow *UnitOfWork) error) error {
	touched, err := db.commit(ctx, scope, fn)
	if err != nil {
		return err
	}

	// Published after the write lock is released so subscribers can read
	// or start their own units.
	if len(touched) > 0 {
		db.feed.publish(ChangeSet{Collections: touched, CommittedAt: time.Now().UTC()})
	}
	return nil
}

// commit runs fn in a transaction under the write lock and reports the
// collections it wrote.
func (db *DB) commit(ctx context.Context, scope Scope, fn func(ctx context.Context, uow *UnitOfWork) error) ([]Collection, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	var uow *UnitOfWork
	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		uow = newUnitOfWork(tx, scope, false)
		return fn(ctx, uow)
	})
	if err != nil {
		return nil, err
	}
	return uow.Touched(), nil
}

// View runs fn against a consistent read-only snapshot of every collection.
func (db *DB) View(ctx context.Context, fn func(ctx context.Context, uow *UnitOfWork) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning read transaction: %w", err)
	}
	defer tx.Rollback()

	return fn(ctx, newUnitOfWork(tx, AllCollections, true))
}
