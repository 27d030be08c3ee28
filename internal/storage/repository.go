package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrDuplicateKey is returned when inserting a record whose primary key exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrOutOfScope is returned when a unit of work touches a collection it
	// did not declare.
	ErrOutOfScope = errors.New("collection not in unit of work scope")

	// ErrReadOnly is returned when a read-only unit of work attempts a write.
	ErrReadOnly = errors.New("unit of work is read-only")
)

// Queryable represents a database connection that can execute queries.
// Both *sql.DB and *sql.Tx implement this interface.
type Queryable interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// BaseRepository provides common functionality for all repositories.
type BaseRepository struct {
	q          Queryable
	collection Collection
	guard      error
	readOnly   bool
	onWrite    func(Collection)
}

func newBaseRepository(q Queryable, collection Collection, onWrite func(Collection)) BaseRepository {
	return BaseRepository{q: q, collection: collection, onWrite: onWrite}
}

// Collection returns the collection this repository serves.
func (r *BaseRepository) Collection() Collection {
	return r.collection
}

func (r *BaseRepository) db() Queryable {
	return r.q
}

// canRead returns the error to fail a read with, if any.
func (r *BaseRepository) canRead() error {
	return r.guard
}

// canWrite returns the error to fail a write with, if any.
func (r *BaseRepository) canWrite() error {
	if r.guard != nil {
		return r.guard
	}
	if r.readOnly {
		return fmt.Errorf("%w: %s", ErrReadOnly, r.collection)
	}
	return nil
}

// wrote records that the collection was modified in the current unit.
func (r *BaseRepository) wrote() {
	if r.onWrite != nil {
		r.onWrite(r.collection)
	}
}

// isConstraintViolation reports whether err is a primary key or unique
// constraint failure raised by SQLite.
func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
