package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestDB creates a migrated store in a temporary directory.
func newTestDB(t *testing.T, hooks ...PopulateFunc) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, h := range hooks {
		db.OnPopulate(h)
	}
	require.NoError(t, RunMigrations(context.Background(), db, zap.NewNop()))
	return db
}

// mustUpdate runs fn in a unit of work over every collection.
func mustUpdate(t *testing.T, db *DB, fn func(ctx context.Context, uow *UnitOfWork) error) {
	t.Helper()
	require.NoError(t, db.Update(context.Background(), AllCollections, fn))
}
