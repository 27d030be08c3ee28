package parking

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smart-park/backend/internal/storage"
	"github.com/smart-park/backend/internal/storage/models"
)

var testEpoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// fakeClock advances one second on every reading.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestService(t *testing.T) (*Service, *fakeClock) {
	t.Helper()
	db, err := storage.NewDB(filepath.Join(t.TempDir(), "parking.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.RunMigrations(context.Background(), db, zap.NewNop()))

	clock := &fakeClock{t: testEpoch}
	return NewService(db, zap.NewNop(), WithClock(clock.Now)), clock
}

func seedSpots(t *testing.T, svc *Service, spots ...models.Spot) {
	t.Helper()
	err := svc.DB().Update(context.Background(), storage.Scope{storage.CollectionSpots}, func(ctx context.Context, uow *storage.UnitOfWork) error {
		for i := range spots {
			if err := uow.Spots().Add(ctx, &spots[i]); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func seedVehicles(t *testing.T, svc *Service, vehicles ...models.Vehicle) {
	t.Helper()
	err := svc.DB().Update(context.Background(), storage.Scope{storage.CollectionVehicles}, func(ctx context.Context, uow *storage.UnitOfWork) error {
		for i := range vehicles {
			if err := uow.Vehicles().Put(ctx, &vehicles[i]); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func mustSpot(t *testing.T, svc *Service, id string) *models.Spot {
	t.Helper()
	spot, err := svc.GetSpot(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, spot, "spot %s", id)
	return spot
}

func allLogs(t *testing.T, svc *Service) []models.TransactionLog {
	t.Helper()
	entries, err := svc.ListLogs(context.Background(), "", 0)
	require.NoError(t, err)
	return entries
}

// failInserts installs a trigger that aborts inserts into table matching when.
func failInserts(t *testing.T, svc *Service, name, table, when string) {
	t.Helper()
	_, err := svc.DB().Exec(`CREATE TRIGGER ` + name + ` BEFORE INSERT ON ` + table +
		` WHEN ` + when + ` BEGIN SELECT RAISE(ABORT, 'rejected by ` + name + `'); END`)
	require.NoError(t, err)
}
