package parking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smart-park/backend/internal/storage"
	"github.com/smart-park/backend/internal/storage/models"
)

func TestPolicyScope(t *testing.T) {
	p := DefaultPolicy()
	assert.ElementsMatch(t,
		storage.Scope{storage.CollectionSpots, storage.CollectionVehicles},
		p.Scope(storage.CollectionSpots))
	assert.Equal(t, storage.Scope{storage.CollectionVehicles}, p.Scope(storage.CollectionVehicles))
}

func TestPolicyCascadeError(t *testing.T) {
	boom := errors.New("boom")
	p := Policy{
		storage.CollectionSpots: {{
			Name:    "failing",
			Touches: storage.CollectionVehicles,
			Apply: func(ctx context.Context, uow *storage.UnitOfWork, key string) (int, error) {
				return 0, boom
			},
		}},
	}

	svc, _ := newTestService(t)
	svc.policy = p
	seedSpots(t, svc, models.NewFreeSpot("A1", models.SpotTypeNormal))

	err := svc.DeleteSpots(context.Background(), []string{"A1"})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "cascade failing for A1")

	// The failed cascade rolls back the whole delete.
	mustSpot(t, svc, "A1")
}

func TestEmptyPolicyKeepsVehicles(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	svc.policy = Policy{}
	seedSpots(t, svc, models.NewFreeSpot("A1", models.SpotTypeNormal))
	seedVehicles(t, svc, models.Vehicle{Plate: "ONE", Office: "Oficina 1", AllowedSpots: []string{"A1"}})

	require.NoError(t, svc.DeleteSpots(ctx, []string{"A1"}))

	vehicles, err := svc.ListVehicles(ctx)
	require.NoError(t, err)
	assert.Len(t, vehicles, 1)
}
