package parking

import (
	"context"
	"fmt"

	"github.com/smart-park/backend/internal/storage"
)

// CascadeRule removes records in another collection that depend on a
// record being deleted.
type CascadeRule struct {
	Name    string
	Touches storage.Collection
	Apply   func(ctx context.Context, uow *storage.UnitOfWork, key string) (removed int, err error)
}

// Policy maps a collection to the cascades that run before one of its
// records is deleted.
type Policy map[storage.Collection][]CascadeRule

// DefaultPolicy returns the referential integrity rules of the product:
// deleting a spot deletes every vehicle authorized for it.
func DefaultPolicy() Policy {
	return Policy{
		storage.CollectionSpots: {
			{
				Name:    "spot-authorized-vehicles",
				Touches: storage.CollectionVehicles,
				Apply:   deleteAuthorizedVehicles,
			},
		},
	}
}

// Scope returns the collections a delete from root may touch.
func (p Policy) Scope(root storage.Collection) storage.Scope {
	scope := storage.Scope{root}
	for _, rule := range p[root] {
		scope = scope.Union(storage.Scope{rule.Touches})
	}
	return scope
}

// Cascade runs every rule registered for root against key and returns the
// number of dependent records removed.
func (p Policy) Cascade(ctx context.Context, uow *storage.UnitOfWork, root storage.Collection, key string) (int, error) {
	total := 0
	for _, rule := range p[root] {
		n, err := rule.Apply(ctx, uow, key)
		if err != nil {
			return total, fmt.Errorf("cascade %s for %s: %w", rule.Name, key, err)
		}
		total += n
	}
	return total, nil
}

// deleteAuthorizedVehicles removes whole vehicle records, not only the link,
// for every vehicle whose allowed spots contain spotID.
func deleteAuthorizedVehicles(ctx context.Context, uow *storage.UnitOfWork, spotID string) (int, error) {
	vehicles := uow.Vehicles()

	linked, err := vehicles.FindByAllowedSpot(ctx, spotID)
	if err != nil {
		return 0, err
	}

	plates := make([]string, len(linked))
	for i, v := range linked {
		plates[i] = v.Plate
	}
	if err := vehicles.DeleteMany(ctx, plates); err != nil {
		return 0, err
	}

	return len(plates), nil
}
