package parking

import (
	"context"

	"github.com/smart-park/backend/internal/storage"
	"github.com/smart-park/backend/internal/storage/models"
)

// ListSpots returns every spot ordered by ID.
func (s *Service) ListSpots(ctx context.Context) ([]models.Spot, error) {
	var spots []models.Spot
	err := s.db.View(ctx, func(ctx context.Context, uow *storage.UnitOfWork) error {
		var err error
		spots, err = uow.Spots().List(ctx)
		return err
	})
	return spots, err
}

// GetSpot returns a spot, or nil if it does not exist.
func (s *Service) GetSpot(ctx context.Context, id string) (*models.Spot, error) {
	var spot *models.Spot
	err := s.db.View(ctx, func(ctx context.Context, uow *storage.UnitOfWork) error {
		var err error
		spot, err = uow.Spots().Get(ctx, id)
		return err
	})
	return spot, err
}

// ListVehicles returns every registered vehicle ordered by plate.
func (s *Service) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := s.db.View(ctx, func(ctx context.Context, uow *storage.UnitOfWork) error {
		var err error
		vehicles, err = uow.Vehicles().List(ctx)
		return err
	})
	return vehicles, err
}

// GetVehicle returns a vehicle by plate, or nil if it is not registered.
func (s *Service) GetVehicle(ctx context.Context, plate string) (*models.Vehicle, error) {
	var vehicle *models.Vehicle
	err := s.db.View(ctx, func(ctx context.Context, uow *storage.UnitOfWork) error {
		var err error
		vehicle, err = uow.Vehicles().Get(ctx, models.NormalizePlate(plate))
		return err
	})
	return vehicle, err
}

// AuthorizedVehicles returns the vehicles allowed to use a spot.
func (s *Service) AuthorizedVehicles(ctx context.Context, spotID string) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := s.db.View(ctx, func(ctx context.Context, uow *storage.UnitOfWork) error {
		var err error
		vehicles, err = uow.Vehicles().FindByAllowedSpot(ctx, spotID)
		return err
	})
	return vehicles, err
}

// ListLogs returns audit entries newest first. When spotID is set only
// that spot's entries are returned, oldest first.
func (s *Service) ListLogs(ctx context.Context, spotID string, limit int) ([]models.TransactionLog, error) {
	var entries []models.TransactionLog
	err := s.db.View(ctx, func(ctx context.Context, uow *storage.UnitOfWork) error {
		var err error
		if spotID != "" {
			entries, err = uow.Logs().ListBySpot(ctx, spotID)
			return err
		}
		entries, err = uow.Logs().List(ctx, limit)
		return err
	})
	return entries, err
}

// Summary counts spots per status and registered vehicles from a single
// consistent snapshot.
func (s *Service) Summary(ctx context.Context) (models.OccupancySummary, error) {
	var summary models.OccupancySummary
	err := s.db.View(ctx, func(ctx context.Context, uow *storage.UnitOfWork) error {
		counts, err := uow.Spots().CountByStatus(ctx)
		if err != nil {
			return err
		}
		vehicles, err := uow.Vehicles().Count(ctx)
		if err != nil {
			return err
		}

		summary = models.OccupancySummary{
			Free:     counts[models.SpotStatusFree],
			Occupied: counts[models.SpotStatusOccupied],
			Visitor:  counts[models.SpotStatusVisitor],
			Vehicles: vehicles,
		}
		summary.Total = summary.Free + summary.Occupied + summary.Visitor
		return nil
	})
	return summary, err
}

// Dashboard loads spots and vehicles from one snapshot for search views.
func (s *Service) Dashboard(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.db.View(ctx, func(ctx context.Context, uow *storage.UnitOfWork) error {
		var err error
		if snap.Spots, err = uow.Spots().List(ctx); err != nil {
			return err
		}
		snap.Vehicles, err = uow.Vehicles().List(ctx)
		return err
	})
	return snap, err
}
