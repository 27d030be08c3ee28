package parking

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/smart-park/backend/internal/storage"
	"github.com/smart-park/backend/internal/storage/models"
)

var occupancyScope = storage.Scope{storage.CollectionSpots, storage.CollectionLogs}

// OccupySpot assigns a free spot to plate, or to a visitor when isVisitor
// is set. If the plate already holds another spot, that spot is released
// first and its release is logged. Re-occupying the spot the plate already
// holds is a no-op. A visitor occupancy requires a visitor name.
func (s *Service) OccupySpot(ctx context.Context, spotID, plate string, isVisitor bool, visitorName string) error {
	cleanPlate := models.NormalizePlate(plate)
	if cleanPlate == "" {
		return fmt.Errorf("%w: plate is required", ErrInvalidInput)
	}
	visitorName = strings.TrimSpace(visitorName)
	if isVisitor && visitorName == "" {
		return fmt.Errorf("%w: visitor name is required", ErrInvalidInput)
	}

	var (
		freed string
		noop  bool
	)
	err := s.db.Update(ctx, occupancyScope, func(ctx context.Context, uow *storage.UnitOfWork) error {
		spots := uow.Spots()
		logs := uow.Logs()

		target, err := spots.Get(ctx, spotID)
		if err != nil {
			return err
		}
		if target == nil {
			return fmt.Errorf("%w: %s", ErrSpotNotFound, spotID)
		}
		if !target.IsFree() && target.VehiclePlate == cleanPlate {
			noop = true
			return nil
		}

		status, err := transition(ctx, target.Status, occupyEvent(isVisitor))
		if err != nil {
			return fmt.Errorf("occupying %s: %w", spotID, err)
		}

		held, err := spots.FindByPlate(ctx, cleanPlate)
		if err != nil {
			return err
		}
		if len(held) > 0 {
			previous := held[0]
			released := previous.Released()
			if err := spots.Put(ctx, &released); err != nil {
				return err
			}
			if err := logs.Append(ctx, &models.TransactionLog{
				Action:    models.LogActionFree,
				SpotID:    previous.ID,
				Plate:     cleanPlate,
				Timestamp: s.now(),
			}); err != nil {
				return err
			}
			freed = previous.ID
		}

		now := s.now()
		occupied := models.Spot{
			ID:              target.ID,
			Status:          status,
			Type:            target.Type,
			AssignedOffices: target.AssignedOffices,
			VehiclePlate:    cleanPlate,
			Timestamp:       &now,
		}
		if isVisitor {
			occupied.VisitorName = visitorName
		}
		if err := spots.Put(ctx, &occupied); err != nil {
			return err
		}

		return logs.Append(ctx, &models.TransactionLog{
			Action:    models.LogActionOccupy,
			SpotID:    target.ID,
			Plate:     cleanPlate,
			Timestamp: s.now(),
		})
	})
	if err != nil {
		return err
	}
	if noop {
		s.logger.Debug("Spot already held by plate", zap.String("spot_id", spotID), zap.String("plate", cleanPlate))
		return nil
	}

	fields := []zap.Field{zap.String("spot_id", spotID), zap.String("plate", cleanPlate), zap.Bool("visitor", isVisitor)}
	if freed != "" {
		fields = append(fields, zap.String("released_spot_id", freed))
	}
	s.logger.Info("Spot occupied", fields...)
	return nil
}

// FreeSpot releases a spot, keeping only its identity, type and assigned
// offices, and logs the release with the previous occupant's plate.
func (s *Service) FreeSpot(ctx context.Context, spotID string) error {
	var previousPlate string
	err := s.db.Update(ctx, occupancyScope, func(ctx context.Context, uow *storage.UnitOfWork) error {
		spots := uow.Spots()

		spot, err := spots.Get(ctx, spotID)
		if err != nil {
			return err
		}
		if spot == nil {
			return fmt.Errorf("%w: %s", ErrSpotNotFound, spotID)
		}

		if _, err := transition(ctx, spot.Status, EventRelease); err != nil {
			return fmt.Errorf("freeing %s: %w", spotID, err)
		}

		released := spot.Released()
		if err := spots.Put(ctx, &released); err != nil {
			return err
		}

		previousPlate = spot.VehiclePlate
		return uow.Logs().Append(ctx, &models.TransactionLog{
			Action:    models.LogActionFree,
			SpotID:    spot.ID,
			Plate:     spot.VehiclePlate,
			Timestamp: s.now(),
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("Spot freed", zap.String("spot_id", spotID), zap.String("plate", previousPlate))
	return nil
}

// DeleteSpots deletes the given spots together with every vehicle
// authorized for any of them. All deletions commit as one unit.
func (s *Service) DeleteSpots(ctx context.Context, spotIDs []string) error {
	removedVehicles := 0
	err := s.db.Update(ctx, s.policy.Scope(storage.CollectionSpots), func(ctx context.Context, uow *storage.UnitOfWork) error {
		spots := uow.Spots()
		for _, id := range spotIDs {
			n, err := s.policy.Cascade(ctx, uow, storage.CollectionSpots, id)
			if err != nil {
				return err
			}
			removedVehicles += n

			if err := spots.Delete(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Spots deleted",
		zap.Strings("spot_ids", spotIDs),
		zap.Int("vehicles_removed", removedVehicles))
	return nil
}

// VehicleInput is an admin request to register or edit a vehicle.
type VehicleInput struct {
	Plate      string   `json:"plate"`
	Office     string   `json:"office"`
	Spots      []string `json:"spots"`
	DoubleSpot bool     `json:"double_spot"`
}

// ExpandSpotIDs normalizes raw spot identifiers and, for double spots,
// replaces each with its two sub-spot IDs.
func ExpandSpotIDs(raw []string, double bool) []string {
	out := make([]string, 0, len(raw)*2)
	for _, r := range raw {
		id := models.NormalizeSpotID(r)
		if id == "" {
			continue
		}
		if double {
			out = append(out, id+"-1", id+"-2")
			continue
		}
		out = append(out, id)
	}
	return out
}

// ParseSpotList splits a comma separated list of spot IDs.
func ParseSpotList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if id := models.NormalizeSpotID(part); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// UpsertVehicle registers or replaces a vehicle. Every allowed spot that
// does not exist yet is created as a free normal spot owned by the
// vehicle's office; existing spots are left untouched.
func (s *Service) UpsertVehicle(ctx context.Context, in VehicleInput) (*models.Vehicle, error) {
	plate := models.NormalizePlate(in.Plate)
	office := strings.TrimSpace(in.Office)
	if plate == "" || office == "" {
		return nil, fmt.Errorf("%w: plate and office are required", ErrInvalidInput)
	}

	vehicle := &models.Vehicle{
		Plate:        plate,
		Office:       office,
		AllowedSpots: ExpandSpotIDs(in.Spots, in.DoubleSpot),
	}

	created := 0
	scope := storage.Scope{storage.CollectionSpots, storage.CollectionVehicles}
	err := s.db.Update(ctx, scope, func(ctx context.Context, uow *storage.UnitOfWork) error {
		spots := uow.Spots()
		for _, id := range vehicle.AllowedSpots {
			existing, err := spots.Get(ctx, id)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}

			spot := models.NewFreeSpot(id, models.SpotTypeNormal, office)
			if err := spots.Add(ctx, &spot); err != nil {
				return err
			}
			created++
		}

		return uow.Vehicles().Put(ctx, vehicle)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Vehicle saved",
		zap.String("plate", plate),
		zap.Strings("allowed_spots", vehicle.AllowedSpots),
		zap.Int("spots_created", created))
	return vehicle, nil
}

// DeleteVehicle removes a vehicle. Spots are not affected.
func (s *Service) DeleteVehicle(ctx context.Context, plate string) error {
	plate = models.NormalizePlate(plate)
	err := s.db.Update(ctx, storage.Scope{storage.CollectionVehicles}, func(ctx context.Context, uow *storage.UnitOfWork) error {
		return uow.Vehicles().Delete(ctx, plate)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Vehicle deleted", zap.String("plate", plate))
	return nil
}

// Assign occupies a spot after checking that a non-visitor plate belongs
// to a registered vehicle.
func (s *Service) Assign(ctx context.Context, spotID, plate string, isVisitor bool, visitorName string) error {
	if models.NormalizePlate(plate) == "" {
		return fmt.Errorf("%w: plate is required", ErrInvalidInput)
	}
	if !isVisitor {
		v, err := s.GetVehicle(ctx, plate)
		if err != nil {
			return err
		}
		if v == nil {
			return fmt.Errorf("%w: %s", ErrVehicleNotFound, models.NormalizePlate(plate))
		}
	}
	return s.OccupySpot(ctx, spotID, plate, isVisitor, visitorName)
}
