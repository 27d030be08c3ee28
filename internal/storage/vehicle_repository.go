package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/smart-park/backend/internal/storage/models"
)

// VehicleRepository provides data access for registered vehicles.
//
// A vehicle's allowed spots are kept in vehicle_allowed_spots, one row per
// entry, which serves as the multi-value index from spot ID to vehicles.
type VehicleRepository struct {
	BaseRepository
}

// Get retrieves a vehicle by plate. It returns nil without error when the
// vehicle does not exist.
func (r *VehicleRepository) Get(ctx context.Context, plate string) (*models.Vehicle, error) {
	if err := r.canRead(); err != nil {
		return nil, err
	}

	v := &models.Vehicle{}
	err := r.db().QueryRowContext(ctx, `
		SELECT plate, office FROM vehicles WHERE plate = ?
	`, plate).Scan(&v.Plate, &v.Office)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying vehicle: %w", err)
	}

	spots, err := r.allowedSpots(ctx, []string{v.Plate})
	if err != nil {
		return nil, err
	}
	v.AllowedSpots = nonNil(spots[v.Plate])

	return v, nil
}

// List retrieves all vehicles ordered by plate.
func (r *VehicleRepository) List(ctx context.Context) ([]models.Vehicle, error) {
	return r.query(ctx, `SELECT plate, office FROM vehicles ORDER BY plate`)
}

// FindByAllowedSpot retrieves every vehicle whose allowed spots include spotID.
func (r *VehicleRepository) FindByAllowedSpot(ctx context.Context, spotID string) ([]models.Vehicle, error) {
	return r.query(ctx, `
		SELECT plate, office FROM vehicles
		WHERE plate IN (SELECT plate FROM vehicle_allowed_spots WHERE spot_id = ?)
		ORDER BY plate
	`, spotID)
}

// Count returns the number of registered vehicles.
func (r *VehicleRepository) Count(ctx context.Context) (int, error) {
	if err := r.canRead(); err != nil {
		return 0, err
	}

	var n int
	if err := r.db().QueryRowContext(ctx, "SELECT COUNT(*) FROM vehicles").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting vehicles: %w", err)
	}
	return n, nil
}

// Put creates or replaces a vehicle and rewrites its allowed-spot entries.
func (r *VehicleRepository) Put(ctx context.Context, v *models.Vehicle) error {
	if err := r.canWrite(); err != nil {
		return err
	}

	_, err := r.db().ExecContext(ctx, `
		INSERT INTO vehicles (plate, office) VALUES (?, ?)
		ON CONFLICT(plate) DO UPDATE SET office = excluded.office
	`, v.Plate, v.Office)
	if err != nil {
		return fmt.Errorf("writing vehicle %s: %w", v.Plate, err)
	}

	if _, err := r.db().ExecContext(ctx, "DELETE FROM vehicle_allowed_spots WHERE plate = ?", v.Plate); err != nil {
		return fmt.Errorf("clearing allowed spots: %w", err)
	}

	for i, spotID := range v.AllowedSpots {
		_, err := r.db().ExecContext(ctx, `
			INSERT INTO vehicle_allowed_spots (plate, position, spot_id) VALUES (?, ?, ?)
		`, v.Plate, i, spotID)
		if err != nil {
			return fmt.Errorf("inserting allowed spot: %w", err)
		}
	}

	r.wrote()
	return nil
}

// Delete removes a vehicle by plate. Deleting a missing vehicle is not an error.
func (r *VehicleRepository) Delete(ctx context.Context, plate string) error {
	if err := r.canWrite(); err != nil {
		return err
	}

	// vehicle_allowed_spots rows go with it through ON DELETE CASCADE.
	result, err := r.db().ExecContext(ctx, "DELETE FROM vehicles WHERE plate = ?", plate)
	if err != nil {
		return fmt.Errorf("deleting vehicle: %w", err)
	}

	if n, _ := result.RowsAffected(); n > 0 {
		r.wrote()
	}
	return nil
}

// DeleteMany removes all vehicles with the given plates.
func (r *VehicleRepository) DeleteMany(ctx context.Context, plates []string) error {
	for _, plate := range plates {
		if err := r.Delete(ctx, plate); err != nil {
			return err
		}
	}
	return nil
}

func (r *VehicleRepository) query(ctx context.Context, query string, args ...any) ([]models.Vehicle, error) {
	if err := r.canRead(); err != nil {
		return nil, err
	}

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying vehicles: %w", err)
	}

	vehicles := []models.Vehicle{}
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.Plate, &v.Office); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating vehicles: %w", err)
	}
	// Close before the next query; a transaction runs on a single connection.
	rows.Close()

	if len(vehicles) == 0 {
		return vehicles, nil
	}

	plates := make([]string, len(vehicles))
	for i, v := range vehicles {
		plates[i] = v.Plate
	}
	spots, err := r.allowedSpots(ctx, plates)
	if err != nil {
		return nil, err
	}
	for i := range vehicles {
		vehicles[i].AllowedSpots = nonNil(spots[vehicles[i].Plate])
	}

	return vehicles, nil
}

// allowedSpots loads the allowed spot lists for the given plates, keyed by
// plate and ordered by position.
func (r *VehicleRepository) allowedSpots(ctx context.Context, plates []string) (map[string][]string, error) {
	out := make(map[string][]string, len(plates))

	// Stay well below SQLite's bound parameter limit.
	const batch = 500
	for start := 0; start < len(plates); start += batch {
		end := start + batch
		if end > len(plates) {
			end = len(plates)
		}
		chunk := plates[start:end]

		args := make([]any, len(chunk))
		for i, p := range chunk {
			args[i] = p
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")

		rows, err := r.db().QueryContext(ctx, `
			SELECT plate, spot_id FROM vehicle_allowed_spots
			WHERE plate IN (`+placeholders+`)
			ORDER BY plate, position
		`, args...)
		if err != nil {
			return nil, fmt.Errorf("querying allowed spots: %w", err)
		}

		for rows.Next() {
			var plate, spotID string
			if err := rows.Scan(&plate, &spotID); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning allowed spot: %w", err)
			}
			out[plate] = append(out[plate], spotID)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterating allowed spots: %w", err)
		}
	}

	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
