package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/smart-park/backend/internal/storage/models"
)

const spotColumns = `id, status, type, assigned_offices, vehicle_plate, visitor_name, occupied_at`

// SpotRepository provides data access for parking spots.
type SpotRepository struct {
	BaseRepository
}

// Get retrieves a spot by its ID. It returns nil without error when the
// spot does not exist.
func (r *SpotRepository) Get(ctx context.Context, id string) (*models.Spot, error) {
	if err := r.canRead(); err != nil {
		return nil, err
	}

	row := r.db().QueryRowContext(ctx, `SELECT `+spotColumns+` FROM spots WHERE id = ?`, id)
	spot, err := scanSpot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying spot: %w", err)
	}

	return spot, nil
}

// List retrieves all spots ordered by ID.
func (r *SpotRepository) List(ctx context.Context) ([]models.Spot, error) {
	return r.query(ctx, `SELECT `+spotColumns+` FROM spots ORDER BY id`)
}

// FindByStatus retrieves all spots in the given status.
func (r *SpotRepository) FindByStatus(ctx context.Context, status models.SpotStatus) ([]models.Spot, error) {
	return r.query(ctx, `SELECT `+spotColumns+` FROM spots WHERE status = ? ORDER BY id`, string(status))
}

// FindByPlate retrieves the spots currently held by plate (exact match).
func (r *SpotRepository) FindByPlate(ctx context.Context, plate string) ([]models.Spot, error) {
	return r.query(ctx, `SELECT `+spotColumns+` FROM spots WHERE vehicle_plate = ? ORDER BY id`, plate)
}

// Add inserts a new spot. It fails with ErrDuplicateKey if the ID exists.
func (r *SpotRepository) Add(ctx context.Context, spot *models.Spot) error {
	if err := r.canWrite(); err != nil {
		return err
	}

	args, err := spotArgs(spot)
	if err != nil {
		return err
	}

	_, err = r.db().ExecContext(ctx, `
		INSERT INTO spots (`+spotColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, args...)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("inserting spot %s: %w", spot.ID, ErrDuplicateKey)
		}
		return fmt.Errorf("inserting spot: %w", err)
	}

	r.wrote()
	return nil
}

// Put creates or fully replaces a spot. Fields absent from spot are
// cleared in the stored record.
func (r *SpotRepository) Put(ctx context.Context, spot *models.Spot) error {
	if err := r.canWrite(); err != nil {
		return err
	}

	args, err := spotArgs(spot)
	if err != nil {
		return err
	}

	_, err = r.db().ExecContext(ctx, `
		INSERT INTO spots (`+spotColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			type = excluded.type,
			assigned_offices = excluded.assigned_offices,
			vehicle_plate = excluded.vehicle_plate,
			visitor_name = excluded.visitor_name,
			occupied_at = excluded.occupied_at
	`, args...)
	if err != nil {
		return fmt.Errorf("writing spot %s: %w", spot.ID, err)
	}

	r.wrote()
	return nil
}

// Delete removes a spot by ID. Deleting a missing spot is not an error.
func (r *SpotRepository) Delete(ctx context.Context, id string) error {
	if err := r.canWrite(); err != nil {
		return err
	}

	result, err := r.db().ExecContext(ctx, "DELETE FROM spots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting spot: %w", err)
	}

	if n, _ := result.RowsAffected(); n > 0 {
		r.wrote()
	}
	return nil
}

// CountByStatus returns the number of spots per status.
func (r *SpotRepository) CountByStatus(ctx context.Context) (map[models.SpotStatus]int, error) {
	if err := r.canRead(); err != nil {
		return nil, err
	}

	rows, err := r.db().QueryContext(ctx, `SELECT status, COUNT(*) FROM spots GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting spots: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.SpotStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning spot count: %w", err)
		}
		counts[models.SpotStatus(status)] = n
	}

	return counts, rows.Err()
}

func (r *SpotRepository) query(ctx context.Context, query string, args ...any) ([]models.Spot, error) {
	if err := r.canRead(); err != nil {
		return nil, err
	}

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying spots: %w", err)
	}
	defer rows.Close()

	spots := []models.Spot{}
	for rows.Next() {
		spot, err := scanSpot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning spot: %w", err)
		}
		spots = append(spots, *spot)
	}

	return spots, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSpot(row rowScanner) (*models.Spot, error) {
	var (
		spot        models.Spot
		status      string
		spotType    string
		offices     sql.NullString
		plate       sql.NullString
		visitorName sql.NullString
		occupiedAt  sql.NullInt64
	)

	if err := row.Scan(&spot.ID, &status, &spotType, &offices, &plate, &visitorName, &occupiedAt); err != nil {
		return nil, err
	}

	spot.Status = models.SpotStatus(status)
	spot.Type = models.SpotType(spotType)
	spot.VehiclePlate = plate.String
	spot.VisitorName = visitorName.String
	if occupiedAt.Valid {
		t := time.UnixMilli(occupiedAt.Int64).UTC()
		spot.Timestamp = &t
	}
	if offices.Valid && offices.String != "" {
		if err := json.Unmarshal([]byte(offices.String), &spot.AssignedOffices); err != nil {
			return nil, fmt.Errorf("decoding assigned offices: %w", err)
		}
	}

	return &spot, nil
}

func spotArgs(spot *models.Spot) ([]any, error) {
	var offices any
	if len(spot.AssignedOffices) > 0 {
		b, err := json.Marshal(spot.AssignedOffices)
		if err != nil {
			return nil, fmt.Errorf("encoding assigned offices: %w", err)
		}
		offices = string(b)
	}

	var occupiedAt any
	if spot.Timestamp != nil {
		occupiedAt = spot.Timestamp.UnixMilli()
	}

	return []any{
		spot.ID,
		string(spot.Status),
		string(spot.Type),
		offices,
		nullString(spot.VehiclePlate),
		nullString(spot.VisitorName),
		occupiedAt,
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
