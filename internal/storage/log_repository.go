package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/smart-park/backend/internal/storage/models"
)

// LogRepository is the append-only audit log of occupy and free actions.
type LogRepository struct {
	BaseRepository
}

// Append writes a new entry and sets its ID.
func (r *LogRepository) Append(ctx context.Context, entry *models.TransactionLog) error {
	if err := r.canWrite(); err != nil {
		return err
	}

	result, err := r.db().ExecContext(ctx, `
		INSERT INTO transaction_logs (action, spot_id, plate, timestamp)
		VALUES (?, ?, ?, ?)
	`, string(entry.Action), entry.SpotID, nullString(entry.Plate), entry.TimestampMillis())
	if err != nil {
		return fmt.Errorf("appending log entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading log entry id: %w", err)
	}
	entry.ID = id

	r.wrote()
	return nil
}

// List returns the most recent entries, newest first. A limit of zero or
// less returns every entry.
func (r *LogRepository) List(ctx context.Context, limit int) ([]models.TransactionLog, error) {
	if limit <= 0 {
		limit = -1
	}
	return r.query(ctx, `
		SELECT id, action, spot_id, plate, timestamp FROM transaction_logs
		ORDER BY id DESC LIMIT ?
	`, limit)
}

// ListBySpot returns all entries for a spot in append order.
func (r *LogRepository) ListBySpot(ctx context.Context, spotID string) ([]models.TransactionLog, error) {
	return r.query(ctx, `
		SELECT id, action, spot_id, plate, timestamp FROM transaction_logs
		WHERE spot_id = ?
		ORDER BY id
	`, spotID)
}

// ListSince returns entries stamped at or after since, in append order.
func (r *LogRepository) ListSince(ctx context.Context, since time.Time) ([]models.TransactionLog, error) {
	return r.query(ctx, `
		SELECT id, action, spot_id, plate, timestamp FROM transaction_logs
		WHERE timestamp >= ?
		ORDER BY id
	`, since.UnixMilli())
}

func (r *LogRepository) query(ctx context.Context, query string, args ...any) ([]models.TransactionLog, error) {
	if err := r.canRead(); err != nil {
		return nil, err
	}

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying log entries: %w", err)
	}
	defer rows.Close()

	entries := []models.TransactionLog{}
	for rows.Next() {
		var (
			e      models.TransactionLog
			action string
			plate  sql.NullString
			ts     int64
		)
		if err := rows.Scan(&e.ID, &action, &e.SpotID, &plate, &ts); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		e.Action = models.LogAction(action)
		e.Plate = plate.String
		e.Timestamp = time.UnixMilli(ts).UTC()
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
