package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const populatedKey = "populated"

// PopulateFunc fills a freshly created store with initial records.
type PopulateFunc func(ctx context.Context, uow *UnitOfWork) error

// OnPopulate registers fn to run the first time the store is created.
// Hooks must be registered before RunMigrations.
func (db *DB) OnPopulate(fn PopulateFunc) {
	db.hooksMu.Lock()
	defer db.hooksMu.Unlock()
	db.populateHooks = append(db.populateHooks, fn)
}

// RunMigrations executes all pending database migrations and then, for a
// store that has never been populated, the registered populate hooks.
// Migrations are SQL files in the migrations/ directory, named with a numeric prefix.
func RunMigrations(ctx context.Context, db *DB, logger *zap.Logger) error {
	// Create migrations tracking table
	if err := createMigrationsTable(ctx, db.DB); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	// Get applied migrations
	applied, err := getAppliedMigrations(ctx, db.DB)
	if err != nil {
		return fmt.Errorf("getting applied migrations: %w", err)
	}

	// Get available migrations
	migrations, err := getMigrationFiles()
	if err != nil {
		return fmt.Errorf("reading migration files: %w", err)
	}

	// Apply pending migrations in order
	for _, m := range migrations {
		if applied[m.Name] {
			continue
		}

		logger.Info("Applying migration", zap.String("migration", m.Name))
		if err := applyMigration(ctx, db.DB, m); err != nil {
			return fmt.Errorf("applying migration %s: %w", m.Name, err)
		}
	}

	return populate(ctx, db, logger)
}

// populate runs the populate hooks and records the marker in one unit, so
// the hooks either all take effect exactly once or not at all.
func populate(ctx context.Context, db *DB, logger *zap.Logger) error {
	db.hooksMu.Lock()
	hooks := append([]PopulateFunc(nil), db.populateHooks...)
	db.hooksMu.Unlock()

	ran := false
	err := db.Update(ctx, AllCollections, func(ctx context.Context, uow *UnitOfWork) error {
		var value string
		err := uow.tx.QueryRowContext(ctx, "SELECT value FROM _store_meta WHERE key = ?", populatedKey).Scan(&value)
		if err == nil {
			return nil
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("reading store metadata: %w", err)
		}

		for _, hook := range hooks {
			if err := hook(ctx, uow); err != nil {
				return err
			}
		}

		if _, err := uow.tx.ExecContext(ctx, "INSERT INTO _store_meta (key, value) VALUES (?, datetime('now'))", populatedKey); err != nil {
			return fmt.Errorf("recording populate marker: %w", err)
		}
		ran = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("populating store: %w", err)
	}

	if ran {
		logger.Info("Store populated", zap.Int("hooks", len(hooks)))
	}
	return nil
}

type migration struct {
	Name    string
	Content string
}

func createMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS _migrations (
			name TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func getAppliedMigrations(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM _migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}

	return applied, rows.Err()
}

func getMigrationFiles() ([]migration, error) {
	var migrations []migration

	err := fs.WalkDir(migrationsFS, "migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}

		content, err := migrationsFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		migrations = append(migrations, migration{
			Name:    filepath.Base(path),
			Content: string(content),
		})

		return nil
	})

	if err != nil {
		return nil, err
	}

	// Sort by filename (numeric prefix ensures correct order)
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Name < migrations[j].Name
	})

	return migrations, nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Execute migration SQL
	if _, err := tx.ExecContext(ctx, m.Content); err != nil {
		return fmt.Errorf("executing SQL: %w", err)
	}

	// Record migration
	if _, err := tx.ExecContext(ctx, "INSERT INTO _migrations (name) VALUES (?)", m.Name); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}

	return tx.Commit()
}
