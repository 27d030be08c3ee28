package cli

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/smart-park/backend/internal/config"
	"github.com/smart-park/backend/internal/parking"
	"github.com/smart-park/backend/internal/seed"
	"github.com/smart-park/backend/internal/storage"
)

// app is an opened store with the parking service on top.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *storage.DB
	service *parking.Service
}

// newLogger builds the process logger.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openApp opens the store in the configured data directory, applying
// migrations and populating it on first use.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	layout, err := seed.LoadLayout(cfg.SeedFile)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %q: %w", cfg.DataDir, err)
	}

	db, err := storage.NewDB(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.OnPopulate(seed.Populate(layout))
	if err := storage.RunMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		service: parking.NewService(db, logger),
	}, nil
}

// Close closes the store and flushes the logger.
func (a *app) Close() error {
	err := a.db.Close()
	_ = a.logger.Sync()
	return err
}
