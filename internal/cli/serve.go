package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smart-park/backend/internal/api"
	"github.com/smart-park/backend/internal/live"
	"github.com/smart-park/backend/internal/scheduler"
	"github.com/smart-park/backend/internal/storage"
	"github.com/smart-park/backend/internal/storage/models"
	"github.com/smart-park/backend/internal/websocket"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr      string
	StaticDir string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and WebSocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.Config
			if cmd.Flags().Changed("addr") {
				cfg.Addr = opts.Addr
			}
			if cmd.Flags().Changed("static") {
				cfg.StaticDir = opts.StaticDir
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8099", "HTTP server address (env PARKING_ADDR)")
	cmd.Flags().StringVar(&opts.StaticDir, "static", "./static", "directory for static frontend files (env PARKING_STATIC_DIR)")

	return cmd
}

func serve(ctx context.Context, opts *ServeOptions) error {
	cfg := opts.Config

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	logger.Info("Starting Smart Park", zap.String("version", opts.version()), zap.String("db", cfg.DatabasePath()))

	// WebSocket hub and change feed
	hub := websocket.NewHub(logger)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	events := websocket.NewEventBroadcaster(hub, logger)
	unsubscribe := a.db.Subscribe(events.BroadcastStoreChanged)
	defer unsubscribe()

	// Occupancy counts follow every commit that touches spots or vehicles.
	occupancy := live.New[models.OccupancySummary](a.db, a.service.Summary, storage.CollectionSpots, storage.CollectionVehicles)
	occupancy.Subscribe(func(summary models.OccupancySummary, err error) {
		if err != nil {
			logger.Warn("Refreshing occupancy failed", zap.Error(err))
			return
		}
		events.BroadcastOccupancy(summary)
	})
	if err := occupancy.Start(ctx); err != nil {
		return fmt.Errorf("starting occupancy query: %w", err)
	}
	defer occupancy.Stop()

	hub.SetGreeting(func() (websocket.Message, bool) {
		summary, err := occupancy.Current()
		if err != nil {
			return websocket.Message{}, false
		}
		return websocket.OccupancyMessage(summary), true
	})

	// Background jobs
	jobs := scheduler.New(a.service, events, a.db, scheduler.Config{
		SnapshotInterval:   cfg.SnapshotInterval,
		CheckpointInterval: cfg.CheckpointInterval,
	}, logger)
	if err := jobs.Start(ctx); err != nil {
		logger.Warn("Failed to start scheduler", zap.Error(err))
	}
	defer jobs.Stop()

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.NewRouter(a.service, hub, cfg.StaticDir, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func (o *ServeOptions) version() string {
	if o.RootOptions != nil && o.RootOptions.Version != "" {
		return o.RootOptions.Version
	}
	return "dev"
}
