// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/smart-park/backend/internal/api/handlers"
	"github.com/smart-park/backend/internal/api/middleware"
	"github.com/smart-park/backend/internal/parking"
	"github.com/smart-park/backend/internal/websocket"
)

// NewRouter creates and configures the HTTP router with all API routes.
// An empty staticDir disables the frontend file server.
func NewRouter(svc *parking.Service, hub *websocket.Hub, staticDir string, logger *zap.Logger) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.ErrorRecovery(logger))

	// API subrouter
	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(svc)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(svc, hub)).Methods("GET")

	// WebSocket endpoint
	if hub != nil {
		api.HandleFunc("/ws", handlers.WebSocketUpgrade(hub, logger)).Methods("GET")
	}

	// Spot endpoints
	api.HandleFunc("/spots", handlers.ListSpots(svc)).Methods("GET")
	api.HandleFunc("/spots/delete", handlers.DeleteSpots(svc)).Methods("POST")
	api.HandleFunc("/spots/{id}", handlers.GetSpot(svc)).Methods("GET")
	api.HandleFunc("/spots/{id}/occupy", handlers.OccupySpot(svc)).Methods("POST")
	api.HandleFunc("/spots/{id}/free", handlers.FreeSpot(svc)).Methods("POST")
	api.HandleFunc("/spots/{id}/vehicles", handlers.GetSpotVehicles(svc)).Methods("GET")

	// Vehicle endpoints
	api.HandleFunc("/vehicles", handlers.ListVehicles(svc)).Methods("GET")
	api.HandleFunc("/vehicles/{plate}", handlers.GetVehicle(svc)).Methods("GET")
	api.HandleFunc("/vehicles/{plate}", handlers.PutVehicle(svc)).Methods("PUT")
	api.HandleFunc("/vehicles/{plate}", handlers.DeleteVehicle(svc)).Methods("DELETE")

	// Audit log and search
	api.HandleFunc("/logs", handlers.ListLogs(svc)).Methods("GET")
	api.HandleFunc("/search", handlers.Search(svc)).Methods("GET")

	// Serve static frontend files
	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}

	return r
}
