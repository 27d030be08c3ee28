// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"net/http"

	"github.com/smart-park/backend/internal/api/middleware"
	"github.com/smart-park/backend/internal/parking"
	"github.com/smart-park/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(svc *parking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := svc.DB().PingContext(r.Context()) == nil

		status := "healthy"
		code := http.StatusOK
		if !dbConnected {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		writeJSON(w, code, HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		})
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	Spots            int `json:"spots"`
	Free             int `json:"free"`
	Occupied         int `json:"occupied"`
	Visitor          int `json:"visitor"`
	Vehicles         int `json:"vehicles"`
	WebSocketClients int `json:"websocket_clients"`
}

// Status returns a handler that provides occupancy and connection counts.
func Status(svc *parking.Service, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load status")
			return
		}

		response := StatusResponse{
			Spots:    summary.Total,
			Free:     summary.Free,
			Occupied: summary.Occupied,
			Visitor:  summary.Visitor,
			Vehicles: summary.Vehicles,
		}
		if hub != nil {
			response.WebSocketClients = hub.ClientCount()
		}

		writeJSON(w, http.StatusOK, response)
	}
}
