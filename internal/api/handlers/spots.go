package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/smart-park/backend/internal/api/middleware"
	"github.com/smart-park/backend/internal/parking"
)

// ListSpots returns all spots, filtered by the q query parameter.
func ListSpots(svc *parking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spots, err := svc.ListSpots(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, parking.FilterSpots(spots, r.URL.Query().Get("q")))
	}
}

// GetSpot returns a single spot.
func GetSpot(svc *parking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		spot, err := svc.GetSpot(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if spot == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Spot not found")
			return
		}

		writeJSON(w, http.StatusOK, spot)
	}
}

// OccupyRequest is the body of an occupy request.
type OccupyRequest struct {
	Plate       string `json:"plate"`
	IsVisitor   bool   `json:"is_visitor"`
	VisitorName string `json:"visitor_name"`
}

// OccupySpot assigns a spot to a registered vehicle or a visitor and
// returns the updated spot.
func OccupySpot(svc *parking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		ctx := r.Context()

		var req OccupyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if err := svc.Assign(ctx, id, req.Plate, req.IsVisitor, req.VisitorName); err != nil {
			writeServiceError(w, err)
			return
		}

		spot, err := svc.GetSpot(ctx, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, spot)
	}
}

// FreeSpot releases a spot and returns it.
func FreeSpot(svc *parking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		ctx := r.Context()

		if err := svc.FreeSpot(ctx, id); err != nil {
			writeServiceError(w, err)
			return
		}

		spot, err := svc.GetSpot(ctx, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, spot)
	}
}

// DeleteSpots deletes the listed spots and the vehicles authorized for them.
func DeleteSpots(svc *parking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs []string `json:"ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if len(req.IDs) == 0 {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "ids must not be empty")
			return
		}

		if err := svc.DeleteSpots(r.Context(), req.IDs); err != nil {
			writeServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// GetSpotVehicles returns the vehicles authorized to use a spot.
func GetSpotVehicles(svc *parking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicles, err := svc.AuthorizedVehicles(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, vehicles)
	}
}
