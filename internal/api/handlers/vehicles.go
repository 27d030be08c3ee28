package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/smart-park/backend/internal/api/middleware"
	"github.com/smart-park/backend/internal/parking"
)

// ListVehicles returns registered vehicles filtered by q and sorted by office.
func ListVehicles(svc *parking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicles, err := svc.ListVehicles(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, parking.FilterVehicles(vehicles, r.URL.Query().Get("q")))
	}
}

// GetVehicle returns a vehicle by plate.
func GetVehicle(svc *parking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicle, err := svc.GetVehicle(r.Context(), mux.Vars(r)["plate"])
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if vehicle == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Vehicle not found")
			return
		}
		writeJSON(w, http.StatusOK, vehicle)
	}
}

// PutVehicle registers or replaces the vehicle named in the path.
func PutVehicle(svc *parking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req parking.VehicleInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		req.Plate = mux.Vars(r)["plate"]

		vehicle, err := svc.UpsertVehicle(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, vehicle)
	}
}

// DeleteVehicle removes a vehicle. Its spots are kept.
func DeleteVehicle(svc *parking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteVehicle(r.Context(), mux.Vars(r)["plate"]); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
