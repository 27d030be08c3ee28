package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/smart-park/backend/internal/api/middleware"
	"github.com/smart-park/backend/internal/parking"
	"github.com/smart-park/backend/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeServiceError maps parking and storage errors to API error responses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, parking.ErrSpotNotFound), errors.Is(err, parking.ErrVehicleNotFound):
		middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, err.Error())
	case errors.Is(err, parking.ErrSpotNotFree), errors.Is(err, storage.ErrDuplicateKey):
		middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, err.Error())
	case errors.Is(err, parking.ErrInvalidInput):
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
	default:
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "An unexpected error occurred")
	}
}
