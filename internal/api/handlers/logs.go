package handlers

import (
	"net/http"
	"strconv"

	"github.com/smart-park/backend/internal/api/middleware"
	"github.com/smart-park/backend/internal/parking"
)

const defaultLogLimit = 100

// ListLogs returns audit log entries. spot narrows the list to one spot;
// limit caps the number of recent entries otherwise.
func ListLogs(svc *parking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		limit := defaultLogLimit
		if raw := q.Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "limit must be a non-negative integer")
				return
			}
			limit = n
		}

		entries, err := svc.ListLogs(r.Context(), q.Get("spot"), limit)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// Search runs the dashboard search over vehicles and offices.
func Search(svc *parking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.Dashboard(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap.Search(r.URL.Query().Get("q")))
	}
}
