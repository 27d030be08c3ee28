package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smart-park/backend/internal/api/handlers"
	"github.com/smart-park/backend/internal/api/middleware"
	"github.com/smart-park/backend/internal/parking"
	"github.com/smart-park/backend/internal/storage"
	"github.com/smart-park/backend/internal/storage/models"
	"github.com/smart-park/backend/internal/websocket"
)

type testServer struct {
	svc     *parking.Service
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	db, err := storage.NewDB(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	db.OnPopulate(func(ctx context.Context, uow *storage.UnitOfWork) error {
		for _, s := range []models.Spot{
			models.NewFreeSpot("A1", models.SpotTypeNormal, "Oficina 1"),
			models.NewFreeSpot("A2", models.SpotTypeNormal, "Oficina 2"),
			models.NewFreeSpot("A8", models.SpotTypeDouble, "Oficina 10"),
		} {
			if err := uow.Spots().Add(ctx, &s); err != nil {
				return err
			}
		}
		return uow.Vehicles().Put(ctx, &models.Vehicle{Plate: "REG1", Office: "Oficina 1", AllowedSpots: []string{"A1"}})
	})
	require.NoError(t, storage.RunMigrations(ctx, db, zap.NewNop()))

	svc := parking.NewService(db, zap.NewNop())
	return &testServer{
		svc:     svc,
		handler: NewRouter(svc, websocket.NewHub(zap.NewNop()), "", zap.NewNop()),
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestHealthAndStatus(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	rec = s.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[map[string]int](t, rec)
	assert.Equal(t, 3, status["spots"])
	assert.Equal(t, 3, status["free"])
	assert.Equal(t, 1, status["vehicles"])
}

func TestSpotEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/spots?q=oficina%201", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	spots := decode[[]models.Spot](t, rec)
	require.Len(t, spots, 2)
	assert.Equal(t, "A1", spots[0].ID)
	assert.Equal(t, "A8", spots[1].ID)

	rec = s.do(t, http.MethodGet, "/api/spots/ZZ", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/spots/A1/occupy", handlers.OccupyRequest{Plate: "reg1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	spot := decode[models.Spot](t, rec)
	assert.Equal(t, models.SpotStatusOccupied, spot.Status)
	assert.Equal(t, "REG1", spot.VehiclePlate)

	rec = s.do(t, http.MethodPost, "/api/spots/A1/occupy", handlers.OccupyRequest{Plate: "GUEST", IsVisitor: true, VisitorName: "Ana"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/spots/A2/occupy", handlers.OccupyRequest{Plate: "GUEST", IsVisitor: true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/spots/A2/occupy", handlers.OccupyRequest{Plate: "NOBODY"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, middleware.ErrNotFound, decode[middleware.ErrorResponse](t, rec).Error)

	rec = s.do(t, http.MethodPost, "/api/spots/A2/occupy", handlers.OccupyRequest{Plate: " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/spots/A1/free", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	freed := decode[models.Spot](t, rec)
	assert.True(t, freed.IsFree())

	rec = s.do(t, http.MethodGet, "/api/logs?spot=A1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decode[[]models.TransactionLog](t, rec)
	require.Len(t, logs, 2)
	assert.Equal(t, models.LogActionOccupy, logs[0].Action)
	assert.Equal(t, models.LogActionFree, logs[1].Action)

	rec = s.do(t, http.MethodGet, "/api/logs?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteSpotsEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/spots/A1/vehicles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Vehicle](t, rec), 1)

	rec = s.do(t, http.MethodPost, "/api/spots/delete", map[string][]string{"ids": {}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/spots/delete", map[string][]string{"ids": {"A1"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/vehicles/REG1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVehicleEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPut, "/api/vehicles/new1", map[string]any{
		"office":      "Oficina 2",
		"spots":       []string{"b3"},
		"double_spot": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	v := decode[models.Vehicle](t, rec)
	assert.Equal(t, "NEW1", v.Plate)
	assert.Equal(t, []string{"B3-1", "B3-2"}, v.AllowedSpots)

	rec = s.do(t, http.MethodGet, "/api/spots/B3-2", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/vehicles/new2", map[string]any{"spots": []string{"A1"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, middleware.ErrValidation, decode[middleware.ErrorResponse](t, rec).Error)

	rec = s.do(t, http.MethodGet, "/api/vehicles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	vehicles := decode[[]models.Vehicle](t, rec)
	require.Len(t, vehicles, 2)
	assert.Equal(t, "Oficina 1", vehicles[0].Office)
	assert.Equal(t, "Oficina 2", vehicles[1].Office)

	rec = s.do(t, http.MethodDelete, "/api/vehicles/new1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/vehicles?q=new", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Vehicle](t, rec))
}

func TestSearchEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/search?q=o", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	short := decode[parking.SearchResult](t, rec)
	assert.Empty(t, short.Vehicles)
	assert.Empty(t, short.Offices)

	rec = s.do(t, http.MethodGet, "/api/search?q=oficina%201", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode[parking.SearchResult](t, rec)

	names := make([]string, len(result.Offices))
	for i, o := range result.Offices {
		names[i] = o.Name
	}
	assert.ElementsMatch(t, []string{"Oficina 1", "Oficina 10"}, names)
}
