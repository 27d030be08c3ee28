package parking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smart-park/backend/internal/storage/models"
)

func searchFixture() Snapshot {
	occupied := models.NewFreeSpot("B2", models.SpotTypeNormal, "Oficina 2")
	occupied.Status = models.SpotStatusOccupied
	occupied.VehiclePlate = "XYZ789"

	return Snapshot{
		Spots: []models.Spot{
			models.NewFreeSpot("A1", models.SpotTypeNormal, "Oficina 1"),
			occupied,
			models.NewFreeSpot("C3", models.SpotTypeDouble, "Oficina 10", "Oficina 2"),
			models.NewFreeSpot("D4", models.SpotTypeNormal, "Recepcion"),
		},
		Vehicles: []models.Vehicle{
			{Plate: "ABC123", Office: "Oficina 10", AllowedSpots: []string{"C3"}},
			{Plate: "XYZ789", Office: "Oficina 2", AllowedSpots: []string{"B2"}},
			{Plate: "ABD555", Office: "Oficina 1", AllowedSpots: []string{"A1"}},
		},
	}
}

func TestSnapshotSearchShortTerm(t *testing.T) {
	snap := searchFixture()
	for _, term := range []string{"", " ", "a", " b "} {
		result := snap.Search(term)
		assert.Empty(t, result.Vehicles, "term %q", term)
		assert.Empty(t, result.Offices, "term %q", term)
		assert.NotNil(t, result.Vehicles)
		assert.NotNil(t, result.Offices)
	}
}

func TestSnapshotSearchPlates(t *testing.T) {
	result := searchFixture().Search("ab")

	plates := make([]string, len(result.Vehicles))
	for i, v := range result.Vehicles {
		plates[i] = v.Plate
	}
	assert.Equal(t, []string{"ABC123", "ABD555"}, plates)
	assert.Empty(t, result.Offices)
}

func TestSnapshotSearchOffices(t *testing.T) {
	result := searchFixture().Search("oficina 2")
	assert.Empty(t, result.Vehicles)

	require.Len(t, result.Offices, 1)
	office := result.Offices[0]
	assert.Equal(t, "Oficina 2", office.Name)
	require.Len(t, office.Vehicles, 1)
	assert.Equal(t, "XYZ789", office.Vehicles[0].Plate)

	ids := make([]string, len(office.Spots))
	for i, s := range office.Spots {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"B2", "C3"}, ids)
}

func TestSnapshotSearchOfficeOnlyOnSpots(t *testing.T) {
	result := searchFixture().Search("RECEP")
	require.Len(t, result.Offices, 1)
	assert.Equal(t, "Recepcion", result.Offices[0].Name)
	assert.Empty(t, result.Offices[0].Vehicles)
	assert.Len(t, result.Offices[0].Spots, 1)
}

func TestFilterSpots(t *testing.T) {
	spots := searchFixture().Spots

	ids := func(in []models.Spot) []string {
		out := make([]string, len(in))
		for i, s := range in {
			out[i] = s.ID
		}
		return out
	}

	assert.Equal(t, []string{"A1", "B2", "C3", "D4"}, ids(FilterSpots(spots, "")))
	assert.Equal(t, []string{"C3"}, ids(FilterSpots(spots, "c3")))
	assert.Equal(t, []string{"B2"}, ids(FilterSpots(spots, "xyz")))
	assert.Equal(t, []string{"B2", "C3"}, ids(FilterSpots(spots, "oficina 2")))
	assert.Empty(t, FilterSpots(spots, "nothing"))
}

func TestFilterVehiclesSortsByOfficeNumber(t *testing.T) {
	vehicles := searchFixture().Vehicles

	got := FilterVehicles(vehicles, "")
	offices := make([]string, len(got))
	for i, v := range got {
		offices[i] = v.Office
	}
	assert.Equal(t, []string{"Oficina 1", "Oficina 2", "Oficina 10"}, offices)

	got = FilterVehicles(vehicles, "abc")
	require.Len(t, got, 1)
	assert.Equal(t, "ABC123", got[0].Plate)
}

func TestServiceSummaryAndDashboard(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	seedSpots(t, svc,
		models.NewFreeSpot("A1", models.SpotTypeNormal, "Oficina 1"),
		models.NewFreeSpot("A2", models.SpotTypeNormal, "Oficina 1"),
		models.NewFreeSpot("A3", models.SpotTypeNormal, "Oficina 2"),
	)
	seedVehicles(t, svc, models.Vehicle{Plate: "ONE", Office: "Oficina 1", AllowedSpots: []string{"A1"}})

	require.NoError(t, svc.OccupySpot(ctx, "A1", "ONE", false, ""))
	require.NoError(t, svc.OccupySpot(ctx, "A2", "GUEST", true, "Pat"))

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.OccupancySummary{Total: 3, Free: 1, Occupied: 1, Visitor: 1, Vehicles: 1}, summary)
	assert.Equal(t, 2, summary.Taken())

	snap, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	result := snap.Search("oficina 1")
	require.Len(t, result.Offices, 1)
	assert.Len(t, result.Offices[0].Spots, 2)
}
