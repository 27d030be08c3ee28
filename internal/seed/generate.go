package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/smart-park/backend/internal/storage"
	"github.com/smart-park/backend/internal/storage/models"
)

// Lot is a generated set of spots and vehicles.
type Lot struct {
	Spots    []models.Spot
	Vehicles []models.Vehicle
}

// Generate builds a lot from layout. Spots are laid out row by row, all
// free; each vehicle is allowed one spot, or two distinct spots at
// SecondSpotRate.
func Generate(layout Layout, rng *rand.Rand) Lot {
	lot := Lot{
		Spots:    make([]models.Spot, 0, layout.TotalSpots),
		Vehicles: make([]models.Vehicle, 0, layout.TotalVehicles),
	}

	for n := 0; n < layout.TotalSpots; n++ {
		row, col := n/layout.ColumnsPerRow, n%layout.ColumnsPerRow+1

		spotType := models.SpotTypeNormal
		if layout.DoubleEvery > 0 && col%layout.DoubleEvery == 0 {
			spotType = models.SpotTypeDouble
		}

		office := rng.Intn(layout.Offices) + 1
		offices := []string{layout.office(office)}
		if rng.Float64() < layout.SharedOfficeRate {
			offices = append(offices, layout.office(office+1))
		}

		id := fmt.Sprintf("%s%d", RowLabel(row), col)
		lot.Spots = append(lot.Spots, models.NewFreeSpot(id, spotType, offices...))
	}

	if len(lot.Spots) == 0 {
		return lot
	}

	for i := 1; i <= layout.TotalVehicles; i++ {
		allowed := []string{lot.Spots[rng.Intn(len(lot.Spots))].ID}
		if len(lot.Spots) > 1 && rng.Float64() < layout.SecondSpotRate {
			for {
				id := lot.Spots[rng.Intn(len(lot.Spots))].ID
				if id != allowed[0] {
					allowed = append(allowed, id)
					break
				}
			}
		}

		lot.Vehicles = append(lot.Vehicles, models.Vehicle{
			Plate:        fmt.Sprintf("%s-%03d", layout.PlatePrefix, i),
			Office:       layout.office(rng.Intn(layout.Offices) + 1),
			AllowedSpots: allowed,
		})
	}

	return lot
}

func (l Layout) office(n int) string {
	return fmt.Sprintf("%s %d", l.OfficePrefix, n)
}

// RowLabel returns the letters for a zero based row index: A..Z, then
// AA, AB and so on.
func RowLabel(row int) string {
	label := ""
	for row >= 0 {
		label = string(rune('A'+row%26)) + label
		row = row/26 - 1
	}
	return label
}

// Populate returns a store populate hook that writes a freshly generated lot.
func Populate(layout Layout) storage.PopulateFunc {
	return func(ctx context.Context, uow *storage.UnitOfWork) error {
		lot := Generate(layout, rand.New(rand.NewSource(time.Now().UnixNano())))
		return lot.Write(ctx, uow)
	}
}

// Write adds the lot's spots and vehicles through uow.
func (lot Lot) Write(ctx context.Context, uow *storage.UnitOfWork) error {
	spots := uow.Spots()
	for i := range lot.Spots {
		if err := spots.Add(ctx, &lot.Spots[i]); err != nil {
			return fmt.Errorf("seeding spot %s: %w", lot.Spots[i].ID, err)
		}
	}

	vehicles := uow.Vehicles()
	for i := range lot.Vehicles {
		if err := vehicles.Put(ctx, &lot.Vehicles[i]); err != nil {
			return fmt.Errorf("seeding vehicle %s: %w", lot.Vehicles[i].Plate, err)
		}
	}
	return nil
}
