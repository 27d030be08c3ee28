package parking

import (
	"sort"
	"strconv"
	"strings"

	"github.com/smart-park/backend/internal/storage/models"
)

// MinSearchLength is the shortest term the dashboard search acts on.
const MinSearchLength = 2

// Snapshot is a consistent view of spots and vehicles.
type Snapshot struct {
	Spots    []models.Spot    `json:"spots"`
	Vehicles []models.Vehicle `json:"vehicles"`
}

// OfficeResult groups an office with its vehicles and spots.
type OfficeResult struct {
	Name     string           `json:"name"`
	Vehicles []models.Vehicle `json:"vehicles"`
	Spots    []models.Spot    `json:"spots"`
}

// SearchResult is the outcome of a dashboard search.
type SearchResult struct {
	Vehicles []models.Vehicle `json:"vehicles"`
	Offices  []OfficeResult   `json:"offices"`
}

// Search finds vehicles whose plate contains term and offices, named by
// vehicles or spots, whose name contains term. Terms shorter than
// MinSearchLength yield an empty result.
func (snap Snapshot) Search(term string) SearchResult {
	result := SearchResult{Vehicles: []models.Vehicle{}, Offices: []OfficeResult{}}

	term = strings.ToLower(strings.TrimSpace(term))
	if len(term) < MinSearchLength {
		return result
	}

	var offices []string
	seen := make(map[string]bool)
	addOffice := func(name string) {
		if !seen[name] && strings.Contains(strings.ToLower(name), term) {
			seen[name] = true
			offices = append(offices, name)
		}
	}

	for _, v := range snap.Vehicles {
		if strings.Contains(strings.ToLower(v.Plate), term) {
			result.Vehicles = append(result.Vehicles, v)
		}
		addOffice(v.Office)
	}
	for _, s := range snap.Spots {
		for _, o := range s.AssignedOffices {
			addOffice(o)
		}
	}

	for _, name := range offices {
		office := OfficeResult{Name: name, Vehicles: []models.Vehicle{}, Spots: []models.Spot{}}
		for _, v := range snap.Vehicles {
			if v.Office == name {
				office.Vehicles = append(office.Vehicles, v)
			}
		}
		for _, s := range snap.Spots {
			if s.HasOffice(name) {
				office.Spots = append(office.Spots, s)
			}
		}
		result.Offices = append(result.Offices, office)
	}

	return result
}

// FilterSpots keeps spots whose ID, plate or any assigned office contains
// term, case-insensitively. An empty term keeps every spot.
func FilterSpots(spots []models.Spot, term string) []models.Spot {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]models.Spot, 0, len(spots))
	for _, s := range spots {
		if spotMatches(s, term) {
			out = append(out, s)
		}
	}
	return out
}

func spotMatches(s models.Spot, term string) bool {
	if strings.Contains(strings.ToLower(s.ID), term) {
		return true
	}
	if s.VehiclePlate != "" && strings.Contains(strings.ToLower(s.VehiclePlate), term) {
		return true
	}
	for _, o := range s.AssignedOffices {
		if strings.Contains(strings.ToLower(o), term) {
			return true
		}
	}
	return false
}

// FilterVehicles keeps vehicles whose plate or office contains term and
// orders them by office number, then office name.
func FilterVehicles(vehicles []models.Vehicle, term string) []models.Vehicle {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]models.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if strings.Contains(strings.ToLower(v.Plate), term) || strings.Contains(strings.ToLower(v.Office), term) {
			out = append(out, v)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return officeLess(out[i].Office, out[j].Office)
	})
	return out
}

// officeLess orders "Oficina 2" before "Oficina 10" by comparing the
// digits in each name as a number before falling back to the name.
func officeLess(a, b string) bool {
	na, nb := officeNumber(a), officeNumber(b)
	if na != nb {
		return na < nb
	}
	return a < b
}

func officeNumber(name string) int {
	var digits strings.Builder
	for _, r := range name {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}
