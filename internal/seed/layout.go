// Package seed generates the initial parking lot: a grid of free spots
// spread over offices and a set of registered test vehicles.
package seed

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Layout describes the generated lot.
type Layout struct {
	TotalSpots       int     `yaml:"total_spots"`
	ColumnsPerRow    int     `yaml:"columns_per_row"`
	DoubleEvery      int     `yaml:"double_every"`
	Offices          int     `yaml:"offices"`
	OfficePrefix     string  `yaml:"office_prefix"`
	SharedOfficeRate float64 `yaml:"shared_office_rate"`
	TotalVehicles    int     `yaml:"total_vehicles"`
	PlatePrefix      string  `yaml:"plate_prefix"`
	SecondSpotRate   float64 `yaml:"second_spot_rate"`
}

// DefaultLayout returns the layout of the demo lot.
func DefaultLayout() Layout {
	return Layout{
		TotalSpots:       155,
		ColumnsPerRow:    10,
		DoubleEvery:      8,
		Offices:          20,
		OfficePrefix:     "Oficina",
		SharedOfficeRate: 0.1,
		TotalVehicles:    200,
		PlatePrefix:      "TST",
		SecondSpotRate:   0.1,
	}
}

// LoadLayout reads a YAML layout file. Keys missing from the file keep
// their default values. An empty path returns the default layout.
func LoadLayout(path string) (Layout, error) {
	layout := DefaultLayout()
	if path == "" {
		return layout, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return layout, fmt.Errorf("reading seed layout: %w", err)
	}
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return layout, fmt.Errorf("parsing seed layout %s: %w", path, err)
	}
	if err := layout.Validate(); err != nil {
		return layout, fmt.Errorf("seed layout %s: %w", path, err)
	}
	return layout, nil
}

// Validate checks that the layout can produce a consistent lot.
func (l Layout) Validate() error {
	var errs []error
	if l.TotalSpots < 0 {
		errs = append(errs, errors.New("total_spots must not be negative"))
	}
	if l.ColumnsPerRow <= 0 {
		errs = append(errs, errors.New("columns_per_row must be positive"))
	}
	if l.DoubleEvery < 0 {
		errs = append(errs, errors.New("double_every must not be negative"))
	}
	if l.Offices <= 0 {
		errs = append(errs, errors.New("offices must be positive"))
	}
	if l.OfficePrefix == "" {
		errs = append(errs, errors.New("office_prefix is required"))
	}
	if l.SharedOfficeRate < 0 || l.SharedOfficeRate > 1 {
		errs = append(errs, errors.New("shared_office_rate must be between 0 and 1"))
	}
	if l.SecondSpotRate < 0 || l.SecondSpotRate > 1 {
		errs = append(errs, errors.New("second_spot_rate must be between 0 and 1"))
	}
	if l.TotalVehicles < 0 {
		errs = append(errs, errors.New("total_vehicles must not be negative"))
	}
	if l.TotalVehicles > 0 && l.TotalSpots == 0 {
		errs = append(errs, errors.New("vehicles need at least one spot"))
	}
	if l.PlatePrefix == "" {
		errs = append(errs, errors.New("plate_prefix is required"))
	}
	return errors.Join(errs...)
}
