package models

import (
	"strings"
)

// Vehicle is a registered vehicle and the spots it may use.
type Vehicle struct {
	Plate        string   `json:"plate"`
	Office       string   `json:"office"`
	AllowedSpots []string `json:"allowed_spots"`
}

// IsAllowed reports whether the vehicle is authorized for spotID.
func (v *Vehicle) IsAllowed(spotID string) bool {
	for _, id := range v.AllowedSpots {
		if id == spotID {
			return true
		}
	}
	return false
}

// NormalizePlate uppercases and trims a license plate.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// NormalizeSpotID uppercases and trims a spot identifier.
func NormalizeSpotID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
