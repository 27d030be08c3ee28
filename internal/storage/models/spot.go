// Package models contains the domain models for the application.
package models

import (
	"time"
)

// SpotStatus is the occupancy state of a parking spot.
type SpotStatus string

const (
	SpotStatusFree     SpotStatus = "FREE"
	SpotStatusOccupied SpotStatus = "OCCUPIED"
	SpotStatusVisitor  SpotStatus = "VISITOR"
)

// Valid reports whether s is one of the known statuses.
func (s SpotStatus) Valid() bool {
	switch s {
	case SpotStatusFree, SpotStatusOccupied, SpotStatusVisitor:
		return true
	}
	return false
}

// SpotType distinguishes single spots from spots that fit two vehicles.
type SpotType string

const (
	SpotTypeNormal SpotType = "NORMAL"
	SpotTypeDouble SpotType = "DOUBLE"
)

// Spot represents a single addressable parking space.
//
// VehiclePlate and Timestamp are set only while the spot is not free, and
// VisitorName only while it is held by a visitor. AssignedOffices is
// independent of occupancy.
type Spot struct {
	ID              string     `json:"id"`
	Status          SpotStatus `json:"status"`
	Type            SpotType   `json:"type"`
	AssignedOffices []string   `json:"assigned_offices,omitempty"`
	VehiclePlate    string     `json:"vehicle_plate,omitempty"`
	VisitorName     string     `json:"visitor_name,omitempty"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`
}

// IsFree reports whether the spot is available.
func (s *Spot) IsFree() bool {
	return s.Status == SpotStatusFree
}

// Released returns a clean free copy of the spot that keeps only its
// identity, type and assigned offices.
func (s *Spot) Released() Spot {
	return Spot{
		ID:              s.ID,
		Status:          SpotStatusFree,
		Type:            s.Type,
		AssignedOffices: s.AssignedOffices,
	}
}

// HasOffice reports whether office is one of the spot's assigned offices.
func (s *Spot) HasOffice(office string) bool {
	for _, o := range s.AssignedOffices {
		if o == office {
			return true
		}
	}
	return false
}

// NewFreeSpot builds an unoccupied spot record.
func NewFreeSpot(id string, spotType SpotType, offices ...string) Spot {
	return Spot{
		ID:              id,
		Status:          SpotStatusFree,
		Type:            spotType,
		AssignedOffices: offices,
	}
}

// OccupancySummary counts spots per status for dashboard views.
type OccupancySummary struct {
	Total    int `json:"total"`
	Free     int `json:"free"`
	Occupied int `json:"occupied"`
	Visitor  int `json:"visitor"`
	Vehicles int `json:"vehicles"`
}

// Taken returns the number of spots that are not free.
func (s OccupancySummary) Taken() int {
	return s.Occupied + s.Visitor
}
