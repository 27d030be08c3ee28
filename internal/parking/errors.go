package parking

import (
	"errors"
)

var (
	// ErrSpotNotFound is returned when an operation targets a missing spot.
	ErrSpotNotFound = errors.New("spot not found")

	// ErrSpotNotFree is returned when occupying a spot that is already taken.
	ErrSpotNotFree = errors.New("spot is not free")

	// ErrVehicleNotFound is returned when a non-visitor plate is not registered.
	ErrVehicleNotFound = errors.New("vehicle not registered")

	// ErrInvalidInput is returned for requests missing required values.
	ErrInvalidInput = errors.New("invalid input")
)
