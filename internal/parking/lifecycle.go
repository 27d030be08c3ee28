package parking

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/smart-park/backend/internal/storage/models"
)

// Spot lifecycle events.
const (
	EventOccupy  = "occupy"
	EventVisit   = "visit"
	EventRelease = "release"
)

// spotEvents is the spot state machine. There is no direct move between
// OCCUPIED and VISITOR; a spot must be released first. Releasing a free
// spot is accepted as a no-op.
var spotEvents = fsm.Events{
	{Name: EventOccupy, Src: []string{string(models.SpotStatusFree)}, Dst: string(models.SpotStatusOccupied)},
	{Name: EventVisit, Src: []string{string(models.SpotStatusFree)}, Dst: string(models.SpotStatusVisitor)},
	{
		Name: EventRelease,
		Src: []string{
			string(models.SpotStatusOccupied),
			string(models.SpotStatusVisitor),
			string(models.SpotStatusFree),
		},
		Dst: string(models.SpotStatusFree),
	},
}

// transition applies event to a spot in status from and returns the
// resulting status.
func transition(ctx context.Context, from models.SpotStatus, event string) (models.SpotStatus, error) {
	machine := fsm.NewFSM(string(from), spotEvents, fsm.Callbacks{})

	if err := machine.Event(ctx, event); err != nil {
		var noTransition fsm.NoTransitionError
		if errors.As(err, &noTransition) {
			return from, nil
		}

		var invalid fsm.InvalidEventError
		if errors.As(err, &invalid) && (event == EventOccupy || event == EventVisit) {
			return from, ErrSpotNotFree
		}
		return from, fmt.Errorf("spot transition %s from %s: %w", event, from, err)
	}

	return models.SpotStatus(machine.Current()), nil
}

// occupyEvent picks the lifecycle event for an occupancy request.
func occupyEvent(isVisitor bool) string {
	if isVisitor {
		return EventVisit
	}
	return EventOccupy
}
