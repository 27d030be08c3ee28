package websocket

import (
	"go.uber.org/zap"

	"github.com/smart-park/backend/internal/storage"
	"github.com/smart-park/backend/internal/storage/models"
)

// Broadcaster delivers raw messages to every connected client.
type Broadcaster interface {
	Broadcast(message []byte)
}

// EventBroadcaster handles broadcasting WebSocket events.
type EventBroadcaster struct {
	hub    Broadcaster
	logger *zap.Logger
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub Broadcaster, logger *zap.Logger) *EventBroadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBroadcaster{hub: hub, logger: logger}
}

// BroadcastStoreChanged tells clients which collections a commit touched.
// It has the shape of a store subscriber.
func (b *EventBroadcaster) BroadcastStoreChanged(cs storage.ChangeSet) {
	collections := make([]string, len(cs.Collections))
	for i, c := range cs.Collections {
		collections[i] = string(c)
	}

	b.broadcast(NewMessage(TypeStoreChanged, StoreChangedPayload{
		Collections: collections,
		CommittedAt: cs.CommittedAt,
	}))
}

// BroadcastOccupancy sends the current occupancy counts.
func (b *EventBroadcaster) BroadcastOccupancy(summary models.OccupancySummary) {
	b.broadcast(OccupancyMessage(summary))
}

// OccupancyMessage builds an occupancy.snapshot message.
func OccupancyMessage(summary models.OccupancySummary) Message {
	return NewMessage(TypeOccupancySnapshot, OccupancyPayload{
		OccupancySummary: summary,
		Taken:            summary.Taken(),
	})
}

// broadcast sends a message to all connected clients.
func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		b.logger.Error("Encoding WebSocket message", zap.String("type", string(msg.Type)), zap.Error(err))
		return
	}

	b.hub.Broadcast(data)
}
