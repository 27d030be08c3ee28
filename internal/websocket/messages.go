package websocket

import (
	"encoding/json"
	"time"

	"github.com/smart-park/backend/internal/storage/models"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeStoreChanged      MessageType = "store.changed"
	TypeOccupancySnapshot MessageType = "occupancy.snapshot"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// StoreChangedPayload is the payload for store.changed events.
type StoreChangedPayload struct {
	Collections []string  `json:"collections"`
	CommittedAt time.Time `json:"committed_at"`
}

// OccupancyPayload is the payload for occupancy.snapshot events.
type OccupancyPayload struct {
	models.OccupancySummary
	Taken int `json:"taken"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	OriginalType string `json:"original_type,omitempty"`
}
