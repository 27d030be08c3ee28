package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	ws "github.com/smart-park/backend/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// WebSocketUpgrade returns a handler that upgrades HTTP connections to WebSocket.
func WebSocketUpgrade(hub *ws.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("WebSocket upgrade failed", zap.Error(err))
			return
		}

		client := ws.NewClient(hub)
		hub.Register(client)

		go writePump(conn, client)
		go readPump(conn, client, hub, logger)
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func writePump(conn *websocket.Conn, client *ws.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump pumps messages from the WebSocket connection to the hub.
func readPump(conn *websocket.Conn, client *ws.Client, hub *ws.Hub, logger *zap.Logger) {
	defer func() {
		hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(65536)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket read error", zap.String("client_id", client.ID), zap.Error(err))
			}
			break
		}

		handleClientMessage(message, client, logger)
	}
}

// handleClientMessage answers application level pings and rejects
// anything else.
func handleClientMessage(message []byte, client *ws.Client, logger *zap.Logger) {
	var in struct {
		Type ws.MessageType `json:"type"`
	}

	var reply ws.Message
	switch err := json.Unmarshal(message, &in); {
	case err != nil:
		reply = ws.NewMessage(ws.TypeError, ws.ErrorPayload{Code: "bad_message", Message: "message is not valid JSON"})
	case in.Type == ws.TypePing:
		reply = ws.NewMessage(ws.TypePong, nil)
	default:
		reply = ws.NewMessage(ws.TypeError, ws.ErrorPayload{
			Code:         "unsupported",
			Message:      "unsupported message type",
			OriginalType: string(in.Type),
		})
	}

	data, err := reply.JSON()
	if err != nil {
		logger.Error("Encoding WebSocket reply", zap.Error(err))
		return
	}
	if !client.Deliver(data) {
		logger.Warn("WebSocket client buffer full", zap.String("client_id", client.ID))
	}
}
