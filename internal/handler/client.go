package handler

import (
	"encoding/json"
	"net/http"
	"visionreporter/internal/dto"
	"visionreporter/internal/logger"
	"visionreporter/internal/service/session"
	wsservice "visionreporter/internal/service/websocket"

	"github.com/gorilla/websocket"
)

// Upgrader upgrades HTTP connections to WebSocket; CheckOrigin allows all origins.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ViewWebsocketHandler registers the UI shell in the hub so it receives frames,
// labels, speech and submission events, and forwards the browser's location
// messages to the active session.
func ViewWebsocketHandler(hub *wsservice.HubService, manager *session.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		hub.Register(connection)
		defer hub.Unregister(connection)

		for {
			_, message, err := connection.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Info("Viewer disconnected normally")
				} else {
					logger.Warning("Viewer disconnected with error: %v", err)
				}
				break
			}
			handleShellMessage(message, manager, logger)
		}
	}
}

func handleShellMessage(message []byte, manager *session.Manager, logger *logger.Logger) {
	var msg dto.ShellMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warning("Ignoring malformed shell message: %v", err)
		return
	}
	if msg.Type != wsservice.EventLocation {
		return
	}

	s, err := manager.Active()
	if err != nil {
		return
	}

	switch {
	case msg.Denied:
		s.DenyLocation(msg.Reason)
	case msg.Lat != nil && msg.Lng != nil:
		s.ReportLocation(*msg.Lat, *msg.Lng)
	default:
		s.DenyLocation("no coordinates")
	}
}
