package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"visionreporter/internal/logger"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Event types sent to the UI shell.
const (
	EventFrame      = "frame"
	EventLabel      = "label"
	EventSpeech     = "speech"
	EventSubmission = "submission"
	EventLocation   = "location"
)

// Event is one message pushed to every viewer.
type Event struct {
	Type    string      `json:"type"`
	Image   string      `json:"image,omitempty"` // base64 JPEG for frame events
	Label   string      `json:"label,omitempty"`
	Text    string      `json:"text,omitempty"`
	OK      *bool       `json:"ok,omitempty"`
	ID      string      `json:"id,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// HubService fans events out to connected viewers. Control events (label,
// speech, submission, location) are queued and always delivered in order;
// frames are coalesced so only the latest one waits for delivery.
type HubService struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	wake       chan struct{}
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger

	queueMu sync.Mutex
	pending [][]byte
	frame   []byte
}

// NewHubService creates a hub. Call Run to start delivering.
func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run delivers events until ctx is cancelled, then closes every client.
func (h *HubService) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer connected. Total: %d", total)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer disconnected. Total: %d", total)

		case <-h.wake:
			for _, message := range h.take() {
				h.deliver(message)
			}
		}
	}
}

// take empties the queue: control events first, in publish order, then the
// latest frame.
func (h *HubService) take() [][]byte {
	h.queueMu.Lock()
	defer h.queueMu.Unlock()

	messages := h.pending
	if h.frame != nil {
		messages = append(messages, h.frame)
	}
	h.pending = nil
	h.frame = nil
	return messages
}

// deliver writes one message to every viewer. Only the Run goroutine writes,
// so the client lock is not held during network writes.
func (h *HubService) deliver(message []byte) {
	h.mutex.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.RUnlock()

	for _, client := range clients {
		client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Error("Error sending message: %v", err)
			h.mutex.Lock()
			delete(h.clients, client)
			h.mutex.Unlock()
			client.Close()
		}
	}
}

// Register adds a viewer connection. It returns immediately once the hub stopped.
func (h *HubService) Register(client *websocket.Conn) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister removes a viewer connection and closes it.
func (h *HubService) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues an event for every viewer without blocking. A frame replaces
// any frame not yet delivered; other events are never dropped.
func (h *HubService) Publish(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Error encoding %s event: %v", event.Type, err)
		return
	}

	h.queueMu.Lock()
	if event.Type == EventFrame {
		h.frame = message
	} else {
		h.pending = append(h.pending, message)
	}
	h.queueMu.Unlock()

	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// GetClientCount returns the number of connected viewers.
func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
