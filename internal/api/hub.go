package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/westpoint-robotics/ros-cot/internal/geofence"
	"github.com/westpoint-robotics/ros-cot/pkg/logger"
)

const writeWait = 5 * time.Second

// TransitionMessage is the websocket payload for one transition.
type TransitionMessage struct {
	Kind     string    `json:"kind"`
	EntityID string    `json:"entity_id"`
	Areas    []string  `json:"areas,omitempty"`
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	Alt      float64   `json:"alt"`
	Time     time.Time `json:"time"`
}

type transitionsEvent struct {
	Type        string              `json:"type"`
	Transitions []TransitionMessage `json:"transitions"`
}

// Hub fans transition batches out to connected websocket clients. It
// implements geofence.Notifier.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	logger *logger.Logger
}

// NewHub creates a hub accepting upgrades from allowedOrigins. An empty list
// or "*" accepts any origin.
func NewHub(allowedOrigins []string, log *logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || originAllowed(allowedOrigins, origin)
			},
		},
		clients: make(map[*websocket.Conn]struct{}),
		logger:  log.Named("ws-hub"),
	}
}

// ServeHTTP upgrades the connection and keeps it registered until the client
// goes away. Incoming messages are ignored.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade connection", logger.Error(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("Client connected", logger.String("remote_addr", r.RemoteAddr), logger.Int("clients", count))

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.logger.Debug("Client disconnected", logger.Error(err))
			break
		}
	}
	h.remove(conn)
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// NotifyTransitions broadcasts one batch. Clients that fail a write are
// dropped.
func (h *Hub) NotifyTransitions(transitions []geofence.Transition) {
	event := transitionsEvent{Type: "transitions", Transitions: make([]TransitionMessage, 0, len(transitions))}
	for _, tr := range transitions {
		event.Transitions = append(event.Transitions, TransitionMessage{
			Kind:     string(tr.Kind),
			EntityID: tr.EntityID,
			Areas:    tr.Areas,
			Lat:      tr.Position.Latitude.Degrees(),
			Lon:      tr.Position.Longitude.Degrees(),
			Alt:      tr.Position.AltitudeMeters(),
			Time:     tr.Time,
		})
	}
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to encode transitions", logger.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Debug("Dropping client after failed write", logger.Error(err))
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// Len is the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		delete(h.clients, conn)
	}
}
