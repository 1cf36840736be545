package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"

	"github.com/algosignal/signalhub/internal/models"
)

// eventChannel is the Redis pub/sub channel carrying hub events between instances
const eventChannel = "signalhub:events"

// Hub maintains the set of active clients and broadcasts messages. With a
// Redis client supplied, messages go through pub/sub and every instance fans
// out what it receives, so dashboards connected to different replicas see
// the same events. Without Redis the hub is a plain in-process fanout.
type Hub struct {
	// Registered clients, guarded by mu: handlers register and unregister
	// concurrently with the Run fanout
	mu          sync.Mutex
	connections map[*websocket.Conn]bool

	// Messages to be broadcast to all connected clients
	broadcast chan models.Message

	// Upgrader for HTTP connections to WebSocket
	upgrader websocket.Upgrader

	redis  *redis.Client
	logger *slog.Logger
}

// NewHub creates a new hub for managing WebSocket connections. redisClient
// may be nil for single-instance runs.
func NewHub(redisClient *redis.Client, logger *slog.Logger) *Hub {
	upgrader := websocket.Upgrader{
		// Allow all origins for WebSocket connections
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return &Hub{
		connections: make(map[*websocket.Conn]bool),
		broadcast:   make(chan models.Message, 16),
		upgrader:    upgrader,
		redis:       redisClient,
		logger:      logger,
	}
}

// Run starts listening for messages to broadcast
func (h *Hub) Run() {
	if h.redis != nil {
		go h.subscribe()
	}

	for msg := range h.broadcast {
		// Send to all connected clients
		h.mu.Lock()
		for client := range h.connections {
			if err := client.WriteJSON(msg); err != nil {
				h.logger.Debug("Dropping websocket client", slog.Any("error", err))
				client.Close()
				delete(h.connections, client)
			}
		}
		h.mu.Unlock()
	}
}

// subscribe forwards events published by any instance into the local fanout
func (h *Hub) subscribe() {
	pubsub := h.redis.Subscribe(context.Background(), eventChannel)
	for redisMsg := range pubsub.Channel() {
		var msg models.Message
		if err := json.Unmarshal([]byte(redisMsg.Payload), &msg); err != nil {
			h.logger.Warn("Malformed hub event", slog.Any("error", err))
			continue
		}
		h.broadcast <- msg
	}
}

// HandleWebSocket upgrades an HTTP connection to WebSocket
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Websocket upgrade failed", slog.Any("error", err))
		return
	}

	// Register new client
	h.mu.Lock()
	h.connections[ws] = true
	h.mu.Unlock()

	// Read messages from the client (to keep the connection alive)
	go func() {
		defer ws.Close()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				h.mu.Lock()
				delete(h.connections, ws)
				h.mu.Unlock()
				break
			}
		}
	}()
}

// Broadcast sends a message to all connected clients on every instance
func (h *Hub) Broadcast(msg models.Message) {
	if h.redis != nil {
		payload, err := json.Marshal(msg)
		if err != nil {
			h.logger.Warn("Failed to encode hub event", slog.Any("error", err))
			return
		}
		if err := h.redis.Publish(context.Background(), eventChannel, payload).Err(); err != nil {
			h.logger.Warn("Failed to publish hub event, keeping it local", slog.Any("error", err))
			h.broadcast <- msg
		}
		return
	}

	h.broadcast <- msg
}
