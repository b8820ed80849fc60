package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"sales-assistant-be/internal/dto"
	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/internal/pkg/serverutils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "assistant_ws_events"

// Processor answers one chat message.
type Processor func(ctx context.Context, userID string, msg dto.WsChatMessage) (*dto.Outcome, error)

// Frame is what the server writes to a websocket client.
type Frame struct {
	Type    string       `json:"type"`
	Data    *dto.Outcome `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
}

type Hub struct {
	// Registered clients: user id -> connections (one per device)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Optional; fans outcomes out to the user's devices on other instances
	rdb        *redis.Client
	instanceID string

	process Processor
	logger  logger.ILogger
}

func NewHub(rdb *redis.Client, process Processor, log logger.ILogger) *Hub {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		process:    process,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// handleIncoming processes one raw frame from c. The outcome goes to every
// device of the user; errors only to the sender.
func (h *Hub) handleIncoming(ctx context.Context, c *Client, raw []byte) {
	var msg dto.WsChatMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.reply(c, Frame{Type: "error", Message: "invalid message"})
		return
	}
	if err := serverutils.ValidateRequest(msg); err != nil {
		h.reply(c, Frame{Type: "error", Message: err.Error()})
		return
	}

	out, err := h.process(ctx, c.UserID, msg)
	if err != nil {
		h.logger.Warn("Hub", "Failed to process message", map[string]interface{}{
			"user_id": c.UserID,
			"error":   err.Error(),
		})
		h.reply(c, Frame{Type: "error", Message: err.Error()})
		return
	}

	data, err := json.Marshal(Frame{Type: "outcome", Data: out})
	if err != nil {
		return
	}
	h.Send(c.UserID, data)
}

func (h *Hub) reply(c *Client, f Frame) {
	data, _ := json.Marshal(f)
	select {
	case c.Send <- data:
	default:
		h.logger.Warn("Hub", "Client Send buffer full, dropping reply", map[string]interface{}{"user_id": c.UserID})
	}
}

// Send delivers data to all local connections of userID and publishes it
// for the other instances.
func (h *Hub) Send(userID string, data []byte) {
	h.deliverLocal(userID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"origin":         h.instanceID,
			"target_user_id": userID,
			"message":        json.RawMessage(data),
		})
		if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish to cluster", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (h *Hub) deliverLocal(userID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients[userID] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"user_id": userID})
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			Origin       string          `json:"origin"`
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Cluster message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if payload.Origin == h.instanceID {
			continue
		}
		h.deliverLocal(payload.TargetUserID, payload.Message)
	}
}
