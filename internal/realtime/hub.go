package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// RoomLifecycleHandler is notified when a webinar room gains its first local
// client or loses its last one. The room registry hangs off these so the
// simulator only runs while someone is watching.
type RoomLifecycleHandler interface {
	RoomOccupied(webinarID uuid.UUID)
	RoomEmptied(webinarID uuid.UUID)
}

// LeaveHandler is called when a client disconnects, for session logging.
type LeaveHandler func(c *Client)

// Hub maintains webinar_id -> set of connections and broadcasts messages.
// Uses Redis pub/sub for horizontal scaling: local broadcast + publish to Redis.
type Hub struct {
	// webinarID -> map[clientID]*Client
	webinars  map[uuid.UUID]map[string]*Client
	subs      map[uuid.UUID]func() // cancel Redis subscription per webinar
	mu        sync.RWMutex
	logger    *zap.Logger
	redis     RedisPublisher
	redisSub  RedisSubscriber
	lifecycle RoomLifecycleHandler
	onLeave   LeaveHandler
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance broadcast).
type RedisPublisher interface {
	PublishWebinarEvent(webinarID uuid.UUID, event string, payload []byte) error
}

// RedisSubscriber subscribes to webinar channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeWebinar(webinarID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	return &Hub{
		webinars: make(map[uuid.UUID]map[string]*Client),
		subs:     make(map[uuid.UUID]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// SetRoomLifecycleHandler sets the occupancy callback (room registry).
func (h *Hub) SetRoomLifecycleHandler(l RoomLifecycleHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lifecycle = l
}

// SetLeaveHandler sets the disconnect callback (session logging).
func (h *Hub) SetLeaveHandler(fn LeaveHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onLeave = fn
}

// Register adds a client to a webinar room. Starts Redis subscription for this webinar if first client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	first := false
	if h.webinars[c.WebinarID] == nil {
		first = true
		h.webinars[c.WebinarID] = make(map[string]*Client)
		if h.redisSub != nil {
			cancel, err := h.redisSub.SubscribeWebinar(c.WebinarID, func(event string, payload []byte) {
				h.BroadcastToWebinar(c.WebinarID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.WebinarID] = cancel
			}
		}
	}
	h.webinars[c.WebinarID][c.ID] = c
	lifecycle := h.lifecycle
	h.mu.Unlock()
	if first && lifecycle != nil {
		lifecycle.RoomOccupied(c.WebinarID)
	}
	h.logger.Debug("client joined webinar", zap.String("client_id", c.ID), zap.String("webinar_id", c.WebinarID.String()))
}

// Unregister removes a client from a webinar room. Cancels Redis subscription when last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	last := false
	if m, ok := h.webinars[c.WebinarID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			last = true
			delete(h.webinars, c.WebinarID)
			if cancel, ok := h.subs[c.WebinarID]; ok {
				cancel()
				delete(h.subs, c.WebinarID)
			}
		}
	}
	lifecycle := h.lifecycle
	onLeave := h.onLeave
	h.mu.Unlock()
	if onLeave != nil {
		onLeave(c)
	}
	if last && lifecycle != nil {
		lifecycle.RoomEmptied(c.WebinarID)
	}
	h.logger.Debug("client left webinar", zap.String("client_id", c.ID), zap.String("webinar_id", c.WebinarID.String()))
}

// BroadcastToWebinar sends a message to all clients in a webinar (local only).
func (h *Hub) BroadcastToWebinar(webinarID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	// Snapshot the client set under the lock; Register/Unregister mutate the
	// map concurrently with the 1s runner broadcasts.
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.webinars[webinarID]))
	for _, c := range h.webinars[webinarID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// BroadcastToWebinarAndPublish delivers an event to every client in a webinar,
// here and on other instances. With Redis attached it publishes only: this
// instance's own subscription performs the single local broadcast, so a client
// never receives the same event twice. Without Redis it degrades to a plain
// local broadcast.
func (h *Hub) BroadcastToWebinarAndPublish(webinarID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.redis != nil {
		_ = h.redis.PublishWebinarEvent(webinarID, event, data)
		return
	}
	h.BroadcastToWebinar(webinarID, event, payload)
}

// ConnectedCount returns the number of real connections in a webinar room.
// This is operational telemetry; the count viewers see comes from the
// simulator, never from here.
func (h *Hub) ConnectedCount(webinarID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.webinars[webinarID])
}

// SendToClient sends a message to a single client in a webinar. Viewer chat
// replies go through here so a message is only ever visible to its author.
func (h *Hub) SendToClient(webinarID uuid.UUID, clientID string, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := WSMessage{Event: event, Data: data}
	h.mu.RLock()
	clients := h.webinars[webinarID]
	c, ok := clients[clientID]
	h.mu.RUnlock()
	if !ok || c == nil {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}
