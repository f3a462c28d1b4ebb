package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins in dev; restrict in production
	},
}

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Identity is the resolved viewer or host behind a connection.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Role   string // "admin", "host", or "viewer"
}

// Authorizer resolves the connecting party for a webinar: a JWT for hosts and
// admins, or a registered attendee email for viewers.
type Authorizer func(c *gin.Context, webinarID uuid.UUID) (*Identity, error)

// StatusFunc returns the current room status snapshot for a webinar, used to
// answer explicit resync requests.
type StatusFunc func(webinarID uuid.UUID) (interface{}, error)

// ChatEcho is the payload echoed back to a viewer for their own message.
type ChatEcho struct {
	ID     string `json:"id"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
	Mine   bool   `json:"mine"`
	At     int64  `json:"at"`
}

// Client represents a single WebSocket connection in a webinar room.
type Client struct {
	ID        string
	WebinarID uuid.UUID
	UserID    uuid.UUID
	Email     string
	Name      string
	Role      string
	JoinedAt  time.Time // set before Register, read by the leave handler
	hub       *Hub
	status    StatusFunc
	conn      *websocket.Conn
	send      chan WSMessage
	logger    *zap.Logger
}

// ServeWs handles the WebSocket upgrade and runs the client loop.
func ServeWs(hub *Hub, logger *zap.Logger, authorize Authorizer, status StatusFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		webinarIDStr := c.Query("webinar_id")
		if webinarIDStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "webinar_id required"})
			return
		}
		webinarID, err := uuid.Parse(webinarIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webinar_id"})
			return
		}
		ident, err := authorize(c, webinarID)
		if err != nil || ident == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:        uuid.New().String(),
			WebinarID: webinarID,
			UserID:    ident.UserID,
			Email:     ident.Email,
			Name:      ident.Name,
			Role:      ident.Role,
			JoinedAt:  time.Now(),
			hub:       hub,
			status:    status,
			conn:      conn,
			send:      make(chan WSMessage, 256),
			logger:    logger,
		}
		hub.Register(client)
		go client.writePump()
		client.readPump()
	}
}

func (c *Client) isHost() bool {
	return c.Role == "host" || c.Role == "admin"
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))

		switch msg.Event {
		case "chat_message":
			var payload struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.Text == "" {
				continue
			}
			echo := ChatEcho{
				ID:     uuid.New().String(),
				Sender: c.Name,
				Text:   payload.Text,
				At:     time.Now().Unix(),
			}
			if c.isHost() {
				// Host messages are real: everyone in the room sees them.
				c.hub.BroadcastToWebinarAndPublish(c.WebinarID, "chat_message", echo)
				continue
			}
			// Viewer messages echo to the author only. Each viewer sees their
			// own messages woven into the scheduled stream and nobody else's.
			echo.Mine = true
			c.hub.SendToClient(c.WebinarID, c.ID, "chat_message", echo)
		case "resync":
			if c.status == nil {
				continue
			}
			if snapshot, err := c.status(c.WebinarID); err == nil {
				c.hub.SendToClient(c.WebinarID, c.ID, "room_status", snapshot)
			}
		case "room_control":
			if !c.isHost() {
				continue
			}
			c.hub.BroadcastToWebinarAndPublish(c.WebinarID, "room_control", json.RawMessage(msg.Data))
		default:
			// ignore
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
