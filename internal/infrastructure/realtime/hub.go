// Package realtime fans job and team change events out to websocket
// subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/amire/crewboard/internal/infrastructure/logger"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Subscribers only send pings
	maxMessageSize = 4 * 1024

	sendBuffer = 64
)

// Event is the message format pushed to subscribers
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
	At   time.Time       `json:"at"`
}

// Client is one connected subscriber
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// NewClient wraps an upgraded connection
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{hub: hub, conn: conn, send: make(chan []byte, sendBuffer), userID: userID}
}

// ReadPump reads until the peer goes away. Incoming "ping" events are
// answered with "pong" through the hub; everything else is ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warnw("WebSocket read failed", "user_id", c.userID, "error", err)
			}
			return
		}

		var in Event
		if err := json.Unmarshal(message, &in); err != nil || in.Type != "ping" {
			continue
		}
		pong, err := json.Marshal(Event{Type: "pong", At: time.Now().UTC()})
		if err != nil {
			continue
		}
		c.hub.reply(c, pong)
	}
}

// WritePump writes queued events and keeps the connection alive
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type directMessage struct {
	client  *Client
	message []byte
}

// Hub maintains the set of active clients and broadcasts events to them.
// Only the Run goroutine writes to or closes a client's send channel.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	direct     chan directMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *logger.Logger
}

// NewHub creates a new hub instance
func NewHub(l *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		direct:     make(chan directMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     l.WithComponent("realtime"),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// reply queues message for one client. It is dropped once the hub has
// stopped or the client is gone.
func (h *Hub) reply(client *Client, message []byte) {
	select {
	case h.direct <- directMessage{client: client, message: message}:
	case <-h.done:
	}
}

// Publish queues an event for every subscriber. It never blocks; events
// are dropped when the queue is full.
func (h *Hub) Publish(eventType string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.logger.Errorw("Failed to encode event", "type", eventType, "error", err)
		return
	}
	message, err := json.Marshal(Event{Type: eventType, Data: payload, At: time.Now().UTC()})
	if err != nil {
		h.logger.Errorw("Failed to encode event", "type", eventType, "error", err)
		return
	}

	select {
	case h.broadcast <- message:
	default:
		h.logger.Warnw("Event queue full, dropping event", "type", eventType)
	}
}

// Run serves the hub until ctx is cancelled, then disconnects everyone
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debugw("Subscriber connected", "user_id", client.userID, "subscribers", len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Debugw("Subscriber disconnected", "user_id", client.userID, "subscribers", len(h.clients))
			}
		case dm := <-h.direct:
			if _, ok := h.clients[dm.client]; !ok {
				continue
			}
			select {
			case dm.client.send <- dm.message:
			default:
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Send buffer full, assume disconnected
					h.logger.Warnw("Subscriber too slow, disconnecting", "user_id", client.userID)
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}
