package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 64
)

// Event is the JSON frame pushed to subscribers.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type envelope struct {
	userID  string
	payload []byte
}

// Client is one websocket connection owned by a user.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// Hub tracks connected clients by user and fans events out to them.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	outbound   chan envelope
	upgrader   websocket.Upgrader
	logger     *zap.Logger
	onChange   func(int)
	done       chan struct{}
}

// NewHub builds a hub. checkOrigin may be nil to accept every origin.
func NewHub(logger *zap.Logger, checkOrigin func(*http.Request) bool) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan envelope, 256),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logger,
		done:   make(chan struct{}),
	}
}

// OnConnectionsChanged registers a callback receiving the live connection count.
// It must be set before Run.
func (h *Hub) OnConnectionsChanged(fn func(int)) {
	h.onChange = fn
}

// Run owns the client map until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	count := 0
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
				}
			}
			h.clients = make(map[string]map[*Client]struct{})
			return
		case c := <-h.register:
			set, ok := h.clients[c.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.userID] = set
			}
			set[c] = struct{}{}
			count++
			h.notify(count)
		case c := <-h.unregister:
			if h.remove(c) {
				count--
				h.notify(count)
			}
		case msg := <-h.outbound:
			if msg.userID != "" {
				for c := range h.clients[msg.userID] {
					if !h.deliver(c, msg.payload) {
						count--
					}
				}
			} else {
				for _, set := range h.clients {
					for c := range set {
						if !h.deliver(c, msg.payload) {
							count--
						}
					}
				}
			}
			h.notify(count)
		}
	}
}

// PublishTo queues an event for every connection of userID.
func (h *Hub) PublishTo(userID, eventType string, data interface{}) {
	if h == nil || userID == "" {
		return
	}
	h.enqueue(userID, eventType, data)
}

// Broadcast queues an event for every connection.
func (h *Hub) Broadcast(eventType string, data interface{}) {
	if h == nil {
		return
	}
	h.enqueue("", eventType, data)
}

// Serve upgrades the request and attaches the connection to userID.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &Client{hub: h, conn: conn, userID: userID, send: make(chan []byte, sendBufferSize)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return nil
	}

	go c.writePump()
	go c.readPump()
	return nil
}

func (h *Hub) enqueue(userID, eventType string, data interface{}) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		h.logger.Warn("realtime marshal failed", zap.String("type", eventType), zap.Error(err))
		return
	}
	select {
	case h.outbound <- envelope{userID: userID, payload: payload}:
	default:
		h.logger.Warn("realtime outbound buffer full, dropping event", zap.String("type", eventType))
	}
}

// deliver drops slow clients instead of blocking the hub.
func (h *Hub) deliver(c *Client, payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		h.remove(c)
		return false
	}
}

func (h *Hub) remove(c *Client) bool {
	set, ok := h.clients[c.userID]
	if !ok {
		return false
	}
	if _, ok := set[c]; !ok {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
	return true
}

func (h *Hub) notify(count int) {
	if h.onChange != nil {
		h.onChange(count)
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket closed", zap.String("user_id", c.userID), zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
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
