package socket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	EventSetUserID         = "setUserId"
	EventNewNotification   = "newNotification"
	EventNotificationCount = "notificationCountUpdate"
	EventNotificationRead  = "notificationRead"

	sendBuffer     = 16
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub maps user ids to their live websocket connections. Delivery is
// at-most-once: a frame for a client whose queue is full is dropped.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uint]map[*client]struct{}
	closed   bool
	log      *slog.Logger
	upgrader websocket.Upgrader
}

type client struct {
	conn   *websocket.Conn
	userID uint
	send   chan []byte
}

func NewHub(l *slog.Logger) *Hub {
	if l == nil {
		l = slog.Default()
	}
	return &Hub{
		clients: make(map[uint]map[*client]struct{}),
		log:     l.With("component", "socket_hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the request and blocks until the connection goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uint) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{conn: conn, userID: userID, send: make(chan []byte, sendBuffer)}
	if !h.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(writeWait))
		return conn.Close()
	}

	go h.writePump(c)
	h.readPump(c)
	return nil
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.log.Info("socket_connected", "user_id", c.userID, "connections", len(set))
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	h.log.Info("socket_disconnected", "user_id", c.userID)
}

func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// EmitToUser queues the frame on every connection of the user and reports how
// many accepted it.
func (h *Hub) EmitToUser(userID uint, event string, data any) int {
	msg, err := json.Marshal(outFrame{Event: event, Data: data})
	if err != nil {
		h.log.Error("socket_encode_error", "event", event, "error", err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.enqueue(h.clients[userID], event, msg)
}

func (h *Hub) Broadcast(event string, data any) int {
	msg, err := json.Marshal(outFrame{Event: event, Data: data})
	if err != nil {
		h.log.Error("socket_encode_error", "event", event, "error", err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += h.enqueue(set, event, msg)
	}
	return n
}

// enqueue must be called with h.mu held.
func (h *Hub) enqueue(set map[*client]struct{}, event string, msg []byte) int {
	n := 0
	for c := range set {
		select {
		case c.send <- msg:
			n++
		default:
			h.log.Warn("socket_frame_dropped", "user_id", c.userID, "event", event)
		}
	}
	return n
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for uid, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, uid)
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var f Frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("socket_read_error", "user_id", c.userID, "error", err)
			}
			return
		}
		h.handleFrame(c, f)
	}
}

func (h *Hub) handleFrame(c *client, f Frame) {
	switch f.Event {
	case EventSetUserID:
		var req struct {
			UserID uint `json:"userId"`
		}
		if err := json.Unmarshal(f.Data, &req); err != nil || req.UserID != c.userID {
			h.log.Warn("socket_set_user_rejected", "user_id", c.userID, "requested", req.UserID)
			return
		}
		h.log.Debug("socket_set_user", "user_id", c.userID)
	default:
		h.log.Debug("socket_unknown_event", "user_id", c.userID, "event", f.Event)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
