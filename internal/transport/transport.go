/*
Package transport
File: internal/transport/transport.go
Description:
    Component C5 — the connection router. Generalizes the teacher's
    internal/api.Hub (register/unregister/broadcast over channels) into a
    full duplex per-connection pump pair, enriched with
    lab1702-netrek-web's server-websocket.go idiom: ping interval, read
    deadline, bounded connection count, origin check, bounded per-client
    outbound queue with a backpressure disconnect.
*/
package transport

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voidreach/starforge/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ConnState tracks spec.md §4.5's per-connection state.
type ConnState int

const (
	StateUnauth ConnState = iota
	StateAuth
)

// Conn is one live client connection: the read/write pump pair plus
// whatever auth/session state has accumulated on it.
type Conn struct {
	hub  *Hub
	ws   *websocket.Conn
	send chan []byte

	mu       sync.Mutex
	state    ConnState
	userID   uint64
	username string
	token    string

	closeOnce sync.Once
}

// UserID returns the authenticated user id, or 0 if unauthenticated.
func (c *Conn) UserID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// RemoteAddr reports the client's address, for the auth rate limiters.
func (c *Conn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

// Username returns the authenticated username, or "" if unauthenticated.
func (c *Conn) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// Authenticate flips a connection from UNAUTH to AUTH (auth:success).
func (c *Conn) Authenticate(userID uint64, username, token string) {
	c.mu.Lock()
	c.state = StateAuth
	c.userID = userID
	c.username = username
	c.token = token
	c.mu.Unlock()
	c.hub.bindUser(userID, c)
}

// IsAuth reports whether this connection has completed auth.
func (c *Conn) IsAuth() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateAuth
}

// Send enqueues a raw message for delivery, disconnecting the client on
// backpressure (spec.md §5: bounded outbound queues, drop on overflow).
func (c *Conn) Send(message []byte) {
	select {
	case c.send <- message:
	default:
		c.hub.log.Warnf("disconnecting conn for backpressure, user=%d", c.userID)
		c.close()
	}
}

func (c *Conn) close() {
	c.closeOnce.Do(func() {
		c.hub.unregister <- c
	})
}

// Hub owns the registry of live connections, a bounded connection count,
// and the dispatch table invoked per inbound envelope.
type Hub struct {
	log *logging.Logger

	mu          sync.RWMutex
	conns       map[*Conn]bool
	byUser      map[uint64]*Conn
	maxConns    int

	register   chan *Conn
	unregister chan *Conn

	dispatch Dispatcher
}

// Dispatcher handles one decoded inbound message for one connection.
// internal/sim (or a wiring layer above it) implements this to route
// events to the auth/market/mining/etc. services.
type Dispatcher interface {
	Dispatch(c *Conn, event string, data []byte)
	OnDisconnect(c *Conn)
}

// NewHub builds a Hub bounded to maxConns simultaneous connections.
func NewHub(maxConns int, dispatch Dispatcher) *Hub {
	return &Hub{
		log:        logging.For("transport"),
		conns:      make(map[*Conn]bool),
		byUser:     make(map[uint64]*Conn),
		maxConns:   maxConns,
		register:   make(chan *Conn),
		unregister: make(chan *Conn),
		dispatch:   dispatch,
	}
}

// Run is the registry goroutine; it must run for the lifetime of the hub.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.conns[c] = true
			n := len(h.conns)
			h.mu.Unlock()
			h.log.Debugf("connection registered, total=%d", n)
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.conns[c]; ok {
				delete(h.conns, c)
				if uid := c.UserID(); uid != 0 && h.byUser[uid] == c {
					delete(h.byUser, uid)
				}
				close(c.send)
			}
			h.mu.Unlock()
			h.dispatch.OnDisconnect(c)
		}
	}
}

// Count reports live connections, for /health and the connection cap.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// bindUser indexes a freshly-authenticated connection by user id so
// EmitTo can reach it directly, without scanning every live connection.
func (h *Hub) bindUser(userID uint64, c *Conn) {
	h.mu.Lock()
	h.byUser[userID] = c
	h.mu.Unlock()
}

// EmitTo delivers event/payload to exactly one authenticated user's
// connection, satisfying sim.Sender. A user with no live connection
// (disconnected between the tick that scheduled this and now) is a
// silent no-op — spec.md has no offline-delivery requirement.
func (h *Hub) EmitTo(userID uint64, event string, payload any) {
	h.mu.RLock()
	c, ok := h.byUser[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	c.Emit(event, payload)
}

// handlerFunc adapts ServeWs to http.HandlerFunc for router mounting and
// for tests that spin up an httptest.Server directly.
func (h *Hub) handlerFunc() http.HandlerFunc {
	return h.ServeWs
}

// ServeWs upgrades an HTTP request to a WebSocket connection and spawns
// its read/write pumps (spec.md §4.5's connection router entry point).
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	if h.Count() >= h.maxConns {
		http.Error(w, "server full", http.StatusServiceUnavailable)
		return
	}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("upgrade failed: %v", err)
		return
	}
	c := &Conn{hub: h, ws: ws, send: make(chan []byte, sendBuffer), state: StateUnauth}
	h.register <- c
	go c.writePump()
	go c.readPump()
}

func (c *Conn) readPump() {
	defer c.close()
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debugf("read error: %v", err)
			}
			return
		}
		event, data, err := decodeEnvelope(raw)
		if err != nil {
			c.hub.log.Debugf("malformed envelope ignored: %v", err)
			continue // ProtocolError: unknown/malformed, logged and ignored
		}
		c.hub.dispatch.Dispatch(c, event, data)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
