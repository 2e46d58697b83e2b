package notifyhub

import (
	"sync"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/moyoez/fileshare-go/types"
)

// client pairs a connection with its write lock. The websocket package
// allows at most one concurrent writer per connection, while broadcasts
// arrive from upload workers and converter workers at once.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub holds WebSocket connections and broadcasts file events to all clients.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]*client
}

// New creates a new event hub.
func New() *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]*client),
	}
}

// Register adds a WebSocket connection to the hub.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = &client{conn: conn}
}

// Unregister removes a WebSocket connection from the hub.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// Broadcast sends the event as JSON to all registered connections. Safe for
// concurrent use: writes to each connection are serialized.
// Implements process.Notifier.
func (h *Hub) Broadcast(event *types.Event) {
	if event == nil {
		return
	}
	payload, err := sonic.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.conns))
	for _, c := range h.conns {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.send(payload)
	}
}
