// Package progress streams solve progress to WebSocket subscribers.
//
// The hub fans one event stream out to every connected client. Slow or dead
// clients are dropped rather than allowed to stall the solve loop.
package progress

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event is one solve-loop update pushed to subscribers.
type Event struct {
	Scenario  string  `json:"scenario"`
	RunID     string  `json:"run_id,omitempty"`
	Iteration int     `json:"iteration"`
	State     string  `json:"state"`
	Objective float64 `json:"objective"`
	Timestamp int64   `json:"timestamp_ms"`
}

// HubConfig configures hub behavior.
type HubConfig struct {
	// WriteTimeout is timeout for writing events to a client.
	WriteTimeout time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
}

// DefaultHubConfig returns default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		WriteTimeout: 10 * time.Second,
		PingInterval: 30 * time.Second,
	}
}

// Hub tracks WebSocket subscribers and broadcasts events to them.
type Hub struct {
	config   HubConfig
	upgrader websocket.Upgrader

	clients   map[*websocket.Conn]struct{}
	clientsMu sync.Mutex

	done     chan struct{}
	closeMu  sync.Mutex
	isClosed bool
	wg       sync.WaitGroup
}

// NewHub creates a hub.
func NewHub(config *HubConfig) *Hub {
	cfg := DefaultHubConfig()
	if config != nil {
		cfg = *config
	}

	return &Hub{
		config: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Subscribers are dashboards on other origins
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
		done:    make(chan struct{}),
	}
}

// ServeHTTP upgrades the request and registers the client until it
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		return
	}

	h.clientsMu.Lock()
	h.clients[conn] = struct{}{}
	h.clientsMu.Unlock()

	h.wg.Add(2)
	go h.readLoop(conn)
	go h.pingLoop(conn)
}

// Broadcast sends an event to every connected client. Clients that cannot be
// written to within the write timeout are dropped.
func (h *Hub) Broadcast(ev Event) {
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}

	h.clientsMu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clientsMu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
		if err := conn.WriteJSON(ev); err != nil {
			h.drop(conn)
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients and stops the hub.
func (h *Hub) Close() error {
	h.closeMu.Lock()
	if h.isClosed {
		h.closeMu.Unlock()
		return nil
	}
	h.isClosed = true
	close(h.done)
	h.closeMu.Unlock()

	h.clientsMu.Lock()
	for conn := range h.clients {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		delete(h.clients, conn)
	}
	h.clientsMu.Unlock()

	h.wg.Wait()
	return nil
}

// drop removes and closes one client.
func (h *Hub) drop(conn *websocket.Conn) {
	h.clientsMu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.clientsMu.Unlock()
}

// readLoop consumes client frames so pings are answered and closes are seen.
// Subscribers never send application data.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.wg.Done()
	defer h.drop(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (h *Hub) pingLoop(conn *websocket.Conn) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.drop(conn)
				return
			}
		}
	}
}
