package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"soundstage/core/engine"
	"soundstage/logger"
	"soundstage/model"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is the envelope pushed to websocket clients.
type wsMessage struct {
	Type      string                 `json:"type"`
	Position  float64                `json:"position,omitempty"`
	IsPlaying bool                   `json:"isPlaying"`
	State     *model.SessionSnapshot `json:"state,omitempty"`
}

// Hub fans transport and state updates out to the connected UI clients.
// Its ticker is the render loop: each tick samples the transport, which is
// also what fires the end-of-timeline auto-pause.
type Hub struct {
	session  *engine.Session
	interval time.Duration

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	closed  bool
	done    chan struct{}

	// gorilla/websocket allows one concurrent writer per connection;
	// writeMu serializes the tick loop against handler broadcasts.
	writeMu sync.Mutex
}

// NewHub creates a hub ticking at the given interval.
func NewHub(session *engine.Session, interval time.Duration) *Hub {
	if interval <= 0 {
		interval = 30 * time.Millisecond
	}
	return &Hub{
		session:  session,
		interval: interval,
		clients:  make(map[*websocket.Conn]bool),
		done:     make(chan struct{}),
	}
}

// ServeWS upgrades a client connection and registers it for pushes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	logger.Debug("websocket client connected", logger.String("remote", conn.RemoteAddr().String()))

	// Greet with the current state so the client renders immediately.
	snap := h.session.Snapshot()
	h.send(conn, wsMessage{Type: "state", IsPlaying: snap.IsPlaying, State: &snap})

	// Drain reads; the feed is one-way and we only care about close.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Run drives the render-loop tick until Close.
func (h *Hub) Run() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			position, playing := h.session.Tick()
			if !playing && position == 0 && !h.hasClients() {
				continue
			}
			h.broadcast(wsMessage{Type: "tick", Position: position, IsPlaying: playing})
		}
	}
}

// BroadcastState pushes a full snapshot after a mutation.
func (h *Hub) BroadcastState(snap model.SessionSnapshot) {
	h.broadcast(wsMessage{Type: "state", IsPlaying: snap.IsPlaying, State: &snap})
}

// Close disconnects every client and stops the tick loop.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]bool)
}

func (h *Hub) hasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (h *Hub) broadcast(msg wsMessage) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		h.send(conn, msg)
	}
}

func (h *Hub) send(conn *websocket.Conn, msg wsMessage) {
	h.writeMu.Lock()
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	err := conn.WriteJSON(msg)
	h.writeMu.Unlock()
	if err != nil {
		logger.Debug("websocket write failed, dropping client", logger.ErrorField(err))
		h.drop(conn)
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}
