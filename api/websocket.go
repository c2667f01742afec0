package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/tidepool/game"
)

const (
	// MaxWSConnections caps concurrent websocket clients.
	MaxWSConnections = 256

	writeWait = 5 * time.Second
)

// wsMessage is the envelope for every pushed message.
type wsMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub fans published views out to websocket clients. Clients may also send
// commands in the same JSON form as POST /api/commands.
type Hub struct {
	engine   Engine
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}

	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
}

// NewHub creates a hub. origins lists allowed Origin headers; "*" or an
// empty list allows any.
func NewHub(engine Engine, origins []string) *Hub {
	h := &Hub{
		engine:     engine,
		clients:    make(map[*websocket.Conn]struct{}),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || originAllowed(origin, origins) {
				return true
			}
			slog.Warn("websocket origin rejected", "origin", origin)
			return false
		},
	}
	return h
}

func originAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

// Run serves registrations and broadcasts until ctx is done. Connections
// are only accepted while Run is serving.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			UpdateWSConnections(0)
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			slog.Debug("websocket client connected", "clients", count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.drop(conn)

		case msg := <-h.broadcast:
			h.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				conns = append(conns, conn)
			}
			h.mu.RUnlock()

			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					h.drop(conn)
				}
			}
			IncrementWSMessages()
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
		conn.Close()
	}
	count := len(h.clients)
	h.mu.Unlock()
	if ok {
		slog.Debug("websocket client disconnected", "clients", count)
		UpdateWSConnections(count)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends a view, and its events if any, to every client. It never
// blocks; messages are dropped when the hub is behind.
func (h *Hub) Publish(v *game.View) {
	if h.ClientCount() == 0 {
		return
	}
	h.send("view", v)
	if len(v.Events) > 0 {
		h.send("events", v.Events)
	}
}

func (h *Hub) send(event string, data interface{}) {
	msg, err := json.Marshal(wsMessage{Event: event, Data: data})
	if err != nil {
		slog.Error("failed to encode websocket message", "event", event, "error", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
	}
}

// HandleWebSocket upgrades the connection and reads client commands until
// it closes.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.ClientCount() >= MaxWSConnections {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}

	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			h.handleMessage(data)
		}
	}()
}

func (h *Hub) handleMessage(data []byte) {
	var req commandRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}
	kind, err := game.ParseCommandKind(req.Kind)
	if err != nil {
		RecordCommand("unknown")
		return
	}
	if err := h.engine.Submit(game.Command{Kind: kind, OrganismID: req.OrganismID, Amount: req.Amount}); err != nil {
		RecordCommand("rejected")
		slog.Debug("websocket command rejected", "kind", req.Kind, "error", err)
		return
	}
	RecordCommand("accepted")
}
