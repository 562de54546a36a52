package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"blocknotes/internal/domain"
	"blocknotes/internal/service"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10
	sendBuffer   = 32
)

// Event is the frame sent to websocket clients.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub is a service.EventEmitter that forwards each event to the websocket
// connections of the user it concerns.
type Hub struct {
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	userID string
	send   chan []byte
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log: log.With().Str("component", "events").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are checked by the CORS layer and the bearer token.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

var _ service.EventEmitter = (*Hub)(nil)

// Emit delivers the event to the owning user's connections. Slow clients
// that have a full buffer miss the event.
func (h *Hub) Emit(ctx context.Context, event string, data any) {
	userID := UserIDFromContext(ctx)
	if userID == "" {
		userID = ownerOf(data)
	}
	if userID == "" {
		return
	}
	msg, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("encode event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.userID != userID {
			continue
		}
		select {
		case c.send <- msg:
		default:
			h.log.Warn().Str("user_id", userID).Str("event", event).Msg("client buffer full, dropping event")
		}
	}
}

// ownerOf finds the user an event payload belongs to when the emitting
// context carries none, as for scheduled jobs.
func ownerOf(data any) string {
	switch v := data.(type) {
	case *domain.Document:
		return v.UserID
	case *domain.DocumentVersion:
		return v.CreatedBy
	case service.SessionChange:
		return v.UserID
	case *service.ImportResult:
		if v.Document != nil {
			return v.Document.UserID
		}
	}
	return ""
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// unregister removes c and closes its send channel once.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Close drops every client. Their write loops exit and close the sockets.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, user *domain.User) {
	conn, err := s.hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response.
		s.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &client{userID: user.ID, send: make(chan []byte, sendBuffer)}
	s.hub.register(c)
	s.log.Debug().Str("user_id", user.ID).Msg("event stream connected")

	go s.hub.writeLoop(conn, c)
	s.hub.readLoop(conn, c)
}

// readLoop discards client frames and returns when the connection drops.
func (h *Hub) readLoop(conn *websocket.Conn, c *client) {
	defer h.unregister(c)
	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
