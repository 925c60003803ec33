package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/quizdeck/quizdeck/internal/content"
)

const broadcastTimeout = 5 * time.Second

// Hub fans reconciliation events out to websocket subscribers so authoring
// frontends can refresh the moment a content file lands.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

func (h *Hub) broadcast(ev content.Event) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
		err := wsjson.Write(ctx, c, ev)
		cancel()
		if err != nil {
			h.remove(c)
			c.Close(websocket.StatusGoingAway, "write failed")
		}
	}
}

func (s *Server) handleContentEvents(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	s.hub.add(c)
	defer func() {
		s.hub.remove(c)
		c.CloseNow()
	}()

	// Subscribers only listen; the read loop just detects disconnects.
	ctx := r.Context()
	for {
		if _, _, err := c.Read(ctx); err != nil {
			return
		}
	}
}
