package ws

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"planningpoker/internal/room"
)

// Binding is the room and session a connection joined as.
type Binding struct {
	Slug      string
	SessionID string
}

// Hub is the process-wide session registry. It tracks every open connection,
// which of them are bound to a room, and the live connection set per room.
// Only the live index lives here; rooms themselves stay in the store.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*clientConn]struct{}
	bindings map[*clientConn]Binding
	rooms    map[string]connSet
}

func NewHub() *Hub {
	return &Hub{
		clients:  make(map[*clientConn]struct{}),
		bindings: make(map[*clientConn]Binding),
		rooms:    make(map[string]connSet),
	}
}

func (h *Hub) register(c *clientConn) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// unregister forgets c entirely and returns its last binding, if any.
func (h *Hub) unregister(c *clientConn) (Binding, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, c)
	return h.unbindLocked(c)
}

// Bind moves c to b, dropping any previous binding.
func (h *Hub) Bind(c *clientConn, b Binding) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.unbindLocked(c)
	h.bindings[c] = b
	set, ok := h.rooms[b.Slug]
	if !ok {
		set = connSet{}
		h.rooms[b.Slug] = set
	}
	set[c] = b.SessionID
}

func (h *Hub) Unbind(c *clientConn) (Binding, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.unbindLocked(c)
}

func (h *Hub) unbindLocked(c *clientConn) (Binding, bool) {
	b, ok := h.bindings[c]
	if !ok {
		return Binding{}, false
	}
	delete(h.bindings, c)
	if set, ok := h.rooms[b.Slug]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, b.Slug)
		}
	}
	return b, true
}

func (h *Hub) Lookup(c *clientConn) (Binding, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	b, ok := h.bindings[c]
	return b, ok
}

// Rooms is the number of rooms with at least one live connection.
func (h *Hub) Rooms() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Connections counts open sockets, bound or not.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) bound() map[*clientConn]Binding {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[*clientConn]Binding, len(h.bindings))
	for c, b := range h.bindings {
		out[c] = b
	}
	return out
}

func (h *Hub) all() []*clientConn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*clientConn, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

// RoomUpdated pushes the new state of slug to its connections: a personalised
// sync_state for each, then the same room_stats frame to all.
func (h *Hub) RoomUpdated(slug string, r *room.Room) {
	h.mu.RLock()
	set, ok := h.rooms[slug]
	var targets []target
	if ok {
		targets = set.snapshot()
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	// I/O happens outside the hub lock
	var failed []*clientConn
	for _, t := range targets {
		msg, err := encodeFrame(TypeSyncState, r.ViewFor(slug, t.sessionID))
		if err != nil {
			zap.L().Error("ws.encode", zap.String("type", TypeSyncState), zap.Error(err))
			return
		}
		if err := t.conn.write(websocket.TextMessage, msg); err != nil {
			failed = append(failed, t.conn)
		}
	}

	stats, err := encodeFrame(TypeRoomStats, RoomStatsBody{Stats: r.ComputeStats()})
	if err != nil {
		zap.L().Error("ws.encode", zap.String("type", TypeRoomStats), zap.Error(err))
		return
	}
	for _, t := range targets {
		if err := t.conn.write(websocket.TextMessage, stats); err != nil {
			failed = append(failed, t.conn)
		}
	}

	// the reader loop of a failed socket sees the close and tears it down
	for _, c := range failed {
		zap.L().Debug("ws.broadcast_write", zap.String("slug", slug))
		c.close(websocket.CloseGoingAway, "write failed")
	}
}
