package events

import (
	"sync"

	"github.com/banterhq/cubby/internal/database"
)

// Hub tracks active connections and routes events to them. One connection
// per user; a new connection replaces the previous one.
type Hub struct {
	mu          sync.RWMutex
	connections map[int64]*Connection    // userID → connection
	rooms       map[int64]map[int64]bool // roomID → set of userIDs

	roomRepo database.RoomRepository
}

// NewHub creates a Hub that subscribes connecting users to their rooms.
func NewHub(rooms database.RoomRepository) *Hub {
	return &Hub{
		connections: make(map[int64]*Connection),
		rooms:       make(map[int64]map[int64]bool),
		roomRepo:    rooms,
	}
}

// register adds a connection, displacing any previous one for the user.
func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.connections[c.UserID]; ok {
		old.Close()
	}
	h.connections[c.UserID] = c
}

// unregister removes a connection and its room subscriptions.
func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	existing, ok := h.connections[c.UserID]
	if !ok || existing != c {
		return
	}
	delete(h.connections, c.UserID)

	for roomID, members := range h.rooms {
		delete(members, c.UserID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// subscribe adds a user to a room's fanout set.
func (h *Hub) subscribe(userID, roomID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[int64]bool)
	}
	h.rooms[roomID][userID] = true
}

// DispatchToUser sends a dispatch event to a specific connected user.
func (h *Hub) DispatchToUser(userID int64, event string, data any) {
	h.mu.RLock()
	c, ok := h.connections[userID]
	h.mu.RUnlock()

	if ok {
		c.SendEvent(event, data)
	}
}

// DispatchToRoom sends a dispatch event to all users subscribed to a room.
func (h *Hub) DispatchToRoom(roomID int64, event string, data any) {
	h.mu.RLock()
	members := h.rooms[roomID]
	conns := make([]*Connection, 0, len(members))
	for userID := range members {
		if c, ok := h.connections[userID]; ok {
			conns = append(conns, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.SendEvent(event, data)
	}
}
