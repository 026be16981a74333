// Package live implements the ephemeral per-room broadcast channel used for
// cursor positions and in-flight edit events. Frames are relayed to the
// other members of a room and never persisted or reconciled; durable state
// flows only through the room store.
package live

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/skomarov/boardkeeper/internal/logging"
)

// Session is one connected peer in one room.
type Session struct {
	ID     string
	RoomID string

	send chan []byte
}

const sessionSendBuffer = 64

func NewSession(id, roomID string) *Session {
	return &Session{ID: id, RoomID: roomID, send: make(chan []byte, sessionSendBuffer)}
}

// Outbound is the channel the write pump (or a test) drains.
func (s *Session) Outbound() <-chan []byte { return s.send }

// Frame is an opaque payload broadcast to a room, minus its sender.
type Frame struct {
	RoomID string
	Data   []byte
	Sender *Session
}

// Hub routes frames between the sessions of each room. All membership
// changes and broadcasts go through one event loop, so the room maps are
// only touched from a single goroutine.
type Hub struct {
	logger logging.Logger

	rooms map[string]map[*Session]struct{}

	register   chan *Session
	unregister chan *Session
	broadcast  chan Frame
	done       chan struct{}

	mu   sync.RWMutex // guards counts read outside the loop
	size map[string]int
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		logger:     logger.With("component", "live"),
		rooms:      make(map[string]map[*Session]struct{}),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		broadcast:  make(chan Frame, 256),
		done:       make(chan struct{}),
		size:       make(map[string]int),
	}
}

// Start launches the event loop.
func (h *Hub) Start() {
	go h.run()
}

// Shutdown stops the loop and closes every session.
func (h *Hub) Shutdown() {
	close(h.done)
}

func (h *Hub) Register(s *Session)   { h.register <- s }
func (h *Hub) Unregister(s *Session) { h.unregister <- s }
func (h *Hub) Broadcast(f Frame)     { h.broadcast <- f }

// Count returns the number of sessions currently in the room.
func (h *Hub) Count(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size[roomID]
}

func (h *Hub) run() {
	ctx := context.Background()
	for {
		select {
		case <-h.done:
			for _, sessions := range h.rooms {
				for s := range sessions {
					close(s.send)
				}
			}
			h.logger.Info(ctx, "live hub stopped")
			return

		case s := <-h.register:
			h.handleRegister(ctx, s)

		case s := <-h.unregister:
			h.handleUnregister(ctx, s)

		case f := <-h.broadcast:
			h.relay(f)
		}
	}
}

func (h *Hub) handleRegister(ctx context.Context, s *Session) {
	if h.rooms[s.RoomID] == nil {
		h.rooms[s.RoomID] = make(map[*Session]struct{})
	}
	h.rooms[s.RoomID][s] = struct{}{}
	h.setSize(s.RoomID, len(h.rooms[s.RoomID]))

	h.logger.Debug(ctx, "session joined", "room_id", s.RoomID, "session_id", s.ID,
		"members", len(h.rooms[s.RoomID]))

	h.relay(Frame{RoomID: s.RoomID, Data: notice("join", s.ID), Sender: s})
}

func (h *Hub) handleUnregister(ctx context.Context, s *Session) {
	sessions, ok := h.rooms[s.RoomID]
	if !ok {
		return
	}
	if _, ok := sessions[s]; !ok {
		return
	}
	delete(sessions, s)
	close(s.send)
	if len(sessions) == 0 {
		delete(h.rooms, s.RoomID)
	}
	h.setSize(s.RoomID, len(sessions))

	h.logger.Debug(ctx, "session left", "room_id", s.RoomID, "session_id", s.ID,
		"members", len(sessions))

	h.relay(Frame{RoomID: s.RoomID, Data: notice("leave", s.ID), Sender: s})
}

// relay fans a frame out to every room member except the sender. A member
// whose buffer is full misses the frame rather than stalling the loop;
// live traffic is lossy by contract.
func (h *Hub) relay(f Frame) {
	for s := range h.rooms[f.RoomID] {
		if s == f.Sender {
			continue
		}
		select {
		case s.send <- f.Data:
		default:
		}
	}
}

func (h *Hub) setSize(roomID string, n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n == 0 {
		delete(h.size, roomID)
		return
	}
	h.size[roomID] = n
}

func notice(kind, sessionID string) []byte {
	msg, _ := json.Marshal(map[string]string{
		"type":      kind,
		"sessionId": sessionID,
	})
	return msg
}
