package live

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/skomarov/boardkeeper/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxFrameSize = 1 << 20
)

// Handler upgrades HTTP requests to websocket sessions attached to the hub.
type Handler struct {
	hub      *Hub
	logger   logging.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, logger logging.Logger) *Handler {
	return &Handler{
		hub:    hub,
		logger: logger.With("component", "live"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Room membership is capability-based: knowing the room id
			// is the credential, so cross-origin upgrades are allowed.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeRoom joins the request's connection to roomID and relays frames until
// either side closes.
func (h *Handler) ServeRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", "room_id", roomID, "error", err.Error())
		return
	}

	session := NewSession(uuid.NewString(), roomID)
	h.hub.Register(session)

	go h.writePump(conn, session)
	h.readPump(conn, session)
}

// readPump forwards inbound frames to the hub. It owns the connection's read
// side and triggers unregistration when the peer goes away.
func (h *Handler) readPump(conn *websocket.Conn, session *Session) {
	defer func() {
		h.hub.Unregister(session)
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug(context.Background(), "websocket read error",
					"room_id", session.RoomID, "session_id", session.ID, "error", err.Error())
			}
			return
		}
		h.hub.Broadcast(Frame{RoomID: session.RoomID, Data: data, Sender: session})
	}
}

// writePump drains the session's outbound channel onto the connection and
// keeps the peer alive with pings.
func (h *Handler) writePump(conn *websocket.Conn, session *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case data, ok := <-session.Outbound():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
