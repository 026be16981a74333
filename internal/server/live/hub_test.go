package live

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skomarov/boardkeeper/internal/logging"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(discardLogger())
	hub.Start()
	t.Cleanup(hub.Shutdown)
	return hub
}

func recv(t *testing.T, s *Session) []byte {
	t.Helper()
	select {
	case data := <-s.Outbound():
		return data
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func decodeNotice(t *testing.T, data []byte) map[string]string {
	t.Helper()
	var msg map[string]string
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func waitForCount(t *testing.T, hub *Hub, roomID string, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.Count(roomID) == want
	}, 2*time.Second, 5*time.Millisecond)
}

func TestHub_JoinNotice(t *testing.T) {
	hub := startHub(t)

	first := NewSession("s1", "room-a")
	hub.Register(first)
	waitForCount(t, hub, "room-a", 1)

	second := NewSession("s2", "room-a")
	hub.Register(second)

	msg := decodeNotice(t, recv(t, first))
	assert.Equal(t, "join", msg["type"])
	assert.Equal(t, "s2", msg["sessionId"])
}

func TestHub_BroadcastSkipsSender(t *testing.T) {
	hub := startHub(t)

	a := NewSession("a", "room")
	b := NewSession("b", "room")
	c := NewSession("c", "room")
	hub.Register(a)
	hub.Register(b)
	hub.Register(c)
	waitForCount(t, hub, "room", 3)

	// Drain the join notices delivered to earlier members.
	recv(t, a) // b joined
	recv(t, a) // c joined
	recv(t, b) // c joined

	hub.Broadcast(Frame{RoomID: "room", Data: []byte("cursor"), Sender: a})

	assert.Equal(t, []byte("cursor"), recv(t, b))
	assert.Equal(t, []byte("cursor"), recv(t, c))
	select {
	case data := <-a.Outbound():
		t.Fatalf("sender received its own frame: %q", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_RoomsAreIsolated(t *testing.T) {
	hub := startHub(t)

	a := NewSession("a", "room-1")
	b := NewSession("b", "room-2")
	hub.Register(a)
	hub.Register(b)
	waitForCount(t, hub, "room-1", 1)
	waitForCount(t, hub, "room-2", 1)

	hub.Broadcast(Frame{RoomID: "room-1", Data: []byte("x"), Sender: nil})

	assert.Equal(t, []byte("x"), recv(t, a))
	select {
	case data := <-b.Outbound():
		t.Fatalf("frame leaked across rooms: %q", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_LeaveNoticeAndChannelClose(t *testing.T) {
	hub := startHub(t)

	a := NewSession("a", "room")
	b := NewSession("b", "room")
	hub.Register(a)
	hub.Register(b)
	waitForCount(t, hub, "room", 2)
	recv(t, a) // b's join notice

	hub.Unregister(b)
	waitForCount(t, hub, "room", 1)

	msg := decodeNotice(t, recv(t, a))
	assert.Equal(t, "leave", msg["type"])
	assert.Equal(t, "b", msg["sessionId"])

	_, open := <-b.Outbound()
	assert.False(t, open, "departed session's channel should be closed")
}

func TestHub_UnregisterUnknownSessionIsNoop(t *testing.T) {
	hub := startHub(t)

	a := NewSession("a", "room")
	hub.Register(a)
	waitForCount(t, hub, "room", 1)

	hub.Unregister(NewSession("ghost", "room"))
	hub.Unregister(NewSession("ghost", "other-room"))

	waitForCount(t, hub, "room", 1)
}

func TestHub_SlowConsumerDoesNotBlock(t *testing.T) {
	hub := startHub(t)

	slow := NewSession("slow", "room")
	fast := NewSession("fast", "room")
	hub.Register(slow)
	hub.Register(fast)
	waitForCount(t, hub, "room", 2)
	recv(t, slow) // fast's join notice

	// Overfill the slow session's buffer; the hub must keep serving fast.
	for i := 0; i < sessionSendBuffer+16; i++ {
		hub.Broadcast(Frame{RoomID: "room", Data: []byte("f"), Sender: fast})
	}

	hub.Broadcast(Frame{RoomID: "room", Data: []byte("last"), Sender: slow})
	assert.Equal(t, []byte("last"), recv(t, fast))
}
