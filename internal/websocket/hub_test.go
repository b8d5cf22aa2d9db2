package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	connected bool
	err       error
}

func (v stubVerifier) AreConnected(ctx context.Context, userID, targetID uuid.UUID) (bool, error) {
	return v.connected, v.err
}

type stubSink struct{}

func (stubSink) EnqueueMessage(ctx context.Context, msg InboundChatMessage) error { return nil }

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newTestHub(t *testing.T, verifier RosterVerifier) *Hub {
	t.Helper()
	hub := NewHub(nil, verifier, stubSink{}, nopLogger{})
	go hub.Run()
	return hub
}

func registerClient(t *testing.T, hub *Hub, userID uuid.UUID, buffer int) *Client {
	t.Helper()
	client := &Client{
		Hub:    hub,
		UserID: userID,
		Send:   make(chan []byte, buffer),
	}
	hub.register <- client
	waitFor(t, func() bool { return hub.IsOnline(userID) }, "client never registered")
	return client
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	assert.Eventually(t, cond, time.Second, 5*time.Millisecond, msg)
}

func TestJoinRoomRefusesUnconnectedPair(t *testing.T) {
	hub := newTestHub(t, stubVerifier{connected: false})
	a, b := uuid.New(), uuid.New()

	_, err := hub.JoinRoom(context.Background(), a, b)

	assert.ErrorIs(t, err, ErrNotInRoster)
	assert.False(t, hub.InRoom(a, RoomID(a, b)))
}

func TestJoinRoomIsIdempotent(t *testing.T) {
	hub := newTestHub(t, stubVerifier{connected: true})
	a, b := uuid.New(), uuid.New()

	first, err := hub.JoinRoom(context.Background(), a, b)
	require.NoError(t, err)
	second, err := hub.JoinRoom(context.Background(), a, b)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, hub.InRoom(a, first))
}

func TestDeliverToRoomExcludesSender(t *testing.T) {
	hub := newTestHub(t, stubVerifier{connected: true})
	a, b := uuid.New(), uuid.New()
	sender := registerClient(t, hub, a, 8)
	receiver := registerClient(t, hub, b, 8)

	roomID, err := hub.JoinRoom(context.Background(), a, b)
	require.NoError(t, err)
	_, err = hub.JoinRoom(context.Background(), b, a)
	require.NoError(t, err)

	hub.DeliverToRoom(roomID, a, []byte("frame"))

	select {
	case got := <-receiver.Send:
		assert.Equal(t, []byte("frame"), got)
	case <-time.After(time.Second):
		t.Fatal("peer never received the frame")
	}
	select {
	case <-sender.Send:
		t.Fatal("excluded sender must not receive the frame")
	default:
	}
}

func TestDeliverToRoomDropsSlowClient(t *testing.T) {
	hub := newTestHub(t, stubVerifier{connected: true})
	a, b := uuid.New(), uuid.New()
	registerClient(t, hub, a, 8)
	// One-slot buffer that is never drained.
	slow := registerClient(t, hub, b, 1)

	roomID, err := hub.JoinRoom(context.Background(), a, b)
	require.NoError(t, err)
	_, err = hub.JoinRoom(context.Background(), b, a)
	require.NoError(t, err)

	hub.DeliverToRoom(roomID, uuid.Nil, []byte("one"))
	hub.DeliverToRoom(roomID, uuid.Nil, []byte("two"))

	// The slow client is unregistered, never panicking the hub, and the
	// survivor keeps receiving.
	waitFor(t, func() bool { return !hub.IsOnline(b) }, "slow client never dropped")
	hub.DeliverToRoom(roomID, uuid.Nil, []byte("three"))
	assert.True(t, hub.IsOnline(a))

	// Channel was closed exactly once by the unregister path.
	_, open := <-slow.Send
	assert.True(t, open, "buffered frame should still be readable")
	for range slow.Send {
	}
}
