package websocket

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomIDIsOrderIndependent(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	assert.Equal(t, RoomID(a, b), RoomID(b, a))
}

func TestRoomIDOrdersLexicographically(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	assert.Equal(t, a.String()+"_"+b.String(), RoomID(b, a))
}

func TestRoomIDSelfPair(t *testing.T) {
	a := uuid.New()
	assert.Equal(t, a.String()+"_"+a.String(), RoomID(a, a))
}

func TestNewFrameRoundTrip(t *testing.T) {
	payload := TypingPayload{UserID: "u1", TargetUserID: "u2"}

	raw, err := NewFrame(EventTyping, payload)
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Equal(t, EventTyping, frame.Event)

	var decoded TypingPayload
	require.NoError(t, json.Unmarshal(frame.Data, &decoded))
	assert.Equal(t, payload, decoded)
}
