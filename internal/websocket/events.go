package websocket

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Wire event names. Inbound frames carry joinChat/sendMessage/typing; the
// server pushes messageReceived and typing back out.
const (
	EventJoinChat        = "joinChat"
	EventSendMessage     = "sendMessage"
	EventTyping          = "typing"
	EventMessageReceived = "messageReceived"
	EventJoinRejected    = "joinRejected"
)

// Frame is the envelope every websocket message travels in.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type JoinChatPayload struct {
	FirstName    string `json:"firstName"`
	UserID       string `json:"userId"`
	TargetUserID string `json:"targetUserId"`
}

type SendMessagePayload struct {
	FirstName    string `json:"firstName"`
	UserID       string `json:"userId"`
	TargetUserID string `json:"targetUserId"`
	Content      string `json:"content"`
}

type TypingPayload struct {
	UserID       string `json:"userId"`
	TargetUserID string `json:"targetUserId"`
}

// JoinRejectedPayload tells a client its join was refused, so the view can
// render a conversation-not-available state instead of waiting silently.
type JoinRejectedPayload struct {
	TargetUserID string `json:"targetUserId"`
	Reason       string `json:"reason"`
}

// MessageBroadcast is the messageReceived payload pushed to a room after a
// message is persisted.
type MessageBroadcast struct {
	SenderID  uuid.UUID `json:"senderId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewFrame marshals a payload into the wire envelope.
func NewFrame(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: data})
}

// RoomID derives the shared room key for a user pair. Both sides compute the
// same key regardless of who initiates, so the ids are ordered first.
func RoomID(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if strings.Compare(as, bs) > 0 {
		as, bs = bs, as
	}
	return as + "_" + bs
}
