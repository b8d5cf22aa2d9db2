package chatclient

import (
	"context"
	"encoding/json"
)

// Channel event names shared with the chat service.
const (
	EmitJoinChat    = "joinChat"
	EmitSendMessage = "sendMessage"
	EmitTyping      = "typing"

	eventMessageReceived = "messageReceived"
	eventTyping          = "typing"
	eventJoinRejected    = "joinRejected"
)

// EventKind classifies transport-level events delivered to a session.
type EventKind int

const (
	// EventConnected signals the transport is live. Join and send are gated
	// on this; operations attempted before it would race a not-yet
	// established channel.
	EventConnected EventKind = iota

	// EventDisconnected signals the channel dropped. The transport keeps
	// reconnecting internally; the session only resets its joined state.
	EventDisconnected

	// EventMessage carries a messageReceived payload.
	EventMessage

	// EventTyping carries a typing notification payload.
	EventTyping

	// EventJoinRejected signals the service refused the room join, typically
	// because the pair shares no accepted connection.
	EventJoinRejected
)

// Event is one item of the transport's inbound stream.
type Event struct {
	Kind    EventKind
	Payload json.RawMessage
}

// Transport is one logical bidirectional channel against the chat service.
// Implementations own reconnection policy; the session owns room semantics.
type Transport interface {
	// Connect starts the channel. It returns immediately; readiness is
	// signalled by an EventConnected on Events.
	Connect(ctx context.Context) error

	// Emit sends a named event with a JSON payload. It returns
	// ErrNotConnected while the channel is down; it never queues.
	Emit(event string, payload interface{}) error

	// Events is the inbound stream. It is closed after Close, once no
	// further event can be delivered.
	Events() <-chan Event

	// Close tears the channel down. Idempotent.
	Close() error
}

// HistoryFetcher retrieves the one-shot historical page for a conversation.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, targetUserID string) ([]Message, error)
}

// JoinChatPayload scopes delivery to the conversation room for
// (userId, targetUserId).
type JoinChatPayload struct {
	FirstName    string `json:"firstName"`
	UserID       string `json:"userId"`
	TargetUserID string `json:"targetUserId"`
}

// SendMessagePayload carries one outbound chat message.
type SendMessagePayload struct {
	FirstName    string `json:"firstName"`
	UserID       string `json:"userId"`
	TargetUserID string `json:"targetUserId"`
	Content      string `json:"content"`
}

// TypingPayload is the fire-and-forget typing signal.
type TypingPayload struct {
	UserID       string `json:"userId"`
	TargetUserID string `json:"targetUserId"`
}

// JoinRejectedPayload is the service's refusal of a room join.
type JoinRejectedPayload struct {
	TargetUserID string `json:"targetUserId"`
	Reason       string `json:"reason"`
}
