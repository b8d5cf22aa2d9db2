package chatclient

import (
	"encoding/json"
	"time"
)

// Message is one entry of a conversation timeline. Sender names are
// denormalized because the transport delivers either a flat sender id or a
// populated author object depending on the source (history vs live event).
type Message struct {
	SenderID        string
	SenderFirstName string
	SenderLastName  string
	Content         string
	CreatedAt       time.Time
}

// WireMessage is the raw shape delivered by both the history endpoint and the
// messageReceived channel event. SenderID is kept raw because the server
// sends either "abc123" or {"_id":"abc123","firstName":"...","lastName":"..."}.
type WireMessage struct {
	SenderID  json.RawMessage `json:"senderId"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Content   string          `json:"content"`
	CreatedAt string          `json:"createdAt"`
}

type populatedSender struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Normalize converts a wire record into the canonical Message shape.
// Malformed sender info degrades to empty fields instead of failing: a single
// bad record must not break the whole timeline.
func Normalize(w WireMessage) Message {
	m := Message{
		Content:         w.Content,
		SenderFirstName: w.FirstName,
		SenderLastName:  w.LastName,
	}

	if len(w.SenderID) > 0 {
		var flat string
		if err := json.Unmarshal(w.SenderID, &flat); err == nil {
			m.SenderID = flat
		} else {
			var populated populatedSender
			if err := json.Unmarshal(w.SenderID, &populated); err == nil {
				m.SenderID = populated.ID
				if populated.FirstName != "" {
					m.SenderFirstName = populated.FirstName
				}
				if populated.LastName != "" {
					m.SenderLastName = populated.LastName
				}
			}
		}
	}

	if w.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, w.CreatedAt); err == nil {
			m.CreatedAt = ts
		}
	}

	return m
}

// NormalizeAll maps a history page into canonical messages, preserving the
// server's ordering.
func NormalizeAll(wire []WireMessage) []Message {
	out := make([]Message, 0, len(wire))
	for _, w := range wire {
		out = append(out, Normalize(w))
	}
	return out
}
