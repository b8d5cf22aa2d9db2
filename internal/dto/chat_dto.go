package dto

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessageResponse is one history line. Sender display names travel with
// the message so the client never resolves ids against a roster.
type ChatMessageResponse struct {
	Id        uuid.UUID `json:"_id"`
	SenderId  uuid.UUID `json:"senderId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type ChatHistoryResponse struct {
	Messages []ChatMessageResponse `json:"messages"`
}
