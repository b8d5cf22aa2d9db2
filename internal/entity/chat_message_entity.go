package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one persisted line of a 1:1 conversation. Sender names are
// denormalized so history reads never join against users.
type ChatMessage struct {
	Id              uuid.UUID
	RoomId          string
	SenderId        uuid.UUID
	SenderFirstName string
	SenderLastName  string
	Content         string
	CreatedAt       time.Time
}
