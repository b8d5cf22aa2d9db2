package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RoomId          string    `gorm:"type:varchar(80);not null;index"`
	SenderId        uuid.UUID `gorm:"type:uuid;not null;index"`
	SenderFirstName string    `gorm:"type:varchar(100);not null"`
	SenderLastName  string    `gorm:"type:varchar(100)"`
	Content         string    `gorm:"type:varchar(1000);not null"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
