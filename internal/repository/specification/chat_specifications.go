package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByRoomID struct {
	RoomID string
}

func (s ByRoomID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("room_id = ?", s.RoomID)
}

type BySender struct {
	SenderID uuid.UUID
}

func (s BySender) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("sender_id = ?", s.SenderID)
}
