package model

import (
	"time"

	"github.com/google/uuid"
)

type ConnectionRequest struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FromUserId uuid.UUID `gorm:"type:uuid;not null;index:idx_connection_pair,unique"`
	ToUserId   uuid.UUID `gorm:"type:uuid;not null;index:idx_connection_pair,unique"`
	Status     string    `gorm:"type:varchar(20);not null;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (ConnectionRequest) TableName() string {
	return "connection_requests"
}
