package dto

import (
	"time"

	"github.com/google/uuid"
)

type ConnectionListResponse struct {
	Data []UserResponse `json:"data"`
}

type PendingRequestResponse struct {
	Id        uuid.UUID    `json:"_id"`
	FromUser  UserResponse `json:"fromUserId"`
	Status    string       `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
}

type PendingRequestListResponse struct {
	Data []PendingRequestResponse `json:"data"`
}

type SendRequestParams struct {
	Status string `validate:"required,oneof=interested ignored"`
}

type ReviewRequestParams struct {
	Status string `validate:"required,oneof=accepted rejected"`
}
