package entity

import (
	"time"

	"github.com/google/uuid"
)

type ConnectionStatus string

const (
	// Pre-review statuses set by the sender.
	ConnectionStatusInterested ConnectionStatus = "interested"
	ConnectionStatusIgnored    ConnectionStatus = "ignored"

	// Review outcomes set by the recipient.
	ConnectionStatusAccepted ConnectionStatus = "accepted"
	ConnectionStatusRejected ConnectionStatus = "rejected"
)

// IsReviewOutcome reports whether s is a status a recipient may set when
// reviewing a pending request.
func (s ConnectionStatus) IsReviewOutcome() bool {
	return s == ConnectionStatusAccepted || s == ConnectionStatusRejected
}

type ConnectionRequest struct {
	Id         uuid.UUID
	FromUserId uuid.UUID
	ToUserId   uuid.UUID
	Status     ConnectionStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
