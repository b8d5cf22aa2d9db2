package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id           uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	PhotoURL     *string
	About        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName is what peers see in chat headers and notifications.
func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
