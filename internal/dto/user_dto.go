package dto

import (
	"github.com/google/uuid"
)

// UserResponse mirrors the public profile shape the web client consumes.
type UserResponse struct {
	Id        uuid.UUID `json:"_id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName,omitempty"`
	Email     string    `json:"emailId"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
	About     string    `json:"about,omitempty"`
}
