package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByPair matches a request between two users in either direction. A pair has
// at most one live request row regardless of who initiated.
type ByPair struct {
	UserA uuid.UUID
	UserB uuid.UUID
}

func (s ByPair) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(
		"(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
		s.UserA, s.UserB, s.UserB, s.UserA,
	)
}

type ByToUser struct {
	UserID uuid.UUID
}

func (s ByToUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("to_user_id = ?", s.UserID)
}

// InvolvingUser matches requests where the user is on either side.
type InvolvingUser struct {
	UserID uuid.UUID
}

func (s InvolvingUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("from_user_id = ? OR to_user_id = ?", s.UserID, s.UserID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
