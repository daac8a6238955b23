package models

import (
	"time"

	"github.com/google/uuid"
)

// RevokedSession marks a session token id as logged out until it would have
// expired anyway.
type RevokedSession struct {
	TokenID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uint      `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}
