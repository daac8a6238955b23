package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:80;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:200;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	Goals        []Goal    `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}
