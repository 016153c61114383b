package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User stores account credentials for the self-hosted backend.
// The remote backend owns users itself; this table exists only locally.
type User struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string
	CreatedAt    time.Time
}

// BeforeCreate assigns a server-side identifier when none is set.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
