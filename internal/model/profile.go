package model

import "time"

// Profile keeps per-user gamification state. ID equals the user ID.
type Profile struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Username  *string   `json:"username"`
	XP        int       `gorm:"default:0;column:xp" json:"xp"`
	Level     int       `gorm:"default:1" json:"level"`
	CreatedAt time.Time `json:"created_at"`
}
