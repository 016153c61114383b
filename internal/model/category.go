package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups tasks by area (work, health, study, etc.).
type Category struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index" json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a server-side identifier when none is set.
func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CategoryPreset is a ready-made category offered to new users.
type CategoryPreset struct {
	Name  string
	Color string
}

// DefaultCategories are the presets offered on the categories screen.
var DefaultCategories = []CategoryPreset{
	{Name: "Work", Color: "#6366f1"},
	{Name: "Personal", Color: "#10b981"},
	{Name: "Study", Color: "#f59e0b"},
}

// PresetColors is the palette offered when creating a custom category.
var PresetColors = []string{
	"#6366f1", "#f59e0b", "#10b981", "#ef4444",
	"#8b5cf6", "#06b6d4", "#f97316", "#ec4899",
}

// HasCategoryNamed reports whether any category matches name
// case-insensitively. Used to skip presets that already exist.
func HasCategoryNamed(categories []Category, name string) bool {
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}
