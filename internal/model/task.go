package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Priority classifies how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a single item in the planner.
type Task struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"index" json:"user_id"`
	CategoryID  *string   `gorm:"index" json:"category_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `gorm:"default:false" json:"completed"`
	Priority    Priority  `gorm:"default:medium" json:"priority"`
	DueDate     *Date     `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`

	// Category is the denormalized join populated on reads, never written back.
	Category *Category `gorm:"foreignKey:CategoryID" json:"categories,omitempty"`
}

// BeforeCreate assigns a server-side identifier when none is set.
func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Overdue reports whether the task is pending with a due date before today.
func (t *Task) Overdue(now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(DateOf(now))
}

// NewTaskInput carries the caller-supplied fields for task creation.
// Title is required; everything else falls back to the stated defaults.
type NewTaskInput struct {
	Title       string
	Description *string
	Priority    Priority
	CategoryID  *string
	DueDate     *Date
}

// Normalize trims the title and fills defaulted fields in place.
func (in *NewTaskInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
}
