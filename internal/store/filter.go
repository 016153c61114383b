package store

import (
	"strings"

	"taskflow/internal/model"
)

// Status narrows a task list by completion state.
type Status string

const (
	StatusAll       Status = "all"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Filter narrows the task list. Zero values leave a dimension unfiltered.
type Filter struct {
	Status     Status
	Priority   model.Priority
	CategoryID string
	// Search matches title or description, case-insensitively.
	Search string
}

// Filtered returns the tasks matching every set dimension of f, keeping
// the list order.
func (s *Store) Filtered(f Filter) []model.Task {
	search := strings.ToLower(f.Search)

	var out []model.Task
	for _, task := range s.Tasks() {
		if f.Status == StatusPending && task.Completed {
			continue
		}
		if f.Status == StatusCompleted && !task.Completed {
			continue
		}
		if f.Priority != "" && task.Priority != f.Priority {
			continue
		}
		if f.CategoryID != "" && (task.CategoryID == nil || *task.CategoryID != f.CategoryID) {
			continue
		}
		if search != "" && !matchesSearch(task, search) {
			continue
		}
		out = append(out, task)
	}
	return out
}

func matchesSearch(task model.Task, search string) bool {
	if strings.Contains(strings.ToLower(task.Title), search) {
		return true
	}
	return task.Description != nil && strings.Contains(strings.ToLower(*task.Description), search)
}
