package rest

import (
	"context"
	"fmt"

	"taskflow/internal/backend"
	"taskflow/internal/model"
)

// taskInsert is the wire body for task creation: only caller-chosen
// columns, never the server-assigned id/created_at.
type taskInsert struct {
	UserID      string         `json:"user_id"`
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	Completed   bool           `json:"completed"`
	Priority    model.Priority `json:"priority"`
	CategoryID  *string        `json:"category_id,omitempty"`
	DueDate     *model.Date    `json:"due_date,omitempty"`
}

// FetchTasks selects the user's tasks joined with their categories,
// newest first.
func (b *Backend) FetchTasks(ctx context.Context, userID string) ([]model.Task, error) {
	var tasks []model.Task
	resp, err := b.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"user_id": "eq." + userID,
			"select":  "*,categories(*)",
			"order":   "created_at.desc",
		}).
		SetResult(&tasks).
		Get("/rest/v1/tasks")
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	if resp.IsError() {
		return nil, statusErr("fetch tasks", resp)
	}
	return tasks, nil
}

// InsertTask creates the row and fills in the server-assigned fields from
// the returned representation.
func (b *Backend) InsertTask(ctx context.Context, task *model.Task) error {
	var created []model.Task
	resp, err := b.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(taskInsert{
			UserID:      task.UserID,
			Title:       task.Title,
			Description: task.Description,
			Completed:   task.Completed,
			Priority:    task.Priority,
			CategoryID:  task.CategoryID,
			DueDate:     task.DueDate,
		}).
		SetResult(&created).
		Post("/rest/v1/tasks")
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	if resp.IsError() {
		return statusErr("insert task", resp)
	}
	if len(created) > 0 {
		*task = created[0]
	}
	return nil
}

// UpdateTask patches the row and asks for the updated representation so
// a filter matching nothing surfaces as ErrNotFound, like the local
// backend reports it.
func (b *Backend) UpdateTask(ctx context.Context, userID, taskID string, patch model.TaskPatch) error {
	updates := patch.Updates()
	if len(updates) == 0 {
		return nil
	}
	var updated []model.Task
	resp, err := b.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParams(map[string]string{
			"id":      "eq." + taskID,
			"user_id": "eq." + userID,
		}).
		SetBody(updates).
		SetResult(&updated).
		Patch("/rest/v1/tasks")
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if resp.IsError() {
		return statusErr("update task", resp)
	}
	if len(updated) == 0 {
		return fmt.Errorf("update task: %w", backend.ErrNotFound)
	}
	return nil
}

func (b *Backend) DeleteTask(ctx context.Context, userID, taskID string) error {
	var deleted []model.Task
	resp, err := b.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParams(map[string]string{
			"id":      "eq." + taskID,
			"user_id": "eq." + userID,
		}).
		SetResult(&deleted).
		Delete("/rest/v1/tasks")
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if resp.IsError() {
		return statusErr("delete task", resp)
	}
	if len(deleted) == 0 {
		return fmt.Errorf("delete task: %w", backend.ErrNotFound)
	}
	return nil
}
