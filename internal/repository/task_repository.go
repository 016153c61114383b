package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskflow/internal/model"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// ListByUser returns the user's tasks newest first, each joined with its
// category.
func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Preload("Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Preload("Category").
		Where("user_id = ? AND id = ?", userID, taskID).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Patch applies a sparse field update to the task with the given id.
func (r *TaskRepository) Patch(ctx context.Context, userID, taskID string, patch model.TaskPatch) error {
	updates := patch.Updates()
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND id = ?", userID, taskID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).
		Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DetachCategory nulls the category reference on every task of the user
// that points at the given category. Returns the ids of affected tasks.
func (r *TaskRepository) DetachCategory(ctx context.Context, userID, categoryID string) ([]string, error) {
	var ids []string
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Task{}).
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list tasks for category: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := db.Model(&model.Task{}).
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Update("category_id", nil).Error; err != nil {
		return nil, fmt.Errorf("detach category: %w", err)
	}
	return ids, nil
}
