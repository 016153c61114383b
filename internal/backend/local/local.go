// Package local implements the backend contracts on an embedded sqlite
// database. It backs the default single-machine setup, the devmode of the
// CLI, and most tests. Mutations publish change events to an in-process
// hub so the task store sees the same feed semantics as with the remote
// service.
package local

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskflow/internal/backend"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

// Backend is the self-hosted implementation of backend.Backend.
type Backend struct {
	db         *gorm.DB
	users      *repository.UserRepository
	profiles   *repository.ProfileRepository
	tasks      *repository.TaskRepository
	categories *repository.CategoryRepository
	hub        *feedHub
	jwtSecret  string
}

// New opens the database at dsn and wires the repositories.
func New(dsn, jwtSecret string) (*Backend, error) {
	db, err := repository.NewDB(dsn)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db, jwtSecret), nil
}

// NewWithDB wraps an already-open gorm handle. Used by tests.
func NewWithDB(db *gorm.DB, jwtSecret string) *Backend {
	return &Backend{
		db:         db,
		users:      repository.NewUserRepository(db),
		profiles:   repository.NewProfileRepository(db),
		tasks:      repository.NewTaskRepository(db),
		categories: repository.NewCategoryRepository(db),
		hub:        newFeedHub(),
		jwtSecret:  jwtSecret,
	}
}

// Close releases the underlying database connection.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (b *Backend) FetchTasks(ctx context.Context, userID string) ([]model.Task, error) {
	return b.tasks.ListByUser(ctx, userID)
}

func (b *Backend) FetchCategories(ctx context.Context, userID string) ([]model.Category, error) {
	return b.categories.ListByUser(ctx, userID)
}

func (b *Backend) FetchProfile(ctx context.Context, userID string) (*model.Profile, error) {
	return b.profiles.GetOrCreate(ctx, userID)
}

func (b *Backend) InsertTask(ctx context.Context, task *model.Task) error {
	if err := b.tasks.Create(ctx, task); err != nil {
		return err
	}
	// Echo the stored row, joined with its category, into the feed.
	stored, err := b.tasks.FindByID(ctx, task.UserID, task.ID)
	if err != nil {
		return fmt.Errorf("reload task: %w", err)
	}
	*task = *stored
	b.hub.publish(task.UserID, model.TaskChange{Kind: model.ChangeInsert, ID: task.ID, Task: stored})
	return nil
}

func (b *Backend) UpdateTask(ctx context.Context, userID, taskID string, patch model.TaskPatch) error {
	if err := b.tasks.Patch(ctx, userID, taskID, patch); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return backend.ErrNotFound
		}
		return err
	}
	p := patch
	b.hub.publish(userID, model.TaskChange{Kind: model.ChangeUpdate, ID: taskID, Patch: &p})
	return nil
}

func (b *Backend) DeleteTask(ctx context.Context, userID, taskID string) error {
	if err := b.tasks.Delete(ctx, userID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return backend.ErrNotFound
		}
		return err
	}
	b.hub.publish(userID, model.TaskChange{Kind: model.ChangeDelete, ID: taskID})
	return nil
}

func (b *Backend) InsertCategory(ctx context.Context, category *model.Category) error {
	return b.categories.Create(ctx, category)
}

// DeleteCategory removes the category and nulls the reference on tasks
// that pointed at it, publishing an update event per detached task.
func (b *Backend) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	var detached []string
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := repository.NewTaskRepository(tx)
		ids, err := tasks.DetachCategory(ctx, userID, categoryID)
		if err != nil {
			return err
		}
		detached = ids
		return repository.NewCategoryRepository(tx).Delete(ctx, userID, categoryID)
	})
	if err != nil {
		return err
	}
	for _, id := range detached {
		b.hub.publish(userID, model.TaskChange{
			Kind:  model.ChangeUpdate,
			ID:    id,
			Patch: &model.TaskPatch{ClearCategory: true},
		})
	}
	return nil
}

func (b *Backend) UpdateProfile(ctx context.Context, userID string, xpTotal, level int) (*model.Profile, error) {
	profile, err := b.profiles.SetXP(ctx, userID, xpTotal, level)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, backend.ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

// ToggleComplete flips the completion flag and stores the new XP total in
// a single transaction, closing the task/profile inconsistency window the
// two-write path leaves open.
func (b *Backend) ToggleComplete(ctx context.Context, userID, taskID string, completed bool, xpTotal, level int) (*model.Profile, error) {
	var profile *model.Profile
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		done := completed
		if err := repository.NewTaskRepository(tx).Patch(ctx, userID, taskID, model.TaskPatch{Completed: &done}); err != nil {
			return err
		}
		p, err := repository.NewProfileRepository(tx).SetXP(ctx, userID, xpTotal, level)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, backend.ErrNotFound
		}
		return nil, err
	}
	done := completed
	b.hub.publish(userID, model.TaskChange{Kind: model.ChangeUpdate, ID: taskID, Patch: &model.TaskPatch{Completed: &done}})
	return profile, nil
}

func (b *Backend) SubscribeTasks(ctx context.Context, userID string) (<-chan model.TaskChange, error) {
	return b.hub.subscribe(ctx, userID), nil
}

var _ backend.Backend = (*Backend)(nil)
