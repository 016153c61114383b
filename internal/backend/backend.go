// Package backend defines the contracts the task store depends on: an
// identity provider for session lifecycle and a data source with query,
// mutation and change-feed operations. Implementations live in the local
// (self-hosted sqlite) and rest (remote HTTP) subpackages.
package backend

import (
	"context"

	"taskflow/internal/model"
)

// Session is an authenticated user session.
type Session struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
}

// Identity handles sign in, sign up and sign out.
type Identity interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, session *Session) error
}

// DataSource is the remote store for tasks, categories and profiles.
// All reads and writes are scoped to one user; the store never sees
// another user's rows.
type DataSource interface {
	// FetchTasks returns the user's tasks joined with their categories,
	// newest first.
	FetchTasks(ctx context.Context, userID string) ([]model.Task, error)
	FetchCategories(ctx context.Context, userID string) ([]model.Category, error)
	FetchProfile(ctx context.Context, userID string) (*model.Profile, error)

	InsertTask(ctx context.Context, task *model.Task) error
	UpdateTask(ctx context.Context, userID, taskID string, patch model.TaskPatch) error
	DeleteTask(ctx context.Context, userID, taskID string) error

	InsertCategory(ctx context.Context, category *model.Category) error
	// DeleteCategory removes the category and nulls the category reference
	// on any of the user's tasks that pointed at it.
	DeleteCategory(ctx context.Context, userID, categoryID string) error

	UpdateProfile(ctx context.Context, userID string, xpTotal, level int) (*model.Profile, error)

	// SubscribeTasks opens a change feed for the user's tasks. The channel
	// is closed when ctx is cancelled or the feed shuts down.
	SubscribeTasks(ctx context.Context, userID string) (<-chan model.TaskChange, error)
}

// Backend bundles the two contracts; both implementations satisfy it.
type Backend interface {
	Identity
	DataSource
}
