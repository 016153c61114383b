// Package store holds the signed-in user's tasks, categories and profile
// in memory, synchronized with the backend: a full fetch on open, a change
// feed applied while the session lives, and write-through operations that
// keep the local copy consistent with what was sent. The in-memory state
// is a cache; the backend owns the durable copy.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"taskflow/internal/backend"
	"taskflow/internal/model"
	"taskflow/internal/xp"
)

// Store is the session-scoped state container. Construct one with Open
// after sign-in and Close it on sign-out; it has no lifecycle of its own.
type Store struct {
	source backend.DataSource
	userID string
	log    zerolog.Logger

	mu         sync.Mutex
	tasks      []model.Task
	categories []model.Category
	profile    *model.Profile
	loading    bool

	watchMu   sync.Mutex
	watchNext int
	watchers  map[int]chan model.TaskChange

	cancel context.CancelFunc
	done   chan struct{}
}

// completionToggler is implemented by backends that can flip a task's
// completion flag and store the new XP total atomically. When absent the
// store falls back to two independent writes.
type completionToggler interface {
	ToggleComplete(ctx context.Context, userID, taskID string, completed bool, xpTotal, level int) (*model.Profile, error)
}

// Open fetches the user's data, subscribes to the task change feed and
// starts the single goroutine that applies feed events.
func Open(ctx context.Context, source backend.DataSource, userID string, log zerolog.Logger) (*Store, error) {
	s := &Store{
		source:   source,
		userID:   userID,
		log:      log,
		loading:  true,
		watchers: make(map[int]chan model.TaskChange),
		done:     make(chan struct{}),
	}

	feedCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	// Subscribe before the fetch so no event between the two is lost;
	// replaying one against freshly fetched state is harmless because
	// event application is idempotent.
	feed, err := source.SubscribeTasks(feedCtx, userID)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe tasks: %w", err)
	}

	if err := s.refetch(ctx); err != nil {
		cancel()
		return nil, err
	}

	go s.run(feed)
	return s, nil
}

// Close tears down the feed subscription and clears all local state.
func (s *Store) Close() {
	s.cancel()
	<-s.done

	s.mu.Lock()
	s.tasks = nil
	s.categories = nil
	s.profile = nil
	s.loading = false
	s.mu.Unlock()
}

func (s *Store) refetch(ctx context.Context) error {
	tasks, err := s.source.FetchTasks(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("fetch tasks: %w", err)
	}
	categories, err := s.source.FetchCategories(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("fetch categories: %w", err)
	}
	profile, err := s.source.FetchProfile(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}

	s.mu.Lock()
	s.tasks = tasks
	s.categories = categories
	s.profile = profile
	s.loading = false
	s.mu.Unlock()
	return nil
}

// run is the only consumer of the feed channel, so event application
// never interleaves with itself.
func (s *Store) run(feed <-chan model.TaskChange) {
	defer close(s.done)
	for change := range feed {
		s.apply(change)
	}
}

// apply patches local state with one change event and notifies watchers
// when state actually changed. Applying the same event twice leaves
// state unchanged and emits no second notification.
func (s *Store) apply(change model.TaskChange) {
	s.mu.Lock()
	applied := false
	switch change.Kind {
	case model.ChangeInsert:
		if change.Task != nil && s.indexOf(change.Task.ID) < 0 {
			s.tasks = append([]model.Task{*change.Task}, s.tasks...)
			applied = true
		}
	case model.ChangeUpdate:
		if change.Patch != nil {
			if i := s.indexOf(change.ID); i >= 0 {
				change.Patch.Apply(&s.tasks[i])
				applied = true
			}
		}
	case model.ChangeDelete:
		if i := s.indexOf(change.ID); i >= 0 {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			applied = true
		}
	default:
		s.log.Warn().Str("kind", string(change.Kind)).Msg("ignoring unknown change kind")
	}
	s.mu.Unlock()

	if applied {
		s.notify(change)
	}
}

// Watch returns a channel of applied task changes, local writes and feed
// events alike. The channel is closed when ctx is cancelled; slow
// receivers drop events rather than block the store.
func (s *Store) Watch(ctx context.Context) <-chan model.TaskChange {
	ch := make(chan model.TaskChange, 64)

	s.watchMu.Lock()
	id := s.watchNext
	s.watchNext++
	s.watchers[id] = ch
	s.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		s.watchMu.Lock()
		delete(s.watchers, id)
		s.watchMu.Unlock()
		close(ch)
	}()

	return ch
}

func (s *Store) notify(change model.TaskChange) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, ch := range s.watchers {
		select {
		case ch <- change:
		default:
		}
	}
}

// indexOf returns the position of the task with the given id, or -1.
// Callers must hold mu.
func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Loading reports whether the initial fetch is still in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Tasks returns a copy of the task list, newest first.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Categories returns a copy of the category list.
func (s *Store) Categories() []model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Profile returns a copy of the gamification profile, or nil before the
// first fetch completes.
func (s *Store) Profile() *model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// AddTask validates the input, writes through and prepends the created
// task locally (unless the feed echo beat us to it).
func (s *Store) AddTask(ctx context.Context, input model.NewTaskInput) (*model.Task, error) {
	input.Normalize()
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !input.Priority.Valid() {
		return nil, fmt.Errorf("unknown priority %q", input.Priority)
	}

	task := model.Task{
		UserID:      s.userID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		CategoryID:  input.CategoryID,
		DueDate:     input.DueDate,
	}
	if err := s.source.InsertTask(ctx, &task); err != nil {
		return nil, fmt.Errorf("add task: %w", err)
	}

	s.apply(model.TaskChange{Kind: model.ChangeInsert, ID: task.ID, Task: &task})
	return &task, nil
}

// UpdateTask writes a sparse patch through and applies it locally.
func (s *Store) UpdateTask(ctx context.Context, taskID string, patch model.TaskPatch) error {
	if patch.IsZero() {
		return nil
	}
	if patch.Title != nil && *patch.Title == "" {
		return fmt.Errorf("title is required")
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return fmt.Errorf("unknown priority %q", *patch.Priority)
	}
	if err := s.source.UpdateTask(ctx, s.userID, taskID, patch); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	s.apply(model.TaskChange{Kind: model.ChangeUpdate, ID: taskID, Patch: &patch})
	return nil
}

// DeleteTask removes the task remotely and locally.
func (s *Store) DeleteTask(ctx context.Context, taskID string) error {
	if err := s.source.DeleteTask(ctx, s.userID, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.apply(model.TaskChange{Kind: model.ChangeDelete, ID: taskID})
	return nil
}

// ToggleComplete flips the completion flag and adjusts XP: +10 when
// completing, -10 when un-completing but only if the total already covers
// the award. Level is always recomputed from the formula.
func (s *Store) ToggleComplete(ctx context.Context, task model.Task) error {
	completed := !task.Completed

	s.mu.Lock()
	var newXP, newLevel int
	adjustXP := false
	if s.profile != nil {
		if completed {
			newXP = xp.Award(s.profile.XP)
			adjustXP = true
		} else {
			newXP, adjustXP = xp.Deduct(s.profile.XP)
		}
		newLevel = xp.Level(newXP)
	}
	s.mu.Unlock()

	var profile *model.Profile
	if adjustXP {
		if toggler, ok := s.source.(completionToggler); ok {
			p, err := toggler.ToggleComplete(ctx, s.userID, task.ID, completed, newXP, newLevel)
			if err != nil {
				return fmt.Errorf("toggle task: %w", err)
			}
			profile = p
		} else {
			// Two independent writes; an interruption between them leaves
			// the completion flag and XP diverged until the next toggle.
			if err := s.source.UpdateTask(ctx, s.userID, task.ID, model.TaskPatch{Completed: &completed}); err != nil {
				return fmt.Errorf("toggle task: %w", err)
			}
			p, err := s.source.UpdateProfile(ctx, s.userID, newXP, newLevel)
			if err != nil {
				return fmt.Errorf("update profile: %w", err)
			}
			profile = p
		}
	} else {
		if err := s.source.UpdateTask(ctx, s.userID, task.ID, model.TaskPatch{Completed: &completed}); err != nil {
			return fmt.Errorf("toggle task: %w", err)
		}
	}

	s.apply(model.TaskChange{Kind: model.ChangeUpdate, ID: task.ID, Patch: &model.TaskPatch{Completed: &completed}})
	if profile != nil {
		s.mu.Lock()
		s.profile = profile
		s.mu.Unlock()
	}
	return nil
}

// AddCategory inserts the category and refetches the full list so local
// order matches the backend.
func (s *Store) AddCategory(ctx context.Context, name, color string) (*model.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if color == "" {
		return nil, fmt.Errorf("color is required")
	}

	category := model.Category{UserID: s.userID, Name: name, Color: color}
	if err := s.source.InsertCategory(ctx, &category); err != nil {
		return nil, fmt.Errorf("add category: %w", err)
	}

	categories, err := s.source.FetchCategories(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("refetch categories: %w", err)
	}
	s.mu.Lock()
	s.categories = categories
	s.mu.Unlock()
	return &category, nil
}

// DeleteCategory removes the category; tasks that referenced it become
// uncategorized both remotely and in the local cache.
func (s *Store) DeleteCategory(ctx context.Context, categoryID string) error {
	if err := s.source.DeleteCategory(ctx, s.userID, categoryID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	s.mu.Lock()
	kept := s.categories[:0]
	for _, c := range s.categories {
		if c.ID != categoryID {
			kept = append(kept, c)
		}
	}
	s.categories = kept
	for i := range s.tasks {
		if s.tasks[i].CategoryID != nil && *s.tasks[i].CategoryID == categoryID {
			s.tasks[i].CategoryID = nil
			s.tasks[i].Category = nil
		}
	}
	s.mu.Unlock()
	return nil
}
