package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/model"
)

// fakeSource is an in-memory backend.DataSource with a controllable feed.
type fakeSource struct {
	mu         sync.Mutex
	tasks      []model.Task
	categories []model.Category
	profile    model.Profile

	feed chan model.TaskChange

	insertErr  error
	updateErr  error
	deleteErr  error
	profileErr error

	taskPatches    []model.TaskPatch
	profileUpdates [][2]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		profile: model.Profile{ID: "u-1", XP: 0, Level: 1},
		feed:    make(chan model.TaskChange, 16),
	}
}

func (f *fakeSource) FetchTasks(context.Context, string) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

func (f *fakeSource) FetchCategories(context.Context, string) ([]model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Category, len(f.categories))
	copy(out, f.categories)
	return out, nil
}

func (f *fakeSource) FetchProfile(context.Context, string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.profile
	return &p, nil
}

func (f *fakeSource) InsertTask(_ context.Context, task *model.Task) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	// Server-assigned fields.
	task.ID = uuid.NewString()
	task.CreatedAt = time.Now().UTC()
	f.mu.Lock()
	f.tasks = append([]model.Task{*task}, f.tasks...)
	f.mu.Unlock()
	return nil
}

func (f *fakeSource) UpdateTask(_ context.Context, _, taskID string, patch model.TaskPatch) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taskPatches = append(f.taskPatches, patch)
	for i := range f.tasks {
		if f.tasks[i].ID == taskID {
			patch.Apply(&f.tasks[i])
		}
	}
	return nil
}

func (f *fakeSource) DeleteTask(_ context.Context, _, taskID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == taskID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeSource) InsertCategory(_ context.Context, category *model.Category) error {
	category.ID = uuid.NewString()
	category.CreatedAt = time.Now().UTC()
	f.mu.Lock()
	f.categories = append(f.categories, *category)
	f.mu.Unlock()
	return nil
}

func (f *fakeSource) DeleteCategory(_ context.Context, _, categoryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.categories {
		if f.categories[i].ID == categoryID {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeSource) UpdateProfile(_ context.Context, userID string, xpTotal, level int) (*model.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileUpdates = append(f.profileUpdates, [2]int{xpTotal, level})
	f.profile.XP = xpTotal
	f.profile.Level = level
	p := f.profile
	return &p, nil
}

func (f *fakeSource) SubscribeTasks(ctx context.Context, _ string) (<-chan model.TaskChange, error) {
	go func() {
		<-ctx.Done()
		close(f.feed)
	}()
	return f.feed, nil
}

func openStore(t *testing.T, source *fakeSource) *Store {
	t.Helper()
	st, err := Open(context.Background(), source, "u-1", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return st
}

func seededTask(id, title string) model.Task {
	return model.Task{ID: id, UserID: "u-1", Title: title, Priority: model.PriorityMedium, CreatedAt: time.Now().UTC()}
}

func TestOpenFetchesEverything(t *testing.T) {
	source := newFakeSource()
	source.tasks = []model.Task{seededTask("t-1", "one"), seededTask("t-2", "two")}
	source.categories = []model.Category{{ID: "c-1", UserID: "u-1", Name: "Work", Color: "#6366f1"}}
	source.profile = model.Profile{ID: "u-1", XP: 30, Level: 1}

	st := openStore(t, source)

	assert.False(t, st.Loading())
	assert.Len(t, st.Tasks(), 2)
	assert.Len(t, st.Categories(), 1)
	require.NotNil(t, st.Profile())
	assert.Equal(t, 30, st.Profile().XP)
}

func TestCloseClearsState(t *testing.T) {
	source := newFakeSource()
	source.tasks = []model.Task{seededTask("t-1", "one")}

	st, err := Open(context.Background(), source, "u-1", zerolog.Nop())
	require.NoError(t, err)
	st.Close()

	assert.Empty(t, st.Tasks())
	assert.Empty(t, st.Categories())
	assert.Nil(t, st.Profile())
}

func TestAddTaskDefaults(t *testing.T) {
	source := newFakeSource()
	st := openStore(t, source)

	task, err := st.AddTask(context.Background(), model.NewTaskInput{Title: "  buy milk  "})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "buy milk", task.Title)
	assert.False(t, task.Completed)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Nil(t, task.Description)
	assert.Nil(t, task.CategoryID)
	assert.Nil(t, task.DueDate)
	assert.False(t, task.CreatedAt.IsZero())

	tasks := st.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)
}

func TestAddTaskValidation(t *testing.T) {
	st := openStore(t, newFakeSource())

	_, err := st.AddTask(context.Background(), model.NewTaskInput{Title: "   "})
	assert.Error(t, err)

	_, err = st.AddTask(context.Background(), model.NewTaskInput{Title: "x", Priority: "urgent"})
	assert.Error(t, err)

	assert.Empty(t, st.Tasks())
}

func TestAddTaskWriteFailureLeavesStateUntouched(t *testing.T) {
	source := newFakeSource()
	source.insertErr = errors.New("boom")
	st := openStore(t, source)

	_, err := st.AddTask(context.Background(), model.NewTaskInput{Title: "x"})
	assert.Error(t, err)
	assert.Empty(t, st.Tasks())
}

func TestToggleCompleteAwardsXP(t *testing.T) {
	source := newFakeSource()
	task := seededTask("t-1", "one")
	source.tasks = []model.Task{task}
	source.profile = model.Profile{ID: "u-1", XP: 95, Level: 1}
	st := openStore(t, source)

	require.NoError(t, st.ToggleComplete(context.Background(), task))

	profile := st.Profile()
	require.NotNil(t, profile)
	assert.Equal(t, 105, profile.XP)
	assert.Equal(t, 2, profile.Level)
	assert.True(t, st.Tasks()[0].Completed)

	// Un-complete it again: back to 95 and level 1.
	completed := st.Tasks()[0]
	require.NoError(t, st.ToggleComplete(context.Background(), completed))

	profile = st.Profile()
	assert.Equal(t, 95, profile.XP)
	assert.Equal(t, 1, profile.Level)
	assert.False(t, st.Tasks()[0].Completed)
}

func TestToggleCompleteDeductionGuard(t *testing.T) {
	source := newFakeSource()
	task := seededTask("t-1", "one")
	task.Completed = true
	source.tasks = []model.Task{task}
	source.profile = model.Profile{ID: "u-1", XP: 5, Level: 1}
	st := openStore(t, source)

	require.NoError(t, st.ToggleComplete(context.Background(), task))

	// XP below the award amount: the deduction is skipped entirely.
	profile := st.Profile()
	assert.Equal(t, 5, profile.XP)
	assert.Equal(t, 1, profile.Level)
	assert.Empty(t, source.profileUpdates)

	// The completion flag still flipped.
	assert.False(t, st.Tasks()[0].Completed)
}

func TestToggleCompleteTaskWriteFailure(t *testing.T) {
	source := newFakeSource()
	task := seededTask("t-1", "one")
	source.tasks = []model.Task{task}
	source.updateErr = errors.New("boom")
	st := openStore(t, source)

	assert.Error(t, st.ToggleComplete(context.Background(), task))
	assert.False(t, st.Tasks()[0].Completed)
	assert.Empty(t, source.profileUpdates)
}

func TestApplyInsertEvent(t *testing.T) {
	st := openStore(t, newFakeSource())

	task := seededTask("t-9", "pushed")
	st.apply(model.TaskChange{Kind: model.ChangeInsert, ID: task.ID, Task: &task})

	tasks := st.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "t-9", tasks[0].ID)

	// Replaying the same insert must not duplicate the task.
	st.apply(model.TaskChange{Kind: model.ChangeInsert, ID: task.ID, Task: &task})
	assert.Len(t, st.Tasks(), 1)
}

func TestApplyInsertPrepends(t *testing.T) {
	source := newFakeSource()
	source.tasks = []model.Task{seededTask("t-1", "old")}
	st := openStore(t, source)

	task := seededTask("t-2", "new")
	st.apply(model.TaskChange{Kind: model.ChangeInsert, ID: task.ID, Task: &task})

	tasks := st.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "t-2", tasks[0].ID)
}

func TestApplyUpdateEventIsIdempotent(t *testing.T) {
	source := newFakeSource()
	source.tasks = []model.Task{seededTask("t-1", "one")}
	st := openStore(t, source)

	title := "renamed"
	change := model.TaskChange{Kind: model.ChangeUpdate, ID: "t-1", Patch: &model.TaskPatch{Title: &title}}

	st.apply(change)
	once := st.Tasks()
	st.apply(change)

	assert.Equal(t, once, st.Tasks())
	assert.Equal(t, "renamed", st.Tasks()[0].Title)
}

func TestApplyUpdateForAbsentIDIsNoop(t *testing.T) {
	st := openStore(t, newFakeSource())

	title := "ghost"
	st.apply(model.TaskChange{Kind: model.ChangeUpdate, ID: "nope", Patch: &model.TaskPatch{Title: &title}})

	assert.Empty(t, st.Tasks())
}

func TestApplyDeleteEvent(t *testing.T) {
	source := newFakeSource()
	source.tasks = []model.Task{seededTask("t-1", "a"), seededTask("t-2", "b"), seededTask("t-3", "c")}
	st := openStore(t, source)

	st.apply(model.TaskChange{Kind: model.ChangeDelete, ID: "t-2"})

	tasks := st.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "t-1", tasks[0].ID)
	assert.Equal(t, "t-3", tasks[1].ID)

	// Deleting an absent id is harmless.
	st.apply(model.TaskChange{Kind: model.ChangeDelete, ID: "t-2"})
	assert.Len(t, st.Tasks(), 2)
}

func TestFeedEventsReachTheStore(t *testing.T) {
	source := newFakeSource()
	st := openStore(t, source)

	task := seededTask("t-live", "from another device")
	source.feed <- model.TaskChange{Kind: model.ChangeInsert, ID: task.ID, Task: &task}

	assert.Eventually(t, func() bool {
		return len(st.Tasks()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestAddCategoryRefetchesList(t *testing.T) {
	source := newFakeSource()
	st := openStore(t, source)

	category, err := st.AddCategory(context.Background(), "Work", "#6366f1")
	require.NoError(t, err)
	assert.NotEmpty(t, category.ID)

	categories := st.Categories()
	require.Len(t, categories, 1)
	assert.Equal(t, "Work", categories[0].Name)
}

func TestAddCategoryValidation(t *testing.T) {
	st := openStore(t, newFakeSource())

	_, err := st.AddCategory(context.Background(), "", "#fff")
	assert.Error(t, err)
	_, err = st.AddCategory(context.Background(), "Work", "")
	assert.Error(t, err)
}

func TestDeleteCategoryDetachesTasks(t *testing.T) {
	source := newFakeSource()
	categoryID := "c-1"
	taskA := seededTask("t-1", "a")
	taskA.CategoryID = &categoryID
	taskB := seededTask("t-2", "b")
	taskB.CategoryID = &categoryID
	source.tasks = []model.Task{taskA, taskB}
	source.categories = []model.Category{{ID: categoryID, UserID: "u-1", Name: "Work", Color: "#fff"}}
	st := openStore(t, source)

	require.NoError(t, st.DeleteCategory(context.Background(), categoryID))

	assert.Empty(t, st.Categories())
	for _, task := range st.Tasks() {
		assert.Nil(t, task.CategoryID, "task %s should be uncategorized", task.ID)
	}
}

func TestUpdateTaskValidation(t *testing.T) {
	source := newFakeSource()
	source.tasks = []model.Task{seededTask("t-1", "one")}
	st := openStore(t, source)

	empty := ""
	assert.Error(t, st.UpdateTask(context.Background(), "t-1", model.TaskPatch{Title: &empty}))

	bad := model.Priority("urgent")
	assert.Error(t, st.UpdateTask(context.Background(), "t-1", model.TaskPatch{Priority: &bad}))

	// Empty patches never reach the backend.
	require.NoError(t, st.UpdateTask(context.Background(), "t-1", model.TaskPatch{}))
	assert.Empty(t, source.taskPatches)
}

func TestDeleteTask(t *testing.T) {
	source := newFakeSource()
	source.tasks = []model.Task{seededTask("t-1", "one")}
	st := openStore(t, source)

	require.NoError(t, st.DeleteTask(context.Background(), "t-1"))
	assert.Empty(t, st.Tasks())
}

func recvWatched(t *testing.T, changes <-chan model.TaskChange) model.TaskChange {
	t.Helper()
	select {
	case change, ok := <-changes:
		require.True(t, ok, "watch channel closed unexpectedly")
		return change
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for watched change")
		return model.TaskChange{}
	}
}

func assertNoWatched(t *testing.T, changes <-chan model.TaskChange) {
	t.Helper()
	select {
	case change := <-changes:
		t.Fatalf("unexpected change: %+v", change)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatchEmitsAppliedChanges(t *testing.T) {
	source := newFakeSource()
	source.tasks = []model.Task{seededTask("t-1", "one")}
	st := openStore(t, source)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := st.Watch(ctx)

	// An in-place edit is observable even though the list length never
	// moves.
	title := "renamed"
	require.NoError(t, st.UpdateTask(context.Background(), "t-1", model.TaskPatch{Title: &title}))

	change := recvWatched(t, changes)
	assert.Equal(t, model.ChangeUpdate, change.Kind)
	assert.Equal(t, "t-1", change.ID)
	require.NotNil(t, change.Patch)
	assert.Equal(t, "renamed", *change.Patch.Title)

	require.NoError(t, st.DeleteTask(context.Background(), "t-1"))
	change = recvWatched(t, changes)
	assert.Equal(t, model.ChangeDelete, change.Kind)
}

func TestWatchSkipsNoopReplay(t *testing.T) {
	source := newFakeSource()
	task := seededTask("t-1", "one")
	source.tasks = []model.Task{task}
	st := openStore(t, source)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := st.Watch(ctx)

	// A duplicate insert and an update for an absent id change nothing,
	// so neither reaches watchers.
	st.apply(model.TaskChange{Kind: model.ChangeInsert, ID: task.ID, Task: &task})
	title := "ghost"
	st.apply(model.TaskChange{Kind: model.ChangeUpdate, ID: "nope", Patch: &model.TaskPatch{Title: &title}})
	st.apply(model.TaskChange{Kind: model.ChangeDelete, ID: "nope"})

	assertNoWatched(t, changes)
}

func TestWatchClosesOnCancel(t *testing.T) {
	st := openStore(t, newFakeSource())

	ctx, cancel := context.WithCancel(context.Background())
	changes := st.Watch(ctx)
	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("watch channel not closed after cancellation")
	}
}
