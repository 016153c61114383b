package summary

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/model"
)

var testNow = time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC)

func datePtr(t *testing.T, s string) *model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func TestBuildCounts(t *testing.T) {
	workID := "c-work"
	tasks := []model.Task{
		{ID: "t-1", Title: "done", Completed: true, CreatedAt: testNow},
		{ID: "t-2", Title: "open", CreatedAt: testNow, CategoryID: &workID},
		{ID: "t-3", Title: "late", CreatedAt: testNow.AddDate(0, 0, -2), DueDate: datePtr(t, "2025-03-10")},
		{ID: "t-4", Title: "due today", CreatedAt: testNow, DueDate: datePtr(t, "2025-03-12")},
	}
	categories := []model.Category{{ID: workID, Name: "Work", Color: "#6366f1"}}

	stats := Build(tasks, categories, testNow)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Pending)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Overdue, "only tasks due strictly before today are overdue")
	assert.Equal(t, 25, stats.CompletionRate)
}

func TestBuildEmpty(t *testing.T) {
	stats := Build(nil, nil, testNow)

	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.CompletionRate)
	assert.Len(t, stats.Activity, 7)
	assert.Empty(t, stats.ByCategory)
}

func TestBuildCompletionRateRounds(t *testing.T) {
	tasks := []model.Task{
		{ID: "t-1", Completed: true, CreatedAt: testNow},
		{ID: "t-2", CreatedAt: testNow},
		{ID: "t-3", CreatedAt: testNow},
	}

	stats := Build(tasks, nil, testNow)
	assert.Equal(t, 33, stats.CompletionRate)
}

func TestActivityBuckets(t *testing.T) {
	tasks := []model.Task{
		{ID: "t-1", CreatedAt: testNow},
		{ID: "t-2", CreatedAt: testNow.Add(-2 * time.Hour)},
		{ID: "t-3", CreatedAt: testNow.AddDate(0, 0, -3)},
		{ID: "t-4", CreatedAt: testNow.AddDate(0, 0, -6)},
		// Outside the window.
		{ID: "t-5", CreatedAt: testNow.AddDate(0, 0, -7)},
	}

	stats := Build(tasks, nil, testNow)
	require.Len(t, stats.Activity, 7)

	// Oldest first, today last.
	assert.Equal(t, model.DateOf(testNow.AddDate(0, 0, -6)), stats.Activity[0].Day)
	assert.Equal(t, model.DateOf(testNow), stats.Activity[6].Day)

	assert.Equal(t, 1, stats.Activity[0].Count)
	assert.Equal(t, 1, stats.Activity[3].Count)
	assert.Equal(t, 2, stats.Activity[6].Count)

	assert.Equal(t, "Wed", stats.Activity[6].Label)
}

func TestByCategory(t *testing.T) {
	workID := "c-work"
	homeID := "c-home"
	goneID := "c-gone"
	tasks := []model.Task{
		{ID: "t-1", CreatedAt: testNow, CategoryID: &workID},
		{ID: "t-2", CreatedAt: testNow, CategoryID: &workID},
		{ID: "t-3", CreatedAt: testNow},
		{ID: "t-4", CreatedAt: testNow, CategoryID: &goneID},
	}
	categories := []model.Category{
		{ID: workID, Name: "Work", Color: "#6366f1"},
		{ID: homeID, Name: "Home", Color: "#10b981"},
	}

	stats := Build(tasks, categories, testNow)

	require.Len(t, stats.ByCategory, 2, "empty categories are dropped")
	assert.Equal(t, CategoryCount{Name: "Work", Color: "#6366f1", Count: 2}, stats.ByCategory[0])
	// The untagged task and the one pointing at a deleted category share
	// the uncategorized bucket.
	assert.Equal(t, CategoryCount{Name: "Uncategorized", Color: "#64748b", Count: 2}, stats.ByCategory[1])
}

func TestDailySortsByUrgency(t *testing.T) {
	workID := "c-work"
	tasks := []model.Task{
		{ID: "t-1", Title: "no due, older", CreatedAt: testNow.Add(-48 * time.Hour)},
		{ID: "t-2", Title: "due later", CreatedAt: testNow, DueDate: datePtr(t, "2025-03-20")},
		{ID: "t-3", Title: "overdue", CreatedAt: testNow, DueDate: datePtr(t, "2025-03-10"), CategoryID: &workID},
		{ID: "t-4", Title: "no due, newer", CreatedAt: testNow.Add(-time.Hour)},
		{ID: "t-5", Title: "done", Completed: true, CreatedAt: testNow},
	}
	categories := []model.Category{{ID: workID, Name: "Work", Color: "#6366f1"}}
	profile := &model.Profile{ID: "u-1", XP: 130, Level: 2}

	text := Daily(tasks, categories, profile, testNow)

	assert.NotContains(t, text, "done", "completed tasks stay out of the reminder")
	assert.Contains(t, text, "! overdue (Work) · due 2025-03-10 (overdue)")
	assert.Contains(t, text, "- due later · due 2025-03-20")
	assert.Contains(t, text, "Level 2 · 130 XP (30/100 to next level)")

	lines := strings.Split(text, "\n")
	var order []string
	for _, line := range lines {
		if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "! ") {
			order = append(order, line[2:])
		}
	}
	require.Len(t, order, 4)
	assert.True(t, strings.HasPrefix(order[0], "overdue"))
	assert.True(t, strings.HasPrefix(order[1], "due later"))
	// Undated tasks follow, newest creation first.
	assert.True(t, strings.HasPrefix(order[2], "no due, newer"))
	assert.True(t, strings.HasPrefix(order[3], "no due, older"))
}

func TestDailyWithoutOpenTasks(t *testing.T) {
	text := Daily([]model.Task{{ID: "t-1", Title: "done", Completed: true, CreatedAt: testNow}}, nil, nil, testNow)

	assert.Contains(t, text, "- no open tasks")
	assert.NotContains(t, text, "Level")
}
