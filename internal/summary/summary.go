// Package summary derives dashboard statistics and the daily reminder
// text from the in-memory task state.
package summary

import (
	"taskflow/internal/model"
	"time"
)

// DayCount is one bar of the activity chart: tasks created on a day.
type DayCount struct {
	Day   model.Date
	Label string // abbreviated weekday
	Count int
}

// CategoryCount is one slice of the per-category distribution.
type CategoryCount struct {
	Name  string
	Color string
	Count int
}

// uncategorizedColor matches the neutral slice of the original chart.
const uncategorizedColor = "#64748b"

// Stats is the aggregated dashboard view of a task list.
type Stats struct {
	Total          int
	Pending        int
	Completed      int
	Overdue        int
	CompletionRate int // percent, 0 when there are no tasks
	Activity       []DayCount
	ByCategory     []CategoryCount
}

// Build aggregates tasks into dashboard statistics as of now.
func Build(tasks []model.Task, categories []model.Category, now time.Time) Stats {
	stats := Stats{Total: len(tasks)}

	for _, task := range tasks {
		if task.Completed {
			stats.Completed++
			continue
		}
		stats.Pending++
		if task.Overdue(now) {
			stats.Overdue++
		}
	}
	if stats.Total > 0 {
		stats.CompletionRate = int(float64(stats.Completed)/float64(stats.Total)*100 + 0.5)
	}

	stats.Activity = activity(tasks, now)
	stats.ByCategory = byCategory(tasks, categories)
	return stats
}

// activity buckets task creation counts over the last seven days,
// oldest first.
func activity(tasks []model.Task, now time.Time) []DayCount {
	out := make([]DayCount, 0, 7)
	for i := 6; i >= 0; i-- {
		day := model.DateOf(now.AddDate(0, 0, -i))
		count := 0
		for _, task := range tasks {
			if model.DateOf(task.CreatedAt) == day {
				count++
			}
		}
		out = append(out, DayCount{
			Day:   day,
			Label: day.Time().Format("Mon"),
			Count: count,
		})
	}
	return out
}

// byCategory counts tasks per category, dropping empty categories and
// adding an "Uncategorized" bucket when needed. A task whose category was
// deleted counts as uncategorized.
func byCategory(tasks []model.Task, categories []model.Category) []CategoryCount {
	known := make(map[string]int, len(categories))
	var out []CategoryCount

	for _, c := range categories {
		count := 0
		for _, task := range tasks {
			if task.CategoryID != nil && *task.CategoryID == c.ID {
				count++
			}
		}
		if count > 0 {
			known[c.ID] = count
			out = append(out, CategoryCount{Name: c.Name, Color: c.Color, Count: count})
		} else {
			known[c.ID] = 0
		}
	}

	uncategorized := 0
	for _, task := range tasks {
		if task.CategoryID == nil {
			uncategorized++
			continue
		}
		if _, ok := known[*task.CategoryID]; !ok {
			uncategorized++
		}
	}
	if uncategorized > 0 {
		out = append(out, CategoryCount{Name: "Uncategorized", Color: uncategorizedColor, Count: uncategorized})
	}
	return out
}
