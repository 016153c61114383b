package summary

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"taskflow/internal/model"
	"taskflow/internal/xp"
)

// Daily renders the reminder text shown by watch mode: open tasks sorted
// by urgency, overdue markers, and the current XP standing.
func Daily(tasks []model.Task, categories []model.Category, profile *model.Profile, now time.Time) string {
	catNames := make(map[string]string, len(categories))
	for _, cat := range categories {
		catNames[cat.ID] = cat.Name
	}

	var pending []model.Task
	for _, task := range tasks {
		if !task.Completed {
			pending = append(pending, task)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		switch {
		case pending[i].DueDate == nil && pending[j].DueDate == nil:
			return pending[i].CreatedAt.After(pending[j].CreatedAt)
		case pending[i].DueDate == nil:
			return false
		case pending[j].DueDate == nil:
			return true
		default:
			return pending[i].DueDate.Before(*pending[j].DueDate)
		}
	})

	var builder strings.Builder
	builder.WriteString("Daily summary\n")
	builder.WriteString(fmt.Sprintf("%s\n\n", now.Format("2006-01-02")))

	builder.WriteString("Open tasks\n")
	if len(pending) == 0 {
		builder.WriteString("- no open tasks\n")
	} else {
		for _, task := range pending {
			builder.WriteString(formatTask(task, catNames, now))
		}
	}

	if profile != nil {
		builder.WriteString(fmt.Sprintf("\nLevel %d · %d XP (%d/%d to next level)\n",
			profile.Level, profile.XP, xp.Progress(profile.XP), xp.PerLevel))
	}

	return strings.TrimSpace(builder.String())
}

func formatTask(task model.Task, catNames map[string]string, now time.Time) string {
	var sb strings.Builder

	marker := "-"
	if task.Overdue(now) {
		marker = "!"
	}
	sb.WriteString(fmt.Sprintf("%s %s", marker, strings.TrimSpace(task.Title)))

	if task.CategoryID != nil {
		if name, ok := catNames[*task.CategoryID]; ok {
			trimmed := strings.TrimSpace(name)
			if trimmed != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", trimmed))
			}
		}
	}

	if task.DueDate != nil {
		if task.Overdue(now) {
			sb.WriteString(fmt.Sprintf(" · due %s (overdue)", task.DueDate))
		} else {
			sb.WriteString(fmt.Sprintf(" · due %s", task.DueDate))
		}
	}

	sb.WriteByte('\n')
	return sb.String()
}
