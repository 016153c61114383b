package model

// ChangeKind identifies what happened to a row on the backend.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// TaskChange is one event from the task change feed. Insert events carry
// the full new row, update events carry the row ID plus a sparse patch,
// delete events carry only the ID.
type TaskChange struct {
	Kind  ChangeKind `json:"kind"`
	ID    string     `json:"id"`
	Task  *Task      `json:"task,omitempty"`
	Patch *TaskPatch `json:"patch,omitempty"`
}

// TaskPatch is a sparse set of task fields. Nil pointers mean "unchanged";
// the Clear flags distinguish "set to absent" from "unchanged" for the
// optional fields.
type TaskPatch struct {
	Title            *string   `json:"title,omitempty"`
	Description      *string   `json:"description,omitempty"`
	Completed        *bool     `json:"completed,omitempty"`
	Priority         *Priority `json:"priority,omitempty"`
	CategoryID       *string   `json:"category_id,omitempty"`
	DueDate          *Date     `json:"due_date,omitempty"`
	ClearDescription bool      `json:"clear_description,omitempty"`
	ClearCategory    bool      `json:"clear_category,omitempty"`
	ClearDueDate     bool      `json:"clear_due_date,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p TaskPatch) IsZero() bool {
	return p == TaskPatch{}
}

// Apply merges the patch into t. Fields absent from the patch are
// preserved, so applying the same patch twice is a no-op.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		v := *p.Description
		t.Description = &v
	} else if p.ClearDescription {
		t.Description = nil
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.CategoryID != nil {
		v := *p.CategoryID
		t.CategoryID = &v
	} else if p.ClearCategory {
		t.CategoryID = nil
		t.Category = nil
	}
	if p.DueDate != nil {
		v := *p.DueDate
		t.DueDate = &v
	} else if p.ClearDueDate {
		t.DueDate = nil
	}
}

// Updates renders the patch as a column/value map for database updates.
func (p TaskPatch) Updates() map[string]interface{} {
	updates := make(map[string]interface{})
	if p.Title != nil {
		updates["title"] = *p.Title
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	} else if p.ClearDescription {
		updates["description"] = nil
	}
	if p.Completed != nil {
		updates["completed"] = *p.Completed
	}
	if p.Priority != nil {
		updates["priority"] = *p.Priority
	}
	if p.CategoryID != nil {
		updates["category_id"] = *p.CategoryID
	} else if p.ClearCategory {
		updates["category_id"] = nil
	}
	if p.DueDate != nil {
		updates["due_date"] = *p.DueDate
	} else if p.ClearDueDate {
		updates["due_date"] = nil
	}
	return updates
}
