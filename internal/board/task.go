// internal/board/task.go
//
// Core entity types for the board. Every collection is owned by the store
// (internal/store); everything else passes ids or value snapshots around.

package board

import "time"

// Status identifies the column a task occupies. The column a task is shown
// in is derived solely from this field; there is no separate placement state.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

// Statuses lists every column in board order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusReview, StatusDone, StatusBlocked}

// Valid reports whether s is one of the five known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone, StatusBlocked:
		return true
	}
	return false
}

// Priority classifies task urgency.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank returns the comparison rank for sorting: low=1 .. critical=4.
// Priorities never compare lexically.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	}
	return 0
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Task is a single card on the board.
type Task struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	Status         Status         `json:"status"`
	Priority       Priority       `json:"priority"`
	AssigneeID     string         `json:"assignee_id,omitempty"`
	ReporterID     string         `json:"reporter_id"`
	StoryPoints    int            `json:"story_points"`
	Tags           []string       `json:"tags,omitempty"`
	Dependencies   []string       `json:"dependencies,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DueDate        *time.Time     `json:"due_date,omitempty"`
	EstimatedHours float64        `json:"estimated_hours,omitempty"`
	ActualHours    float64        `json:"actual_hours,omitempty"`
	BlockReason    string         `json:"block_reason,omitempty"`
	Suggestions    []AISuggestion `json:"suggestions,omitempty"`
}

// HasTag reports whether the task carries the given tag.
func (t Task) HasTag(tag string) bool {
	for _, candidate := range t.Tags {
		if candidate == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hand tasks out of the store
// without exposing shared slices.
func (t Task) Clone() Task {
	out := t
	out.Tags = append([]string(nil), t.Tags...)
	out.Dependencies = append([]string(nil), t.Dependencies...)
	out.Suggestions = append([]AISuggestion(nil), t.Suggestions...)
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	return out
}

// TaskInput carries the caller-supplied fields for task creation. The store
// generates the id and stamps both timestamps itself.
type TaskInput struct {
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         Status     `json:"status"`
	Priority       Priority   `json:"priority"`
	AssigneeID     string     `json:"assignee_id,omitempty"`
	ReporterID     string     `json:"reporter_id"`
	StoryPoints    int        `json:"story_points"`
	Tags           []string   `json:"tags,omitempty"`
	Dependencies   []string   `json:"dependencies,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	EstimatedHours float64    `json:"estimated_hours,omitempty"`
	BlockReason    string     `json:"block_reason,omitempty"`
}

// TaskPatch describes a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Status         *Status    `json:"status,omitempty"`
	Priority       *Priority  `json:"priority,omitempty"`
	AssigneeID     *string    `json:"assignee_id,omitempty"`
	StoryPoints    *int       `json:"story_points,omitempty"`
	Tags           *[]string  `json:"tags,omitempty"`
	Dependencies   *[]string  `json:"dependencies,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty"`
	ActualHours    *float64   `json:"actual_hours,omitempty"`
	BlockReason    *string    `json:"block_reason,omitempty"`
}

// Apply merges the patch into the task and reports whether any observable
// field changed. Timestamp refresh is the store's job, not the patch's.
func (p TaskPatch) Apply(t *Task) bool {
	changed := false
	if p.Title != nil && *p.Title != t.Title {
		t.Title = *p.Title
		changed = true
	}
	if p.Description != nil && *p.Description != t.Description {
		t.Description = *p.Description
		changed = true
	}
	if p.Status != nil && *p.Status != t.Status {
		t.Status = *p.Status
		changed = true
	}
	if p.Priority != nil && *p.Priority != t.Priority {
		t.Priority = *p.Priority
		changed = true
	}
	if p.AssigneeID != nil && *p.AssigneeID != t.AssigneeID {
		t.AssigneeID = *p.AssigneeID
		changed = true
	}
	if p.StoryPoints != nil && *p.StoryPoints != t.StoryPoints {
		t.StoryPoints = *p.StoryPoints
		changed = true
	}
	if p.Tags != nil && !equalStrings(*p.Tags, t.Tags) {
		t.Tags = append([]string(nil), *p.Tags...)
		changed = true
	}
	if p.Dependencies != nil && !equalStrings(*p.Dependencies, t.Dependencies) {
		t.Dependencies = append([]string(nil), *p.Dependencies...)
		changed = true
	}
	if p.DueDate != nil && (t.DueDate == nil || !t.DueDate.Equal(*p.DueDate)) {
		due := *p.DueDate
		t.DueDate = &due
		changed = true
	}
	if p.EstimatedHours != nil && *p.EstimatedHours != t.EstimatedHours {
		t.EstimatedHours = *p.EstimatedHours
		changed = true
	}
	if p.ActualHours != nil && *p.ActualHours != t.ActualHours {
		t.ActualHours = *p.ActualHours
		changed = true
	}
	if p.BlockReason != nil && *p.BlockReason != t.BlockReason {
		t.BlockReason = *p.BlockReason
		changed = true
	}
	return changed
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
