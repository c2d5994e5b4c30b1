package board

// SortField names a task field the view can order by.
type SortField string

const (
	SortByTitle       SortField = "title"
	SortByStatus      SortField = "status"
	SortByPriority    SortField = "priority"
	SortByStoryPoints SortField = "story_points"
	SortByCreatedAt   SortField = "created_at"
	SortByUpdatedAt   SortField = "updated_at"
	SortByDueDate     SortField = "due_date"
)

// SortDirection orders a sort ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// FilterOptions narrows the derived task view. A task passes when it matches
// every non-empty dimension: AND across dimensions, OR within a dimension.
// Empty dimensions impose no constraint.
type FilterOptions struct {
	Statuses    []Status   `json:"statuses,omitempty" yaml:"statuses,omitempty"`
	Priorities  []Priority `json:"priorities,omitempty" yaml:"priorities,omitempty"`
	AssigneeIDs []string   `json:"assignee_ids,omitempty" yaml:"assignee_ids,omitempty"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Empty reports whether no dimension is active.
func (f FilterOptions) Empty() bool {
	return len(f.Statuses) == 0 && len(f.Priorities) == 0 && len(f.AssigneeIDs) == 0 && len(f.Tags) == 0
}

// SortOptions selects a single sort field and direction for the view.
type SortOptions struct {
	Field     SortField     `json:"field" yaml:"field"`
	Direction SortDirection `json:"direction" yaml:"direction"`
}
