package store

import (
	"reflect"
	"testing"
	"time"

	"sprintdeck/internal/board"
)

func viewFixture() []board.Task {
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	due := base.AddDate(0, 0, 5)
	return []board.Task{
		{ID: "t-1", Title: "Alpha", Status: board.StatusTodo, Priority: board.PriorityLow,
			AssigneeID: "u-1", Tags: []string{"backend"}, CreatedAt: base, UpdatedAt: base},
		{ID: "t-2", Title: "Bravo", Status: board.StatusInProgress, Priority: board.PriorityHigh,
			AssigneeID: "u-2", Tags: []string{"frontend"}, CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour), DueDate: &due},
		{ID: "t-3", Title: "Charlie", Status: board.StatusTodo, Priority: board.PriorityCritical,
			AssigneeID: "u-1", CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(2 * time.Hour)},
		{ID: "t-4", Title: "Delta", Status: board.StatusDone, Priority: board.PriorityMedium,
			AssigneeID: "u-3", Tags: []string{"backend", "infra"}, CreatedAt: base.Add(3 * time.Hour), UpdatedAt: base.Add(3 * time.Hour)},
		{ID: "t-5", Title: "Echo", Status: board.StatusReview, Priority: board.PriorityHigh,
			AssigneeID: "u-2", CreatedAt: base.Add(4 * time.Hour), UpdatedAt: base.Add(4 * time.Hour)},
	}
}

func ids(tasks []board.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.ID)
	}
	return out
}

func TestViewEmptyFilterPassesEverything(t *testing.T) {
	tasks := viewFixture()
	got := View(tasks, board.FilterOptions{}, board.SortOptions{})
	if len(got) != len(tasks) {
		t.Fatalf("empty filter must pass all tasks, got %d", len(got))
	}
}

func TestViewFilterDimensionsAndAcrossOrWithin(t *testing.T) {
	tasks := viewFixture()
	filter := board.FilterOptions{
		Statuses:    []board.Status{board.StatusTodo, board.StatusInProgress},
		AssigneeIDs: []string{"u-1"},
	}
	got := ids(View(tasks, filter, board.SortOptions{}))
	want := []string{"t-1", "t-3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filter result: got %v want %v", got, want)
	}
}

func TestViewTagFilterIntersects(t *testing.T) {
	tasks := viewFixture()
	got := ids(View(tasks, board.FilterOptions{Tags: []string{"infra", "frontend"}}, board.SortOptions{}))
	want := []string{"t-2", "t-4"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tag filter: got %v want %v", got, want)
	}
}

// Scenario: filter high/critical, sort by priority descending. The two high
// tasks keep their relative input order (stable sort).
func TestViewPriorityDescStable(t *testing.T) {
	tasks := viewFixture()
	filter := board.FilterOptions{Priorities: []board.Priority{board.PriorityHigh, board.PriorityCritical}}
	sortOpts := board.SortOptions{Field: board.SortByPriority, Direction: board.SortDesc}
	got := ids(View(tasks, filter, sortOpts))
	want := []string{"t-3", "t-2", "t-5"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("priority desc: got %v want %v", got, want)
	}
}

func TestViewPriorityComparesByRankNotLexical(t *testing.T) {
	tasks := []board.Task{
		{ID: "c", Priority: board.PriorityCritical},
		{ID: "h", Priority: board.PriorityHigh},
		{ID: "l", Priority: board.PriorityLow},
		{ID: "m", Priority: board.PriorityMedium},
	}
	got := ids(View(tasks, board.FilterOptions{}, board.SortOptions{Field: board.SortByPriority, Direction: board.SortAsc}))
	// Lexical order would be critical < high < low < medium.
	want := []string{"l", "m", "h", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("rank order: got %v want %v", got, want)
	}
}

func TestViewMissingValuesTotalOrder(t *testing.T) {
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	early := base.AddDate(0, 0, 1)
	late := base.AddDate(0, 0, 9)
	tasks := []board.Task{
		{ID: "late", DueDate: &late},
		{ID: "none"},
		{ID: "early", DueDate: &early},
	}
	asc := ids(View(tasks, board.FilterOptions{}, board.SortOptions{Field: board.SortByDueDate, Direction: board.SortAsc}))
	if !reflect.DeepEqual(asc, []string{"none", "early", "late"}) {
		t.Fatalf("ascending: missing must sort first, got %v", asc)
	}
	desc := ids(View(tasks, board.FilterOptions{}, board.SortOptions{Field: board.SortByDueDate, Direction: board.SortDesc}))
	if !reflect.DeepEqual(desc, []string{"late", "early", "none"}) {
		t.Fatalf("descending: missing must sort last, got %v", desc)
	}
}

func TestViewDeterministic(t *testing.T) {
	tasks := viewFixture()
	filter := board.FilterOptions{Statuses: []board.Status{board.StatusTodo, board.StatusReview}}
	sortOpts := board.SortOptions{Field: board.SortByCreatedAt, Direction: board.SortDesc}
	first := View(tasks, filter, sortOpts)
	second := View(tasks, filter, sortOpts)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs must yield identical output")
	}
}

func TestViewDoesNotMutateInput(t *testing.T) {
	tasks := viewFixture()
	snapshot := viewFixture()
	View(tasks, board.FilterOptions{}, board.SortOptions{Field: board.SortByTitle, Direction: board.SortDesc})
	if !reflect.DeepEqual(tasks, snapshot) {
		t.Fatalf("view must not reorder its input")
	}
}
