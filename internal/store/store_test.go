package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"sprintdeck/internal/board"
	"sprintdeck/internal/datasource"
)

var testEpoch = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

// testClock hands out strictly increasing instants so timestamp refreshes
// are observable.
func testClock() func() time.Time {
	step := 0
	return func() time.Time {
		step++
		return testEpoch.Add(time.Duration(step) * time.Second)
	}
}

func testIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func seedSnapshot() datasource.Snapshot {
	return datasource.Snapshot{
		Origin: datasource.OriginLive,
		Tasks: []board.Task{
			{ID: "t-1", Title: "Optimize database pooling", Status: board.StatusTodo, Priority: board.PriorityLow,
				ReporterID: "u-1", Tags: []string{"database"}, CreatedAt: testEpoch, UpdatedAt: testEpoch},
			{ID: "t-2", Title: "Fix login redirect", Status: board.StatusInProgress, Priority: board.PriorityHigh,
				ReporterID: "u-1", CreatedAt: testEpoch, UpdatedAt: testEpoch, Dependencies: []string{"t-1"}},
			{ID: "t-3", Title: "Tune search performance", Status: board.StatusTodo, Priority: board.PriorityCritical,
				ReporterID: "u-2", Tags: []string{"search"}, CreatedAt: testEpoch, UpdatedAt: testEpoch},
		},
		Users: []board.User{
			{ID: "u-1", Name: "Mara", Role: board.RoleScrumMaster},
			{ID: "u-2", Name: "Dev", Role: board.RoleDeveloper},
		},
		Suggestions: []board.AISuggestion{
			{ID: "sg-1", Type: board.SuggestionPriorityAdjustment, Title: "Raise database work", Actionable: true},
			{ID: "sg-2", Type: board.SuggestionTaskCreation, Title: "Add load test", Description: "Cover the search path",
				Reasoning: "p99 doubled"},
			{ID: "sg-3", Type: board.SuggestionRiskMitigation, Title: "Review on-call load"},
		},
		Notifications: []board.Notification{
			{ID: "n-1", Title: "Mentioned", UserID: "u-2"},
			{ID: "n-2", Title: "Sprint started", UserID: "u-2"},
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	source := datasource.NewMemorySource(seedSnapshot(), datasource.OriginLive)
	s := New(source, WithClock(testClock()), WithIDGenerator(testIDs("task")))
	if err := s.LoadInitialData(context.Background()); err != nil {
		t.Fatalf("load initial data: %v", err)
	}
	return s
}

func drain(sub Subscription) []Change {
	var out []Change
	for {
		select {
		case change := <-sub.Changes:
			out = append(out, change)
		default:
			return out
		}
	}
}

func TestLoadInitialDataReplacesAtomically(t *testing.T) {
	s := newTestStore(t)
	if got := len(s.Tasks()); got != 3 {
		t.Fatalf("tasks after load: got %d want 3", got)
	}
	if s.Loading() {
		t.Fatalf("loading flag must clear after load")
	}
	if s.Origin() != datasource.OriginLive {
		t.Fatalf("origin: got %s want live", s.Origin())
	}
	// Reloading replaces rather than duplicates.
	if err := s.LoadInitialData(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := len(s.Tasks()); got != 3 {
		t.Fatalf("tasks after reload: got %d want 3", got)
	}
	if got := len(s.Suggestions()); got != 3 {
		t.Fatalf("suggestions after reload: got %d want 3", got)
	}
}

func TestCreateTaskStampsAndAppends(t *testing.T) {
	s := newTestStore(t)
	task, _ := s.CreateTask(context.Background(), board.TaskInput{Title: "New card", ReporterID: "u-1"})
	if task.ID == "" {
		t.Fatalf("created task must get an id")
	}
	if task.Status != board.StatusTodo || task.Priority != board.PriorityMedium {
		t.Fatalf("defaults not applied: %s/%s", task.Status, task.Priority)
	}
	if !task.CreatedAt.Equal(task.UpdatedAt) || task.CreatedAt.IsZero() {
		t.Fatalf("timestamps not stamped: %v / %v", task.CreatedAt, task.UpdatedAt)
	}
	all := s.Tasks()
	if all[len(all)-1].ID != task.ID {
		t.Fatalf("created task not appended last")
	}
}

func TestUpdateTaskNotFoundNeverCreates(t *testing.T) {
	s := newTestStore(t)
	title := "ghost"
	_, _, err := s.UpdateTask(context.Background(), "missing", board.TaskPatch{Title: &title})
	if err == nil {
		t.Fatalf("expected not found error")
	}
	if got := len(s.Tasks()); got != 3 {
		t.Fatalf("update must not create tasks, have %d", got)
	}
}

func TestMoveTaskRefreshesUpdatedAt(t *testing.T) {
	s := newTestStore(t)
	before, _ := s.Task("t-1")
	moved, _, err := s.MoveTask(context.Background(), "t-1", board.StatusDone)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.Status != board.StatusDone {
		t.Fatalf("status: got %s want done", moved.Status)
	}
	if !moved.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("updated at not refreshed: %v -> %v", before.UpdatedAt, moved.UpdatedAt)
	}
}

func TestMoveTaskIdempotent(t *testing.T) {
	s := newTestStore(t)
	first, _, err := s.MoveTask(context.Background(), "t-1", board.StatusReview)
	if err != nil {
		t.Fatalf("first move: %v", err)
	}
	second, _, err := s.MoveTask(context.Background(), "t-1", board.StatusReview)
	if err != nil {
		t.Fatalf("second move: %v", err)
	}
	if second.Status != first.Status || !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Fatalf("repeat move must not change state: %+v vs %+v", first, second)
	}
}

func TestDeleteTaskLeavesDanglingDependencies(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.DeleteTask(context.Background(), "t-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.Task("t-1"); ok {
		t.Fatalf("task not deleted")
	}
	dependent, ok := s.Task("t-2")
	if !ok {
		t.Fatalf("dependent task missing")
	}
	found := false
	for _, dep := range dependent.Dependencies {
		if dep == "t-1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("dangling dependency must be preserved, got %v", dependent.Dependencies)
	}
}

func TestMarkNotificationsRead(t *testing.T) {
	s := newTestStore(t)
	if err := s.MarkNotificationRead(context.Background(), "n-1"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	// Idempotent.
	if err := s.MarkNotificationRead(context.Background(), "n-1"); err != nil {
		t.Fatalf("repeat mark read: %v", err)
	}
	if got := s.UnreadCount(); got != 1 {
		t.Fatalf("unread: got %d want 1", got)
	}
	if err := s.MarkNotificationRead(context.Background(), "missing"); err == nil {
		t.Fatalf("expected not found for missing notification")
	}
	s.MarkAllNotificationsRead(context.Background())
	if got := s.UnreadCount(); got != 0 {
		t.Fatalf("unread after mark all: got %d want 0", got)
	}
}

func TestEveryMutationEmitsExactlyOneChange(t *testing.T) {
	s := newTestStore(t)
	sub := s.Subscribe()
	defer sub.Close()

	ctx := context.Background()
	s.CreateTask(ctx, board.TaskInput{Title: "card", ReporterID: "u-1"})
	s.MoveTask(ctx, "t-1", board.StatusDone)
	s.AcceptSuggestion(ctx, "sg-2")
	s.DismissSuggestion(ctx, "sg-3")
	s.MarkAllNotificationsRead(ctx)

	changes := drain(sub)
	if len(changes) != 5 {
		t.Fatalf("expected exactly one change per action, got %d: %+v", len(changes), changes)
	}
	wantActions := []Action{ActionCreateTask, ActionMoveTask, ActionAcceptSuggestion, ActionDismissSuggest, ActionNotificationRead}
	for i, want := range wantActions {
		if changes[i].Action != want {
			t.Fatalf("change %d: got %s want %s", i, changes[i].Action, want)
		}
	}
}

func TestNoOpActionsEmitNoChange(t *testing.T) {
	s := newTestStore(t)
	sub := s.Subscribe()
	defer sub.Close()
	s.AcceptSuggestion(context.Background(), "absent")
	s.DismissSuggestion(context.Background(), "absent")
	if changes := drain(sub); len(changes) != 0 {
		t.Fatalf("no-op actions must not notify, got %+v", changes)
	}
}
