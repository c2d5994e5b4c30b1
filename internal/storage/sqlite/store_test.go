package sqlite

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"sprintdeck/internal/board"
	"sprintdeck/internal/datasource"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.db")
	store, err := Open(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Seed(context.Background(), datasource.FallbackSnapshot()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func TestSeedIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	before, err := store.ListTasks(ctx, "")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if err := store.Seed(ctx, datasource.FallbackSnapshot()); err != nil {
		t.Fatalf("re-seed: %v", err)
	}
	after, err := store.ListTasks(ctx, "")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(before) != len(after) {
		t.Fatalf("re-seed duplicated rows: %d -> %d", len(before), len(after))
	}
}

func TestTaskRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	due := time.Date(2025, 6, 20, 17, 0, 0, 0, time.UTC)
	created, err := store.CreateTask(ctx, board.Task{
		ID:           "task-rt",
		Title:        "Wire payment webhook",
		Status:       board.StatusInProgress,
		Priority:     board.PriorityHigh,
		ReporterID:   "user-1",
		Tags:         []string{"backend", "payments"},
		Dependencies: []string{"task-1"},
		CreatedAt:    due.Add(-48 * time.Hour),
		UpdatedAt:    due.Add(-48 * time.Hour),
		DueDate:      &due,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	got, err := store.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Title != "Wire payment webhook" || got.Status != board.StatusInProgress {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if len(got.Tags) != 2 || len(got.Dependencies) != 1 {
		t.Fatalf("slice columns not restored: tags=%v deps=%v", got.Tags, got.Dependencies)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("due date not restored: %v", got.DueDate)
	}
}

func TestCreateTaskAppliesDefaults(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()
	created, err := store.CreateTask(context.Background(), board.Task{
		ID: "task-defaults", Title: "No status given", ReporterID: "user-1",
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if created.Status != board.StatusTodo || created.Priority != board.PriorityMedium {
		t.Fatalf("defaults not applied: %s/%s", created.Status, created.Priority)
	}
}

func TestSaveTaskUpdatesRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	task, err := store.GetTask(ctx, "task-1")
	if err != nil {
		t.Fatalf("get seeded task: %v", err)
	}
	task.Status = board.StatusDone
	task.UpdatedAt = task.UpdatedAt.Add(time.Minute)
	saved, err := store.SaveTask(ctx, task)
	if err != nil {
		t.Fatalf("save task: %v", err)
	}
	if saved.Status != board.StatusDone {
		t.Fatalf("status not persisted: %s", saved.Status)
	}
	if _, err := store.SaveTask(ctx, board.Task{ID: "missing", Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("save of missing row: got %v want ErrNotFound", err)
	}
}

func TestDeleteTaskNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := store.DeleteTask(ctx, "task-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteTask(ctx, "task-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: got %v want ErrNotFound", err)
	}
}

func TestListTasksScopedToSprint(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sprint, err := store.CurrentSprint(ctx)
	if err != nil {
		t.Fatalf("current sprint: %v", err)
	}
	if sprint == nil {
		t.Fatalf("seed must contain an active sprint")
	}
	scoped, err := store.ListTasks(ctx, sprint.ID)
	if err != nil {
		t.Fatalf("list scoped: %v", err)
	}
	if len(scoped) != len(sprint.TaskIDs) {
		t.Fatalf("scoped list: got %d tasks, sprint names %d", len(scoped), len(sprint.TaskIDs))
	}
}

func TestSuggestionLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	suggestions, err := store.ListSuggestions(ctx)
	if err != nil {
		t.Fatalf("list suggestions: %v", err)
	}
	if len(suggestions) == 0 {
		t.Fatalf("seed must contain suggestions")
	}
	id := suggestions[0].ID
	if _, err := store.GetSuggestion(ctx, id); err != nil {
		t.Fatalf("get suggestion: %v", err)
	}
	if err := store.DeleteSuggestion(ctx, id); err != nil {
		t.Fatalf("delete suggestion: %v", err)
	}
	// Deleting again is not an error.
	if err := store.DeleteSuggestion(ctx, id); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
	if _, err := store.GetSuggestion(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted suggestion still readable: %v", err)
	}
}

func TestMarkNotificationRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	notifications, err := store.ListNotifications(ctx)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifications) == 0 {
		t.Fatalf("seed must contain notifications")
	}
	id := notifications[0].ID
	if err := store.MarkNotificationRead(ctx, id); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := store.MarkNotificationRead(ctx, id); err != nil {
		t.Fatalf("repeat mark read: %v", err)
	}
	if err := store.MarkNotificationRead(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing notification: got %v want ErrNotFound", err)
	}
	after, err := store.ListNotifications(ctx)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	for _, n := range after {
		if n.ID == id && !n.Read {
			t.Fatalf("read flag not persisted")
		}
	}
}
