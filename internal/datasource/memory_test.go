package datasource

import (
	"context"
	"errors"
	"testing"
	"time"

	"sprintdeck/internal/board"
	"sprintdeck/internal/realtime"
)

func TestMemorySourceClonesResults(t *testing.T) {
	src := NewFallback()
	ctx := context.Background()

	tasks, _, err := src.GetTasks(ctx, "")
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(tasks) != 6 {
		t.Fatalf("expected 6 seeded tasks, got %d", len(tasks))
	}

	tasks[0].Tags[0] = "mutated"
	tasks[0].Title = "mutated"

	again, _, err := src.GetTasks(ctx, "")
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if again[0].Tags[0] == "mutated" || again[0].Title == "mutated" {
		t.Fatal("mutating a returned task leaked into the source")
	}
}

func TestMemorySourceScopesTasksBySprint(t *testing.T) {
	src := NewFallback()
	ctx := context.Background()

	scoped, _, err := src.GetTasks(ctx, "sprint-1")
	if err != nil {
		t.Fatalf("GetTasks(sprint-1): %v", err)
	}
	if len(scoped) != 6 {
		t.Fatalf("expected 6 tasks in sprint-1, got %d", len(scoped))
	}

	if _, _, err := src.GetTasks(ctx, "sprint-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown sprint, got %v", err)
	}
}

func TestMemorySourceUpdateRefreshesTimestamp(t *testing.T) {
	src := NewFallback()
	stamp := time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)
	src.SetClock(func() time.Time { return stamp })

	status := board.StatusDone
	task, _, err := src.UpdateTask(context.Background(), "task-1", board.TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if task.Status != board.StatusDone {
		t.Fatalf("status = %q, want done", task.Status)
	}
	if !task.UpdatedAt.Equal(stamp) {
		t.Fatalf("UpdatedAt = %v, want %v", task.UpdatedAt, stamp)
	}

	// A patch that changes nothing must not bump the timestamp.
	src.SetClock(func() time.Time { return stamp.Add(time.Hour) })
	task, _, err = src.UpdateTask(context.Background(), "task-1", board.TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if !task.UpdatedAt.Equal(stamp) {
		t.Fatalf("no-op patch bumped UpdatedAt to %v", task.UpdatedAt)
	}
}

func TestMemorySourceSuggestionRemovalIsIdempotent(t *testing.T) {
	src := NewFallback()
	ctx := context.Background()

	if _, err := src.AcceptSuggestion(ctx, "sugg-1"); err != nil {
		t.Fatalf("AcceptSuggestion: %v", err)
	}
	if _, err := src.AcceptSuggestion(ctx, "sugg-1"); err != nil {
		t.Fatalf("second AcceptSuggestion: %v", err)
	}
	if _, err := src.DismissSuggestion(ctx, "sugg-2"); err != nil {
		t.Fatalf("DismissSuggestion: %v", err)
	}

	suggestions, _, err := src.GetSuggestions(ctx)
	if err != nil {
		t.Fatalf("GetSuggestions: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].ID != "sugg-3" {
		t.Fatalf("expected only sugg-3 to remain, got %+v", suggestions)
	}
}

func TestMemorySourceScriptedUpdatesDelivered(t *testing.T) {
	src := NewFallback()
	src.ScriptUpdates(
		realtime.Update{ID: "u-1", Kind: realtime.KindTaskUpdated, TaskID: "task-1"},
		realtime.Update{ID: "u-2", Kind: realtime.KindNewNotification},
	)

	got := make(chan realtime.Update, 2)
	stop, err := src.SubscribeUpdates(func(u realtime.Update) { got <- u })
	if err != nil {
		t.Fatalf("SubscribeUpdates: %v", err)
	}
	defer stop()

	for _, want := range []string{"u-1", "u-2"} {
		select {
		case u := <-got:
			if u.ID != want {
				t.Fatalf("update id = %q, want %q", u.ID, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for update %s", want)
		}
	}

	// Stop twice must not panic.
	stop()
	stop()
}

func TestLoadTagsSnapshotOrigin(t *testing.T) {
	ctx := context.Background()

	snap, err := Load(ctx, NewFallback())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Origin != OriginFallback {
		t.Fatalf("Origin = %q, want fallback", snap.Origin)
	}
	if snap.CurrentSprint == nil || snap.CurrentSprint.ID != "sprint-1" {
		t.Fatalf("CurrentSprint = %+v, want sprint-1", snap.CurrentSprint)
	}
	if len(snap.Tasks) != 6 || len(snap.Suggestions) != 3 || len(snap.Notifications) != 2 {
		t.Fatalf("unexpected snapshot sizes: %d tasks, %d suggestions, %d notifications",
			len(snap.Tasks), len(snap.Suggestions), len(snap.Notifications))
	}

	snap, err = Load(ctx, NewMemorySource(FallbackSnapshot(), OriginLive))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Origin != OriginLive {
		t.Fatalf("Origin = %q, want live", snap.Origin)
	}
}
