package store

import (
	"context"
	"testing"

	"sprintdeck/internal/board"
)

func pendingIDs(s *Store) map[string]bool {
	out := map[string]bool{}
	for _, sugg := range s.Suggestions() {
		out[sugg.ID] = true
	}
	return out
}

func TestAcceptTaskCreationSuggestion(t *testing.T) {
	s := newTestStore(t)
	before := len(s.Tasks())
	s.AcceptSuggestion(context.Background(), "sg-2")
	tasks := s.Tasks()
	if len(tasks) != before+1 {
		t.Fatalf("expected one new task, got %d -> %d", before, len(tasks))
	}
	created := tasks[len(tasks)-1]
	if created.Title != "Add load test" || created.Description != "Cover the search path" {
		t.Fatalf("task fields not taken from suggestion: %+v", created)
	}
	if created.Status != board.StatusTodo || created.Priority != board.PriorityMedium {
		t.Fatalf("expected todo/medium defaults, got %s/%s", created.Status, created.Priority)
	}
	if len(created.Dependencies) != 0 {
		t.Fatalf("synthesized task must have no dependencies")
	}
	if pendingIDs(s)["sg-2"] {
		t.Fatalf("accepted suggestion must leave the pending set")
	}
}

// Accepting a priority-adjustment raises every task whose title or tags
// reference the fixed database/performance vocabulary; unrelated tasks keep
// their priority.
func TestAcceptPriorityAdjustmentSuggestion(t *testing.T) {
	s := newTestStore(t)
	s.AcceptSuggestion(context.Background(), "sg-1")

	dbTask, _ := s.Task("t-1")
	if dbTask.Priority != board.PriorityHigh {
		t.Fatalf("database task priority: got %s want high", dbTask.Priority)
	}
	// "Tune search performance" matches by title substring; the coarse rule
	// sets high even when the task sat above it.
	perfTask, _ := s.Task("t-3")
	if perfTask.Priority != board.PriorityHigh {
		t.Fatalf("performance task priority: got %s want high", perfTask.Priority)
	}
	other, _ := s.Task("t-2")
	if other.Priority != board.PriorityHigh {
		t.Fatalf("unrelated task changed: %s", other.Priority)
	}
	if pendingIDs(s)["sg-1"] {
		t.Fatalf("suggestion must leave the pending set")
	}
}

func TestAcceptNonActionableTypeRemovesWithoutMutation(t *testing.T) {
	s := newTestStore(t)
	tasksBefore := s.Tasks()
	s.AcceptSuggestion(context.Background(), "sg-3")
	if pendingIDs(s)["sg-3"] {
		t.Fatalf("risk-mitigation suggestion must still leave the pending set")
	}
	tasksAfter := s.Tasks()
	if len(tasksAfter) != len(tasksBefore) {
		t.Fatalf("log-only type must not mutate tasks")
	}
	for i := range tasksBefore {
		if tasksBefore[i].Priority != tasksAfter[i].Priority {
			t.Fatalf("task %s priority changed", tasksAfter[i].ID)
		}
	}
}

func TestAcceptZeroMatchesStillTerminates(t *testing.T) {
	s := newTestStore(t)
	// Remove the matching tasks first so the heuristic finds nothing.
	s.DeleteTask(context.Background(), "t-1")
	s.DeleteTask(context.Background(), "t-3")
	s.AcceptSuggestion(context.Background(), "sg-1")
	if pendingIDs(s)["sg-1"] {
		t.Fatalf("suggestion must be removed even with zero matches")
	}
}

func TestDismissSuggestionIdempotent(t *testing.T) {
	s := newTestStore(t)
	s.DismissSuggestion(context.Background(), "sg-1")
	if pendingIDs(s)["sg-1"] {
		t.Fatalf("dismissed suggestion still pending")
	}
	// Absent id is a no-op, not an error.
	s.DismissSuggestion(context.Background(), "sg-1")
	s.AcceptSuggestion(context.Background(), "sg-1")
	if got := len(s.Suggestions()); got != 2 {
		t.Fatalf("pending set: got %d want 2", got)
	}
}
