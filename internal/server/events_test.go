package server

import (
	"strconv"
	"testing"

	"sprintdeck/internal/realtime"
)

func TestEventLogAfterReturnsOnlyNewer(t *testing.T) {
	log := NewEventLog(10)
	for i := 0; i < 3; i++ {
		log.Append(realtime.Update{ID: "u-" + strconv.Itoa(i), Kind: realtime.KindTaskUpdated, TaskID: "t"})
	}
	updates, next := log.After(1)
	if len(updates) != 2 {
		t.Fatalf("updates after 1: got %d want 2", len(updates))
	}
	if next != 3 {
		t.Fatalf("next cursor: got %d want 3", next)
	}
	updates, next = log.After(next)
	if len(updates) != 0 || next != 3 {
		t.Fatalf("caught-up poll: updates=%d next=%d", len(updates), next)
	}
}

func TestEventLogDropsOldestBeyondRetention(t *testing.T) {
	log := NewEventLog(2)
	for i := 0; i < 5; i++ {
		log.Append(realtime.Update{ID: "u-" + strconv.Itoa(i), Kind: realtime.KindTaskUpdated, TaskID: "t"})
	}
	updates, next := log.After(0)
	if len(updates) != 2 {
		t.Fatalf("retention: got %d updates want 2", len(updates))
	}
	if updates[0].ID != "u-3" || updates[1].ID != "u-4" {
		t.Fatalf("oldest entries must be dropped first: %+v", updates)
	}
	if next != 5 {
		t.Fatalf("next cursor: got %d want 5", next)
	}
}
