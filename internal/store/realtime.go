// internal/store/realtime.go
//
// Entry point for server-pushed updates. The channel guarantees neither
// ordering nor exactly-once delivery, so every handler here is idempotent
// under replay: reapplying the same update leaves the state unchanged.

package store

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"sprintdeck/internal/board"
	"sprintdeck/internal/realtime"
)

// ApplyUpdate dispatches one realtime update to the matching mutation. An
// unrecognized kind is not an error: it flags the store as invalidated so
// the owner re-derives everything via LoadInitialData.
func (s *Store) ApplyUpdate(update realtime.Update) {
	update.Normalize()
	if err := update.Validate(); err != nil {
		s.logger.Printf("store: dropped malformed update %s: %v", update.ID, err)
		return
	}
	switch update.Kind {
	case realtime.KindTaskUpdated:
		s.applyTaskChanges(update.TaskID, update.Changes)
	case realtime.KindNewSuggestion:
		s.appendSuggestion(*update.Suggestion)
	case realtime.KindNewNotification:
		s.appendNotification(*update.Notification)
	default:
		s.mu.Lock()
		s.invalidated = true
		s.mu.Unlock()
		s.logger.Printf("store: unrecognized update kind %q, state marked stale", update.Kind)
		s.notify(Change{Action: ActionInvalidate})
	}
}

// applyTaskChanges merges a raw JSON change set onto the task. Replaying the
// same change set yields the same task, and UpdatedAt only refreshes when a
// field actually changed.
func (s *Store) applyTaskChanges(taskID string, changes json.RawMessage) {
	s.mu.Lock()
	task, ok := s.tasks[taskID]
	if !ok {
		s.mu.Unlock()
		s.logger.Printf("store: realtime update for unknown task %s dropped", taskID)
		return
	}
	merged, err := mergeTaskChanges(*task, changes)
	if err != nil {
		s.mu.Unlock()
		s.logger.Printf("store: merge changes for task %s: %v", taskID, err)
		return
	}
	if !reflect.DeepEqual(merged, *task) {
		merged.UpdatedAt = s.clock()
		*task = merged
	}
	s.mu.Unlock()
	s.notify(Change{Action: ActionRealtime, TaskID: taskID})
}

// mergeTaskChanges applies each top-level field of the change object onto
// the task's JSON form. Identity and creation time are not patchable.
func mergeTaskChanges(task board.Task, changes json.RawMessage) (board.Task, error) {
	if len(changes) == 0 {
		return task, nil
	}
	parsed := gjson.ParseBytes(changes)
	if !parsed.IsObject() {
		return board.Task{}, fmt.Errorf("changes payload is not an object")
	}
	raw, err := json.Marshal(task)
	if err != nil {
		return board.Task{}, fmt.Errorf("encode task: %w", err)
	}
	var mergeErr error
	parsed.ForEach(func(key, value gjson.Result) bool {
		field := key.String()
		if field == "id" || field == "created_at" {
			return true
		}
		raw, mergeErr = sjson.SetRawBytes(raw, field, []byte(value.Raw))
		return mergeErr == nil
	})
	if mergeErr != nil {
		return board.Task{}, fmt.Errorf("merge field: %w", mergeErr)
	}
	var merged board.Task
	if err := json.Unmarshal(raw, &merged); err != nil {
		return board.Task{}, fmt.Errorf("decode merged task: %w", err)
	}
	merged.ID = task.ID
	merged.CreatedAt = task.CreatedAt
	merged.UpdatedAt = task.UpdatedAt
	return merged, nil
}

// appendSuggestion adds a pushed suggestion to the pending set unless the id
// is already present (replay) or was already terminated this session.
func (s *Store) appendSuggestion(sugg board.AISuggestion) {
	s.mu.Lock()
	if _, ok := s.suggestions[sugg.ID]; ok {
		s.mu.Unlock()
		return
	}
	clone := sugg
	s.suggestions[sugg.ID] = &clone
	s.suggestionOrder = append(s.suggestionOrder, sugg.ID)
	s.mu.Unlock()
	s.notify(Change{Action: ActionRealtime})
}

// appendNotification adds a pushed notification unless the id already exists.
func (s *Store) appendNotification(notif board.Notification) {
	s.mu.Lock()
	if _, ok := s.notifications[notif.ID]; ok {
		s.mu.Unlock()
		return
	}
	clone := notif
	s.notifications[notif.ID] = &clone
	s.notificationOrder = append(s.notificationOrder, notif.ID)
	s.mu.Unlock()
	s.notify(Change{Action: ActionRealtime})
}
