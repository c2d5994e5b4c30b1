// internal/store/applier.go
//
// Accepting or dismissing an AI suggestion. Acceptance maps the suggestion
// type to a bounded set of mutations and always removes the suggestion from
// the pending set, whether or not anything else changed.

package store

import (
	"context"

	"sprintdeck/internal/board"
	"sprintdeck/internal/datasource"
)

// AcceptSuggestion applies a pending suggestion and removes it from the
// pending set. An absent id is a no-op, not an error: the suggestion may
// have been dismissed concurrently. Idempotent.
func (s *Store) AcceptSuggestion(ctx context.Context, id string) datasource.Origin {
	s.mu.Lock()
	sugg, ok := s.suggestions[id]
	if !ok {
		s.mu.Unlock()
		return datasource.OriginLive
	}
	accepted := *sugg

	switch accepted.Type {
	case board.SuggestionTaskCreation:
		// Reasoning stays on the suggestion, never on the task.
		s.createTaskLocked(board.TaskInput{
			Title:       accepted.Title,
			Description: accepted.Description,
			Status:      board.StatusTodo,
			Priority:    board.PriorityMedium,
		})
	case board.SuggestionPriorityAdjustment:
		high := board.PriorityHigh
		for _, taskID := range s.taskOrder {
			task := s.tasks[taskID]
			if task == nil || !board.ReferencesPrioritySubjects(*task) {
				continue
			}
			if (board.TaskPatch{Priority: &high}).Apply(task) {
				task.UpdatedAt = s.clock()
			}
		}
	default:
		s.logger.Printf("store: suggestion %s type %s has no board mutation", id, accepted.Type)
	}

	s.removeSuggestionLocked(id)
	s.mu.Unlock()

	s.notify(Change{Action: ActionAcceptSuggestion})
	origin := datasource.OriginFallback
	if s.source != nil {
		var err error
		origin, err = s.source.AcceptSuggestion(ctx, id)
		if err != nil {
			s.logger.Printf("store: mirror accept suggestion %s: %v", id, err)
		}
	}
	return origin
}

// DismissSuggestion removes a suggestion from the pending set with no other
// mutation. Idempotent; dismissing an absent id is a no-op.
func (s *Store) DismissSuggestion(ctx context.Context, id string) datasource.Origin {
	s.mu.Lock()
	_, ok := s.suggestions[id]
	if ok {
		s.removeSuggestionLocked(id)
	}
	s.mu.Unlock()
	if !ok {
		return datasource.OriginLive
	}

	s.notify(Change{Action: ActionDismissSuggest})
	origin := datasource.OriginFallback
	if s.source != nil {
		var err error
		origin, err = s.source.DismissSuggestion(ctx, id)
		if err != nil {
			s.logger.Printf("store: mirror dismiss suggestion %s: %v", id, err)
		}
	}
	return origin
}
