package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sprintdeck/internal/board"
	"sprintdeck/internal/realtime"
	"sprintdeck/internal/storage/sqlite"
)

var (
	errInvalidLimit  = fmt.Errorf("limit must be a non-negative integer")
	errInvalidCursor = fmt.Errorf("after must be a non-negative integer")
)

// handleListSuggestions returns the pending suggestion set.
func (s *Server) handleListSuggestions(c *gin.Context) {
	suggestions, err := s.store.ListSuggestions(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"suggestions": suggestions})
}

// handleAcceptSuggestion applies a suggestion's board mutation and removes
// it from the pending set. Accepting an already-gone suggestion succeeds so
// the client mirror stays idempotent.
func (s *Server) handleAcceptSuggestion(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	sugg, err := s.store.GetSuggestion(ctx, id)
	if errors.Is(err, sqlite.ErrNotFound) {
		respondSuccess(c, http.StatusOK, gin.H{"status": "accepted"})
		return
	}
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	now := time.Now().UTC()
	switch sugg.Type {
	case board.SuggestionTaskCreation:
		if _, err := s.store.CreateTask(ctx, board.Task{
			ID:          uuid.NewString(),
			Title:       sugg.Title,
			Description: sugg.Description,
			Status:      board.StatusTodo,
			Priority:    board.PriorityMedium,
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			s.respondError(c, http.StatusInternalServerError, err)
			return
		}
	case board.SuggestionPriorityAdjustment:
		tasks, err := s.store.ListTasks(ctx, "")
		if err != nil {
			s.respondError(c, http.StatusInternalServerError, err)
			return
		}
		for _, task := range tasks {
			if !board.ReferencesPrioritySubjects(task) || task.Priority == board.PriorityHigh {
				continue
			}
			task.Priority = board.PriorityHigh
			task.UpdatedAt = now
			if _, err := s.store.SaveTask(ctx, task); err != nil {
				s.respondError(c, http.StatusInternalServerError, err)
				return
			}
			s.events.Append(realtime.Update{
				ID:        uuid.NewString(),
				Kind:      realtime.KindTaskUpdated,
				EmittedAt: now,
				TaskID:    task.ID,
				Changes:   json.RawMessage(`{"priority":"high"}`),
			})
		}
	default:
		s.logger.Info("suggestion type has no board mutation",
			"suggestion", id, "type", string(sugg.Type))
	}

	if err := s.store.DeleteSuggestion(ctx, id); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "accepted"})
}

// handleDismissSuggestion drops a suggestion with no other mutation.
func (s *Server) handleDismissSuggestion(c *gin.Context) {
	if err := s.store.DeleteSuggestion(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "dismissed"})
}

// handleListNotifications returns every notification.
func (s *Server) handleListNotifications(c *gin.Context) {
	notifications, err := s.store.ListNotifications(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"notifications": notifications})
}

// handleMarkNotificationRead flips the read flag.
func (s *Server) handleMarkNotificationRead(c *gin.Context) {
	if err := s.store.MarkNotificationRead(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "read"})
}
