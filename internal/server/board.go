package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sprintdeck/internal/board"
)

// handleCurrentSprint returns the active sprint, or a null sprint when none
// is active.
func (s *Server) handleCurrentSprint(c *gin.Context) {
	sprint, err := s.store.CurrentSprint(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"sprint": sprint})
}

// handleListSprints returns sprints newest first, optionally limited.
func (s *Server) handleListSprints(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.respondError(c, http.StatusBadRequest, errInvalidLimit)
			return
		}
		limit = parsed
	}
	sprints, err := s.store.ListSprints(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"sprints": sprints})
}

// handleListUsers returns the team roster.
func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.store.ListUsers(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"users": users})
}

// handleMetrics computes team metrics, scoped to sprint_id when given and to
// the active sprint otherwise.
func (s *Server) handleMetrics(c *gin.Context) {
	ctx := c.Request.Context()
	var sprint *board.Sprint
	if id := c.Query("sprint_id"); id != "" {
		sprints, err := s.store.ListSprints(ctx, 0)
		if err != nil {
			s.respondError(c, http.StatusInternalServerError, err)
			return
		}
		for i := range sprints {
			if sprints[i].ID == id {
				sprint = &sprints[i]
				break
			}
		}
	} else {
		current, err := s.store.CurrentSprint(ctx)
		if err != nil {
			s.respondError(c, http.StatusInternalServerError, err)
			return
		}
		sprint = current
	}

	tasks, err := s.store.ListTasks(ctx, "")
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"metrics": board.ComputeTeamMetrics(sprint, tasks)})
}

// handleEvents serves the realtime poll endpoint: every update after the
// given cursor plus the next cursor to poll with.
func (s *Server) handleEvents(c *gin.Context) {
	after := int64(0)
	if raw := c.Query("after"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			s.respondError(c, http.StatusBadRequest, errInvalidCursor)
			return
		}
		after = parsed
	}
	updates, next := s.events.After(after)
	respondSuccess(c, http.StatusOK, gin.H{"updates": updates, "next": next})
}
