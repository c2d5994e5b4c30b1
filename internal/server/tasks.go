package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sprintdeck/internal/board"
	"sprintdeck/internal/realtime"
)

// handleListTasks returns all tasks, or the tasks of one sprint when
// sprint_id is given.
func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.store.ListTasks(c.Request.Context(), c.Query("sprint_id"))
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"tasks": tasks})
}

// handleCreateTask inserts a new task. The server owns id and timestamps.
func (s *Server) handleCreateTask(c *gin.Context) {
	var input board.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(input.Title) == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("title is required"))
		return
	}

	now := time.Now().UTC()
	task, err := s.store.CreateTask(c.Request.Context(), board.Task{
		ID:             uuid.NewString(),
		Title:          input.Title,
		Description:    input.Description,
		Status:         input.Status,
		Priority:       input.Priority,
		AssigneeID:     input.AssigneeID,
		ReporterID:     input.ReporterID,
		StoryPoints:    input.StoryPoints,
		Tags:           input.Tags,
		Dependencies:   input.Dependencies,
		CreatedAt:      now,
		UpdatedAt:      now,
		DueDate:        input.DueDate,
		EstimatedHours: input.EstimatedHours,
		BlockReason:    input.BlockReason,
	})
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"task": task})
}

// handleUpdateTask applies a partial update. The raw patch body is replayed
// to other clients through the event log.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id := c.Param("id")
	raw, err := c.GetRawData()
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	var patch board.TaskPatch
	if err := json.Unmarshal(raw, &patch); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	task, err := s.store.GetTask(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	if patch.Apply(&task) {
		task.UpdatedAt = time.Now().UTC()
		task, err = s.store.SaveTask(c.Request.Context(), task)
		if err != nil {
			s.respondError(c, http.StatusInternalServerError, err)
			return
		}
		s.events.Append(realtime.Update{
			ID:        uuid.NewString(),
			Kind:      realtime.KindTaskUpdated,
			EmittedAt: task.UpdatedAt,
			TaskID:    task.ID,
			Changes:   json.RawMessage(raw),
		})
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

// handleDeleteTask removes a task. Dependency references elsewhere stay.
func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.store.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
