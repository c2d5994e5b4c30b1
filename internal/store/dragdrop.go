// internal/store/dragdrop.go
//
// Drag-and-drop intent handling. A column is nothing but a status value, so
// the controller's whole job is deciding whether a drop becomes a MoveTask.

package store

import (
	"context"

	"sprintdeck/internal/board"
)

// DropController turns drop intents from the UI into status transitions.
// Concurrent drags of different tasks commute; each only touches its own
// task's status.
type DropController struct {
	store *Store
}

// NewDropController binds a controller to the store.
func NewDropController(store *Store) *DropController {
	return &DropController{store: store}
}

// Drop resolves one drop intent. target is the column surface the card was
// released on; anything that is not a valid status (a cancelled drag, a drop
// outside the board) performs no transition. A drop back onto the task's own
// column is accepted visually but mutates nothing, since in-column order is
// not persisted. Returns the task and whether a transition was committed.
func (c *DropController) Drop(ctx context.Context, taskID, target string) (board.Task, bool, error) {
	status := board.Status(target)
	if !status.Valid() {
		task, _ := c.store.Task(taskID)
		return task, false, nil
	}
	task, ok := c.store.Task(taskID)
	if !ok {
		return board.Task{}, false, ErrNotFound
	}
	if task.Status == status {
		return task, false, nil
	}
	moved, _, err := c.store.MoveTask(ctx, taskID, status)
	if err != nil {
		return board.Task{}, false, err
	}
	return moved, true, nil
}
