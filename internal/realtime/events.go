package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"sprintdeck/internal/board"
)

// Kind labels a realtime update. The dispatcher only understands the three
// kinds below; anything else is treated as a full-invalidation signal, never
// as an error.
type Kind string

const (
	KindTaskUpdated     Kind = "task-updated"
	KindNewSuggestion   Kind = "new-suggestion"
	KindNewNotification Kind = "new-notification"
)

// Known reports whether the consumer understands this kind.
func (k Kind) Known() bool {
	switch k {
	case KindTaskUpdated, KindNewSuggestion, KindNewNotification:
		return true
	}
	return false
}

// Update is one discrete server-pushed event. Delivery is at-most-once and
// unordered; consumers must stay idempotent under replay.
type Update struct {
	ID           string              `json:"id"`
	Kind         Kind                `json:"kind"`
	EmittedAt    time.Time           `json:"emitted_at"`
	TaskID       string              `json:"task_id,omitempty"`
	Changes      json.RawMessage     `json:"changes,omitempty"`
	Suggestion   *board.AISuggestion `json:"suggestion,omitempty"`
	Notification *board.Notification `json:"notification,omitempty"`
}

// Normalize applies canonical formatting before validation.
func (u *Update) Normalize() {
	if u == nil {
		return
	}
	u.ID = strings.TrimSpace(u.ID)
	u.Kind = Kind(strings.TrimSpace(string(u.Kind)))
	u.TaskID = strings.TrimSpace(u.TaskID)
}

// Validate enforces the payload shape for the kinds we understand. Unknown
// kinds pass validation: the dispatcher handles them as invalidation.
func (u Update) Validate() error {
	if u.Kind == "" {
		return errors.New("kind is required")
	}
	switch u.Kind {
	case KindTaskUpdated:
		if u.TaskID == "" {
			return fmt.Errorf("%s: task_id is required", u.Kind)
		}
	case KindNewSuggestion:
		if u.Suggestion == nil || u.Suggestion.ID == "" {
			return fmt.Errorf("%s: suggestion with id is required", u.Kind)
		}
	case KindNewNotification:
		if u.Notification == nil || u.Notification.ID == "" {
			return fmt.Errorf("%s: notification with id is required", u.Kind)
		}
	}
	return nil
}

// Logger records feed diagnostics. It matches logging.Logger's signature.
type Logger interface {
	Printf(format string, args ...any)
}
