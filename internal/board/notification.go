package board

import "time"

// Notification is a per-user inbox entry. Read is the only mutable field.
type Notification struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	UserID     string    `json:"user_id"`
	Read       bool      `json:"read"`
	Actionable bool      `json:"actionable"`
	ActionURL  string    `json:"action_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Priority   Priority  `json:"priority"`
}
