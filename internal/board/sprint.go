package board

import (
	"fmt"
	"time"
)

// SprintStatus tracks where a sprint sits in its lifecycle.
type SprintStatus string

const (
	SprintPlanning  SprintStatus = "planning"
	SprintActive    SprintStatus = "active"
	SprintReview    SprintStatus = "review"
	SprintCancelled SprintStatus = "cancelled"
)

// BurndownPoint is one sample in a sprint's burndown series.
type BurndownPoint struct {
	Date      time.Time `json:"date"`
	Remaining int       `json:"remaining"`
	Ideal     float64   `json:"ideal"`
	Actual    int       `json:"actual"`
}

// Sprint groups tasks for a single iteration. TaskIDs is a view over the
// task collection; the tasks themselves live in the store.
type Sprint struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Goal      string          `json:"goal,omitempty"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Status    SprintStatus    `json:"status"`
	TaskIDs   []string        `json:"task_ids,omitempty"`
	Capacity  int             `json:"capacity"`
	Velocity  float64         `json:"velocity,omitempty"`
	Burndown  []BurndownPoint `json:"burndown,omitempty"`
}

// Validate checks the structural invariants: dates ordered, burndown series
// strictly increasing by date.
func (s Sprint) Validate() error {
	if !s.StartDate.Before(s.EndDate) {
		return fmt.Errorf("board: sprint %s: start date must precede end date", s.ID)
	}
	for i := 1; i < len(s.Burndown); i++ {
		if !s.Burndown[i-1].Date.Before(s.Burndown[i].Date) {
			return fmt.Errorf("board: sprint %s: burndown series not strictly increasing at index %d", s.ID, i)
		}
	}
	return nil
}

// Clone returns a deep copy of the sprint.
func (s Sprint) Clone() Sprint {
	out := s
	out.TaskIDs = append([]string(nil), s.TaskIDs...)
	out.Burndown = append([]BurndownPoint(nil), s.Burndown...)
	return out
}
