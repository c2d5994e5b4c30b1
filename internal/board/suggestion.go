package board

import (
	"strings"
	"time"
)

// SuggestionType identifies what accepting a suggestion does to the board.
type SuggestionType string

const (
	SuggestionTaskCreation        SuggestionType = "task-creation"
	SuggestionPriorityAdjustment  SuggestionType = "priority-adjustment"
	SuggestionResourceAllocation  SuggestionType = "resource-allocation"
	SuggestionRiskMitigation      SuggestionType = "risk-mitigation"
	SuggestionProcessOptimization SuggestionType = "process-optimization"
)

// Impact grades how much a suggestion is expected to move the needle.
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// priorityAdjustmentSubjects is the fixed relevance vocabulary for
// priority-adjustment suggestions: a task matches when its title or tags
// reference any of these terms. Deliberately coarse; suggestions do not yet
// carry an explicit task-reference list.
var priorityAdjustmentSubjects = []string{"database", "performance"}

// ReferencesPrioritySubjects reports whether the task's title or tags
// mention the priority-adjustment vocabulary.
func ReferencesPrioritySubjects(t Task) bool {
	title := strings.ToLower(t.Title)
	for _, subject := range priorityAdjustmentSubjects {
		if strings.Contains(title, subject) {
			return true
		}
		for _, tag := range t.Tags {
			if strings.EqualFold(tag, subject) {
				return true
			}
		}
	}
	return false
}

// AISuggestion is a pending recommendation surfaced on the dashboard. It is
// created externally (loaded or pushed) and leaves the pending set exactly
// once, through accept or dismiss.
type AISuggestion struct {
	ID          string         `json:"id"`
	Type        SuggestionType `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Confidence  float64        `json:"confidence"`
	Impact      Impact         `json:"impact"`
	Reasoning   string         `json:"reasoning,omitempty"`
	Actionable  bool           `json:"actionable"`
	CreatedAt   time.Time      `json:"created_at"`
}
