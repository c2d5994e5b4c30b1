package datasource

import (
	"time"

	"sprintdeck/internal/board"
)

// Fixed timestamps keep the fallback dataset byte-for-byte reproducible
// across runs so tests and the offline path behave identically.
var (
	seedDay    = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	seedDue    = seedDay.AddDate(0, 0, 10)
	sprintEnd  = seedDay.AddDate(0, 0, 14)
	seedSprint = board.Sprint{
		ID:        "sprint-1",
		Name:      "Sprint 12",
		Goal:      "Stabilize checkout and search",
		StartDate: seedDay,
		EndDate:   sprintEnd,
		Status:    board.SprintActive,
		TaskIDs:   []string{"task-1", "task-2", "task-3", "task-4", "task-5", "task-6"},
		Capacity:  40,
		Velocity:  0.35,
		Burndown: []board.BurndownPoint{
			{Date: seedDay, Remaining: 34, Ideal: 34, Actual: 34},
			{Date: seedDay.AddDate(0, 0, 2), Remaining: 29, Ideal: 29.1, Actual: 29},
			{Date: seedDay.AddDate(0, 0, 4), Remaining: 26, Ideal: 24.3, Actual: 26},
		},
	}
)

// FallbackSnapshot returns the deterministic dataset substituted whenever the
// live service is unreachable.
func FallbackSnapshot() Snapshot {
	current := seedSprint.Clone()
	return Snapshot{
		Origin:        OriginFallback,
		CurrentSprint: &current,
		Sprints: []board.Sprint{
			seedSprint.Clone(),
			{
				ID:        "sprint-0",
				Name:      "Sprint 11",
				Goal:      "Payment provider migration",
				StartDate: seedDay.AddDate(0, 0, -14),
				EndDate:   seedDay,
				Status:    board.SprintReview,
				Capacity:  40,
				Velocity:  0.8,
			},
		},
		Users: []board.User{
			{ID: "user-1", Name: "Mara Voss", Email: "mara@sprintdeck.dev", Role: board.RoleScrumMaster, Mood: "focused", Workload: 0.6},
			{ID: "user-2", Name: "Dev Okafor", Email: "dev@sprintdeck.dev", Role: board.RoleDeveloper, Mood: "steady", Workload: 0.9},
			{ID: "user-3", Name: "Lena Park", Email: "lena@sprintdeck.dev", Role: board.RoleDeveloper, Workload: 0.7},
			{ID: "user-4", Name: "Tom Hale", Email: "tom@sprintdeck.dev", Role: board.RoleProductManager},
		},
		Tasks: []board.Task{
			{
				ID: "task-1", Title: "Optimize database connection pooling", Status: board.StatusInProgress,
				Priority: board.PriorityHigh, AssigneeID: "user-2", ReporterID: "user-1", StoryPoints: 8,
				Tags: []string{"database", "backend"}, CreatedAt: seedDay, UpdatedAt: seedDay,
				DueDate: &seedDue, EstimatedHours: 16,
			},
			{
				ID: "task-2", Title: "Checkout page drops session on refresh", Status: board.StatusTodo,
				Priority: board.PriorityCritical, AssigneeID: "user-3", ReporterID: "user-4", StoryPoints: 5,
				Tags: []string{"frontend", "bug"}, CreatedAt: seedDay.Add(time.Hour), UpdatedAt: seedDay.Add(time.Hour),
			},
			{
				ID: "task-3", Title: "Search performance regression on large catalogs", Status: board.StatusTodo,
				Priority: board.PriorityMedium, AssigneeID: "user-2", ReporterID: "user-1", StoryPoints: 8,
				Tags: []string{"performance", "search"}, CreatedAt: seedDay.Add(2 * time.Hour), UpdatedAt: seedDay.Add(2 * time.Hour),
				Dependencies: []string{"task-1"},
			},
			{
				ID: "task-4", Title: "Write release notes for 2.4", Status: board.StatusReview,
				Priority: board.PriorityLow, AssigneeID: "user-4", ReporterID: "user-1", StoryPoints: 2,
				Tags: []string{"docs"}, CreatedAt: seedDay.Add(3 * time.Hour), UpdatedAt: seedDay.Add(26 * time.Hour),
			},
			{
				ID: "task-5", Title: "Migrate CI runners to new fleet", Status: board.StatusBlocked,
				Priority: board.PriorityMedium, AssigneeID: "user-3", ReporterID: "user-1", StoryPoints: 3,
				Tags: []string{"infra"}, CreatedAt: seedDay.Add(4 * time.Hour), UpdatedAt: seedDay.Add(28 * time.Hour),
				BlockReason: "waiting on ops approval",
			},
			{
				ID: "task-6", Title: "Index audit for orders table", Status: board.StatusDone,
				Priority: board.PriorityHigh, AssigneeID: "user-2", ReporterID: "user-1", StoryPoints: 8,
				Tags: []string{"database"}, CreatedAt: seedDay.Add(5 * time.Hour), UpdatedAt: seedDay.Add(40 * time.Hour),
			},
		},
		Suggestions: []board.AISuggestion{
			{
				ID: "sugg-1", Type: board.SuggestionPriorityAdjustment, Title: "Raise priority of database work",
				Description: "Database latency correlates with the checkout incident spike.",
				Confidence:  0.82, Impact: board.ImpactHigh,
				Reasoning: "Three of the last five incidents trace back to pool exhaustion.", Actionable: true,
				CreatedAt: seedDay.Add(6 * time.Hour),
			},
			{
				ID: "sugg-2", Type: board.SuggestionTaskCreation, Title: "Add load test for search endpoint",
				Description: "No load coverage exists for the new search path.",
				Confidence:  0.67, Impact: board.ImpactMedium,
				Reasoning: "Search p99 doubled after the catalog import.", Actionable: true,
				CreatedAt: seedDay.Add(7 * time.Hour),
			},
			{
				ID: "sugg-3", Type: board.SuggestionProcessOptimization, Title: "Shorten standup to 10 minutes",
				Confidence: 0.4, Impact: board.ImpactLow,
				Reasoning: "Average standup ran 22 minutes last sprint.", Actionable: false,
				CreatedAt: seedDay.Add(8 * time.Hour),
			},
		},
		Notifications: []board.Notification{
			{
				ID: "notif-1", Type: "mention", Title: "You were mentioned",
				Message: "Mara mentioned you on task-1.", UserID: "user-2",
				Actionable: true, ActionURL: "/tasks/task-1",
				CreatedAt: seedDay.Add(time.Hour), Priority: board.PriorityMedium,
			},
			{
				ID: "notif-2", Type: "sprint", Title: "Sprint 12 started",
				Message: "Sprint 12 is now active.", UserID: "user-2",
				CreatedAt: seedDay, Priority: board.PriorityLow,
			},
		},
	}
}
