package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"sprintdeck/internal/board"
	"sprintdeck/internal/realtime"
)

// MemorySource serves the contract from an in-memory snapshot. It backs the
// HTTP client's fallback path and doubles as the test stub for the store.
type MemorySource struct {
	mu     sync.Mutex
	origin Origin
	clock  func() time.Time
	newID  func() string

	tasks         []board.Task
	sprints       []board.Sprint
	currentID     string
	users         []board.User
	suggestions   []board.AISuggestion
	notifications []board.Notification

	scripted []realtime.Update
}

// NewMemorySource seeds a source from the snapshot and tags every result
// with the given origin.
func NewMemorySource(seed Snapshot, origin Origin) *MemorySource {
	src := &MemorySource{
		origin: origin,
		clock:  func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	src.Reset(seed)
	return src
}

// NewFallback returns a memory source seeded with the deterministic fallback
// dataset.
func NewFallback() *MemorySource {
	return NewMemorySource(FallbackSnapshot(), OriginFallback)
}

// Reset replaces the dataset with the snapshot's contents.
func (m *MemorySource) Reset(seed Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = cloneTasks(seed.Tasks)
	m.sprints = cloneSprints(seed.Sprints)
	m.currentID = ""
	if seed.CurrentSprint != nil {
		m.currentID = seed.CurrentSprint.ID
	}
	m.users = append([]board.User(nil), seed.Users...)
	m.suggestions = append([]board.AISuggestion(nil), seed.Suggestions...)
	m.notifications = append([]board.Notification(nil), seed.Notifications...)
}

// SetClock overrides the timestamp source, for tests.
func (m *MemorySource) SetClock(clock func() time.Time) {
	if clock != nil {
		m.clock = clock
	}
}

// ScriptUpdates queues updates that SubscribeUpdates will deliver in order.
// This replaces wall-clock event simulation with a test-drivable sequence.
func (m *MemorySource) ScriptUpdates(updates ...realtime.Update) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted = append(m.scripted, updates...)
}

func (m *MemorySource) GetTasks(_ context.Context, sprintID string) ([]board.Task, Origin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sprintID == "" {
		return cloneTasks(m.tasks), m.origin, nil
	}
	sprint, ok := m.findSprint(sprintID)
	if !ok {
		return nil, m.origin, fmt.Errorf("datasource: sprint %s: %w", sprintID, ErrNotFound)
	}
	member := make(map[string]struct{}, len(sprint.TaskIDs))
	for _, id := range sprint.TaskIDs {
		member[id] = struct{}{}
	}
	var scoped []board.Task
	for _, task := range m.tasks {
		if _, ok := member[task.ID]; ok {
			scoped = append(scoped, task.Clone())
		}
	}
	return scoped, m.origin, nil
}

func (m *MemorySource) CreateTask(_ context.Context, input board.TaskInput) (board.Task, Origin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock()
	task := board.Task{
		ID:             m.newID(),
		Title:          input.Title,
		Description:    input.Description,
		Status:         input.Status,
		Priority:       input.Priority,
		AssigneeID:     input.AssigneeID,
		ReporterID:     input.ReporterID,
		StoryPoints:    input.StoryPoints,
		Tags:           append([]string(nil), input.Tags...),
		Dependencies:   append([]string(nil), input.Dependencies...),
		CreatedAt:      now,
		UpdatedAt:      now,
		DueDate:        input.DueDate,
		EstimatedHours: input.EstimatedHours,
		BlockReason:    input.BlockReason,
	}
	if !task.Status.Valid() {
		task.Status = board.StatusTodo
	}
	if !task.Priority.Valid() {
		task.Priority = board.PriorityMedium
	}
	m.tasks = append(m.tasks, task)
	return task.Clone(), m.origin, nil
}

func (m *MemorySource) UpdateTask(_ context.Context, id string, patch board.TaskPatch) (board.Task, Origin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		if m.tasks[i].ID != id {
			continue
		}
		if patch.Apply(&m.tasks[i]) {
			m.tasks[i].UpdatedAt = m.clock()
		}
		return m.tasks[i].Clone(), m.origin, nil
	}
	return board.Task{}, m.origin, fmt.Errorf("datasource: task %s: %w", id, ErrNotFound)
}

func (m *MemorySource) DeleteTask(_ context.Context, id string) (Origin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return m.origin, nil
		}
	}
	return m.origin, fmt.Errorf("datasource: task %s: %w", id, ErrNotFound)
}

func (m *MemorySource) GetCurrentSprint(_ context.Context) (*board.Sprint, Origin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.currentID == "" {
		return nil, m.origin, nil
	}
	sprint, ok := m.findSprint(m.currentID)
	if !ok {
		return nil, m.origin, nil
	}
	clone := sprint.Clone()
	return &clone, m.origin, nil
}

func (m *MemorySource) GetSprints(_ context.Context, limit int) ([]board.Sprint, Origin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sprints := cloneSprints(m.sprints)
	if limit > 0 && len(sprints) > limit {
		sprints = sprints[:limit]
	}
	return sprints, m.origin, nil
}

func (m *MemorySource) GetUsers(_ context.Context) ([]board.User, Origin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]board.User(nil), m.users...), m.origin, nil
}

func (m *MemorySource) GetSuggestions(_ context.Context) ([]board.AISuggestion, Origin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]board.AISuggestion(nil), m.suggestions...), m.origin, nil
}

func (m *MemorySource) AcceptSuggestion(_ context.Context, id string) (Origin, error) {
	return m.removeSuggestion(id), nil
}

func (m *MemorySource) DismissSuggestion(_ context.Context, id string) (Origin, error) {
	return m.removeSuggestion(id), nil
}

func (m *MemorySource) removeSuggestion(id string) Origin {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.suggestions {
		if m.suggestions[i].ID == id {
			m.suggestions = append(m.suggestions[:i], m.suggestions[i+1:]...)
			break
		}
	}
	return m.origin
}

func (m *MemorySource) GetNotifications(_ context.Context) ([]board.Notification, Origin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]board.Notification(nil), m.notifications...), m.origin, nil
}

func (m *MemorySource) MarkNotificationRead(_ context.Context, id string) (Origin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].ID == id {
			m.notifications[i].Read = true
			return m.origin, nil
		}
	}
	return m.origin, fmt.Errorf("datasource: notification %s: %w", id, ErrNotFound)
}

func (m *MemorySource) GetTeamMetrics(_ context.Context, sprintID string) (board.TeamMetrics, Origin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sprintID == "" {
		sprintID = m.currentID
	}
	var sprint *board.Sprint
	if found, ok := m.findSprint(sprintID); ok {
		clone := found.Clone()
		sprint = &clone
	}
	return board.ComputeTeamMetrics(sprint, m.tasks), m.origin, nil
}

// SubscribeUpdates delivers the scripted sequence in order on a background
// goroutine, then idles until unsubscribed.
func (m *MemorySource) SubscribeUpdates(onUpdate func(realtime.Update)) (func(), error) {
	m.mu.Lock()
	pending := append([]realtime.Update(nil), m.scripted...)
	m.scripted = nil
	m.mu.Unlock()
	done := make(chan struct{})
	var once sync.Once
	go func() {
		for _, update := range pending {
			select {
			case <-done:
				return
			default:
			}
			if onUpdate != nil {
				onUpdate(update)
			}
		}
	}()
	return func() { once.Do(func() { close(done) }) }, nil
}

func (m *MemorySource) findSprint(id string) (board.Sprint, bool) {
	for _, sprint := range m.sprints {
		if sprint.ID == id {
			return sprint, true
		}
	}
	return board.Sprint{}, false
}

func cloneTasks(tasks []board.Task) []board.Task {
	out := make([]board.Task, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Clone())
	}
	return out
}

func cloneSprints(sprints []board.Sprint) []board.Sprint {
	out := make([]board.Sprint, 0, len(sprints))
	for _, sprint := range sprints {
		out = append(out, sprint.Clone())
	}
	return out
}
