// internal/store/store.go
//
// The Store is the single mutation authority for the dashboard. Every entity
// collection lives here; the TUI, the drag-and-drop controller, and the
// realtime feed all route their writes through named actions. Each committed
// action emits exactly one change notification, so subscribers recompute the
// derived view once per mutation and never observe a partial state.

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"sprintdeck/internal/board"
	"sprintdeck/internal/datasource"
)

// ErrNotFound reports that an action addressed an id absent from its
// collection. The caller decides retry/toast/ignore; the store neither logs
// nor swallows it.
var ErrNotFound = errors.New("store: not found")

// Logger records store diagnostics. It matches logging.Logger's signature.
type Logger interface {
	Printf(format string, args ...any)
}

// Action names the mutation that produced a change notification.
type Action string

const (
	ActionLoad             Action = "load"
	ActionCreateTask       Action = "create-task"
	ActionUpdateTask       Action = "update-task"
	ActionDeleteTask       Action = "delete-task"
	ActionMoveTask         Action = "move-task"
	ActionAcceptSuggestion Action = "accept-suggestion"
	ActionDismissSuggest   Action = "dismiss-suggestion"
	ActionNotificationRead Action = "notification-read"
	ActionRealtime         Action = "realtime"
	ActionInvalidate       Action = "invalidate"
)

// Change is one committed mutation, as seen by subscribers.
type Change struct {
	Action Action
	TaskID string
}

// Subscription delivers change notifications to one consumer.
type Subscription struct {
	Changes <-chan Change
	cancel  func()
}

// Close detaches the subscriber.
func (s Subscription) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Option customizes Store construction.
type Option func(*Store)

// WithClock lets tests control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator lets tests control generated ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithLogger injects a diagnostics logger.
func WithLogger(logger Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store holds all board state. Constructed once at application start with an
// injected data source; tests build isolated instances freely.
type Store struct {
	source datasource.Source
	logger Logger
	clock  func() time.Time
	newID  func() string

	mu                sync.Mutex
	loading           bool
	loaded            bool
	invalidated       bool
	origin            datasource.Origin
	tasks             map[string]*board.Task
	taskOrder         []string
	sprints           []board.Sprint
	currentSprintID   string
	users             map[string]board.User
	userOrder         []string
	suggestions       map[string]*board.AISuggestion
	suggestionOrder   []string
	notifications     map[string]*board.Notification
	notificationOrder []string

	subMu       sync.Mutex
	subscribers map[chan Change]struct{}
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// New constructs an empty store bound to the given data source.
func New(source datasource.Source, opts ...Option) *Store {
	s := &Store{
		source:        source,
		logger:        nopLogger{},
		clock:         func() time.Time { return time.Now().UTC() },
		newID:         uuid.NewString,
		origin:        datasource.OriginLive,
		tasks:         map[string]*board.Task{},
		users:         map[string]board.User{},
		suggestions:   map[string]*board.AISuggestion{},
		notifications: map[string]*board.Notification{},
		subscribers:   map[chan Change]struct{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Subscribe attaches a change listener. The channel is buffered; a consumer
// that falls far behind loses the oldest notification rather than blocking
// the mutation path.
func (s *Store) Subscribe() Subscription {
	ch := make(chan Change, 64)
	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()
	return Subscription{
		Changes: ch,
		cancel: func() {
			s.subMu.Lock()
			if _, ok := s.subscribers[ch]; ok {
				delete(s.subscribers, ch)
				close(ch)
			}
			s.subMu.Unlock()
		},
	}
}

// notify emits exactly one change per committed mutation. Called outside the
// state lock.
func (s *Store) notify(change Change) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- change:
		default:
			<-ch
			ch <- change
			s.logger.Printf("store: subscriber lagging, dropped oldest change")
		}
	}
}

// LoadInitialData fetches the full snapshot and atomically replaces all five
// collections. The loading flag is set for the duration. Idempotent: calling
// again re-fetches and replaces, never duplicates.
func (s *Store) LoadInitialData(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.mu.Unlock()

	snap, err := datasource.Load(ctx, s.source)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("store: load initial data: %w", err)
	}
	s.tasks = make(map[string]*board.Task, len(snap.Tasks))
	s.taskOrder = s.taskOrder[:0]
	for _, task := range snap.Tasks {
		clone := task.Clone()
		s.tasks[task.ID] = &clone
		s.taskOrder = append(s.taskOrder, task.ID)
	}
	s.sprints = append(s.sprints[:0:0], snap.Sprints...)
	s.currentSprintID = ""
	if snap.CurrentSprint != nil {
		s.currentSprintID = snap.CurrentSprint.ID
	}
	s.users = make(map[string]board.User, len(snap.Users))
	s.userOrder = s.userOrder[:0]
	for _, user := range snap.Users {
		s.users[user.ID] = user
		s.userOrder = append(s.userOrder, user.ID)
	}
	s.suggestions = make(map[string]*board.AISuggestion, len(snap.Suggestions))
	s.suggestionOrder = s.suggestionOrder[:0]
	for _, sugg := range snap.Suggestions {
		clone := sugg
		s.suggestions[sugg.ID] = &clone
		s.suggestionOrder = append(s.suggestionOrder, sugg.ID)
	}
	s.notifications = make(map[string]*board.Notification, len(snap.Notifications))
	s.notificationOrder = s.notificationOrder[:0]
	for _, notif := range snap.Notifications {
		clone := notif
		s.notifications[notif.ID] = &clone
		s.notificationOrder = append(s.notificationOrder, notif.ID)
	}
	s.origin = snap.Origin
	s.loaded = true
	s.invalidated = false
	s.mu.Unlock()

	s.notify(Change{Action: ActionLoad})
	return nil
}

// Loading reports whether an initial load is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Loaded reports whether a snapshot has been applied at least once.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Origin reports where the last snapshot came from.
func (s *Store) Origin() datasource.Origin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.origin
}

// Invalidated reports whether an unrecognized realtime event signalled that
// state may be stale. Cleared by the next LoadInitialData.
func (s *Store) Invalidated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidated
}

// CreateTask generates an id, stamps both timestamps, and appends the task.
// Never fails for well-formed input; field validation is the form layer's
// job. The creation is mirrored to the data source after commit.
func (s *Store) CreateTask(ctx context.Context, input board.TaskInput) (board.Task, datasource.Origin) {
	s.mu.Lock()
	task := s.createTaskLocked(input)
	result := task.Clone()
	s.mu.Unlock()

	s.notify(Change{Action: ActionCreateTask, TaskID: result.ID})
	origin := s.mirrorCreate(ctx, input)
	return result, origin
}

// createTaskLocked is the shared creation path for CreateTask and the
// suggestion applier. Caller holds s.mu.
func (s *Store) createTaskLocked(input board.TaskInput) *board.Task {
	now := s.clock()
	task := &board.Task{
		ID:             s.newID(),
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
	s.tasks[task.ID] = task
	s.taskOrder = append(s.taskOrder, task.ID)
	return task
}

func (s *Store) mirrorCreate(ctx context.Context, input board.TaskInput) datasource.Origin {
	if s.source == nil {
		return datasource.OriginFallback
	}
	_, origin, err := s.source.CreateTask(ctx, input)
	if err != nil {
		s.logger.Printf("store: mirror create task: %v", err)
	}
	return origin
}

// UpdateTask merges the patch into the task and refreshes UpdatedAt when an
// observable field changed. Returns ErrNotFound for an absent id; an update
// never creates a task.
func (s *Store) UpdateTask(ctx context.Context, id string, patch board.TaskPatch) (board.Task, datasource.Origin, error) {
	return s.patchTask(ctx, id, patch, ActionUpdateTask)
}

// MoveTask is the named status transition targeted by the drag-and-drop
// controller. Any status may move to any other; repeating a move is a no-op
// that leaves UpdatedAt untouched.
func (s *Store) MoveTask(ctx context.Context, id string, status board.Status) (board.Task, datasource.Origin, error) {
	return s.patchTask(ctx, id, board.TaskPatch{Status: &status}, ActionMoveTask)
}

func (s *Store) patchTask(ctx context.Context, id string, patch board.TaskPatch, action Action) (board.Task, datasource.Origin, error) {
	s.mu.Lock()
	task, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return board.Task{}, datasource.OriginLive, fmt.Errorf("store: task %s: %w", id, ErrNotFound)
	}
	if patch.Apply(task) {
		task.UpdatedAt = s.clock()
	}
	result := task.Clone()
	s.mu.Unlock()

	s.notify(Change{Action: action, TaskID: id})
	origin := datasource.OriginFallback
	if s.source != nil {
		var err error
		_, origin, err = s.source.UpdateTask(ctx, id, patch)
		if err != nil {
			s.logger.Printf("store: mirror %s %s: %v", action, id, err)
		}
	}
	return result, origin, nil
}

// DeleteTask removes the task. Dangling dependency references in other tasks
// are left in place; cross-task referential integrity is not this store's
// contract.
func (s *Store) DeleteTask(ctx context.Context, id string) (datasource.Origin, error) {
	s.mu.Lock()
	if _, ok := s.tasks[id]; !ok {
		s.mu.Unlock()
		return datasource.OriginLive, fmt.Errorf("store: task %s: %w", id, ErrNotFound)
	}
	delete(s.tasks, id)
	for i, candidate := range s.taskOrder {
		if candidate == id {
			s.taskOrder = append(s.taskOrder[:i], s.taskOrder[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.notify(Change{Action: ActionDeleteTask, TaskID: id})
	origin := datasource.OriginFallback
	if s.source != nil {
		var err error
		origin, err = s.source.DeleteTask(ctx, id)
		if err != nil {
			s.logger.Printf("store: mirror delete task %s: %v", id, err)
		}
	}
	return origin, nil
}

// MarkNotificationRead sets Read on the target. Idempotent; ErrNotFound for
// an absent id.
func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	s.mu.Lock()
	notif, ok := s.notifications[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("store: notification %s: %w", id, ErrNotFound)
	}
	notif.Read = true
	s.mu.Unlock()

	s.notify(Change{Action: ActionNotificationRead})
	if s.source != nil {
		if _, err := s.source.MarkNotificationRead(ctx, id); err != nil {
			s.logger.Printf("store: mirror notification read %s: %v", id, err)
		}
	}
	return nil
}

// MarkAllNotificationsRead sets Read on every notification. Idempotent.
func (s *Store) MarkAllNotificationsRead(ctx context.Context) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.notificationOrder))
	for _, id := range s.notificationOrder {
		if notif := s.notifications[id]; notif != nil && !notif.Read {
			notif.Read = true
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()

	s.notify(Change{Action: ActionNotificationRead})
	if s.source == nil {
		return
	}
	for _, id := range ids {
		if _, err := s.source.MarkNotificationRead(ctx, id); err != nil {
			s.logger.Printf("store: mirror notification read %s: %v", id, err)
		}
	}
}

// Task returns a copy of one task.
func (s *Store) Task(id string) (board.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return board.Task{}, false
	}
	return task.Clone(), true
}

// Tasks returns copies of all tasks in insertion order.
func (s *Store) Tasks() []board.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]board.Task, 0, len(s.taskOrder))
	for _, id := range s.taskOrder {
		if task := s.tasks[id]; task != nil {
			out = append(out, task.Clone())
		}
	}
	return out
}

// Sprints returns copies of the sprint collection.
func (s *Store) Sprints() []board.Sprint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]board.Sprint, 0, len(s.sprints))
	for _, sprint := range s.sprints {
		out = append(out, sprint.Clone())
	}
	return out
}

// CurrentSprint returns the active sprint, if any.
func (s *Store) CurrentSprint() (board.Sprint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sprint := range s.sprints {
		if sprint.ID == s.currentSprintID {
			return sprint.Clone(), true
		}
	}
	return board.Sprint{}, false
}

// User looks up a team member by id.
func (s *Store) User(id string) (board.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	return user, ok
}

// Users returns the team in load order.
func (s *Store) Users() []board.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]board.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, s.users[id])
	}
	return out
}

// Suggestions returns the pending suggestions in arrival order.
func (s *Store) Suggestions() []board.AISuggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]board.AISuggestion, 0, len(s.suggestionOrder))
	for _, id := range s.suggestionOrder {
		if sugg := s.suggestions[id]; sugg != nil {
			out = append(out, *sugg)
		}
	}
	return out
}

// Notifications returns copies of the inbox in arrival order.
func (s *Store) Notifications() []board.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]board.Notification, 0, len(s.notificationOrder))
	for _, id := range s.notificationOrder {
		if notif := s.notifications[id]; notif != nil {
			out = append(out, *notif)
		}
	}
	return out
}

// UnreadCount reports how many notifications are unread.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, notif := range s.notifications {
		if !notif.Read {
			count++
		}
	}
	return count
}

// removeSuggestionLocked drops a suggestion from the pending set. Removing an
// absent id is a no-op. Caller holds s.mu.
func (s *Store) removeSuggestionLocked(id string) {
	if _, ok := s.suggestions[id]; !ok {
		return
	}
	delete(s.suggestions, id)
	for i, candidate := range s.suggestionOrder {
		if candidate == id {
			s.suggestionOrder = append(s.suggestionOrder[:i], s.suggestionOrder[i+1:]...)
			break
		}
	}
}
