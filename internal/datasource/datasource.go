// internal/datasource/datasource.go
//
// The data-source contract the dashboard core consumes. Implementations must
// tolerate the backing service being unreachable by substituting the
// deterministic fallback snapshot; callers learn which path served them
// through the Origin tag but otherwise treat both identically.

package datasource

import (
	"context"
	"errors"

	"sprintdeck/internal/board"
	"sprintdeck/internal/realtime"
)

// Origin tags whether a result came from the live service or the local
// fallback path.
type Origin string

const (
	OriginLive     Origin = "live"
	OriginFallback Origin = "fallback"
)

// ErrNotFound reports that an id addressed an absent entity. It is a real
// failure surfaced to the caller, never recovered by fallback.
var ErrNotFound = errors.New("datasource: not found")

// Source is the full method contract for a board data source.
type Source interface {
	GetTasks(ctx context.Context, sprintID string) ([]board.Task, Origin, error)
	CreateTask(ctx context.Context, input board.TaskInput) (board.Task, Origin, error)
	UpdateTask(ctx context.Context, id string, patch board.TaskPatch) (board.Task, Origin, error)
	DeleteTask(ctx context.Context, id string) (Origin, error)

	GetCurrentSprint(ctx context.Context) (*board.Sprint, Origin, error)
	GetSprints(ctx context.Context, limit int) ([]board.Sprint, Origin, error)
	GetUsers(ctx context.Context) ([]board.User, Origin, error)

	GetSuggestions(ctx context.Context) ([]board.AISuggestion, Origin, error)
	AcceptSuggestion(ctx context.Context, id string) (Origin, error)
	DismissSuggestion(ctx context.Context, id string) (Origin, error)

	GetNotifications(ctx context.Context) ([]board.Notification, Origin, error)
	MarkNotificationRead(ctx context.Context, id string) (Origin, error)

	GetTeamMetrics(ctx context.Context, sprintID string) (board.TeamMetrics, Origin, error)

	// SubscribeUpdates starts delivering realtime updates to onUpdate and
	// returns a stop function. Delivery is at-most-once and unordered.
	SubscribeUpdates(onUpdate func(realtime.Update)) (func(), error)
}

// Snapshot is the full initial dataset the store loads at startup.
type Snapshot struct {
	Tasks         []board.Task
	Sprints       []board.Sprint
	CurrentSprint *board.Sprint
	Users         []board.User
	Suggestions   []board.AISuggestion
	Notifications []board.Notification
	Origin        Origin
}

// Load composes the read methods into one snapshot. The snapshot is tagged
// fallback when any constituent read had to fall back.
func Load(ctx context.Context, src Source) (Snapshot, error) {
	snap := Snapshot{Origin: OriginLive}
	mark := func(origin Origin) {
		if origin == OriginFallback {
			snap.Origin = OriginFallback
		}
	}

	tasks, origin, err := src.GetTasks(ctx, "")
	if err != nil {
		return Snapshot{}, err
	}
	mark(origin)
	snap.Tasks = tasks

	sprints, origin, err := src.GetSprints(ctx, 0)
	if err != nil {
		return Snapshot{}, err
	}
	mark(origin)
	snap.Sprints = sprints

	current, origin, err := src.GetCurrentSprint(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	mark(origin)
	snap.CurrentSprint = current

	users, origin, err := src.GetUsers(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	mark(origin)
	snap.Users = users

	suggestions, origin, err := src.GetSuggestions(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	mark(origin)
	snap.Suggestions = suggestions

	notifications, origin, err := src.GetNotifications(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	mark(origin)
	snap.Notifications = notifications

	return snap, nil
}
