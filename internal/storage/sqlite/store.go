package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"sprintdeck/internal/board"
	"sprintdeck/internal/datasource"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("sqlite: not found")

// Store wraps access to the SQLite database and exposes high level helpers
// for the board entities boardd serves.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open initializes a new SQLite store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'todo',
            priority TEXT NOT NULL DEFAULT 'medium',
            assignee_id TEXT NOT NULL DEFAULT '',
            reporter_id TEXT NOT NULL DEFAULT '',
            story_points INTEGER NOT NULL DEFAULT 0,
            tags TEXT NOT NULL DEFAULT '[]',
            dependencies TEXT NOT NULL DEFAULT '[]',
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            due_date DATETIME,
            estimated_hours REAL NOT NULL DEFAULT 0,
            actual_hours REAL NOT NULL DEFAULT 0,
            block_reason TEXT NOT NULL DEFAULT ''
        );`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
		`CREATE TABLE IF NOT EXISTS sprints (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            goal TEXT NOT NULL DEFAULT '',
            start_date DATETIME NOT NULL,
            end_date DATETIME NOT NULL,
            status TEXT NOT NULL DEFAULT 'planning',
            task_ids TEXT NOT NULL DEFAULT '[]',
            capacity INTEGER NOT NULL DEFAULT 0,
            velocity REAL NOT NULL DEFAULT 0,
            burndown TEXT NOT NULL DEFAULT '[]'
        );`,
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL DEFAULT '',
            role TEXT NOT NULL DEFAULT 'developer',
            mood TEXT NOT NULL DEFAULT '',
            workload REAL NOT NULL DEFAULT 0
        );`,
		`CREATE TABLE IF NOT EXISTS suggestions (
            id TEXT PRIMARY KEY,
            type TEXT NOT NULL,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            confidence REAL NOT NULL DEFAULT 0,
            impact TEXT NOT NULL DEFAULT 'low',
            reasoning TEXT NOT NULL DEFAULT '',
            actionable INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS notifications (
            id TEXT PRIMARY KEY,
            type TEXT NOT NULL DEFAULT '',
            title TEXT NOT NULL,
            message TEXT NOT NULL DEFAULT '',
            user_id TEXT NOT NULL,
            read INTEGER NOT NULL DEFAULT 0,
            actionable INTEGER NOT NULL DEFAULT 0,
            action_url TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL,
            priority TEXT NOT NULL DEFAULT 'low'
        );`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Seed populates an empty database from the given snapshot. A database that
// already holds tasks is left untouched.
func (s *Store) Seed(ctx context.Context, snap datasource.Snapshot) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&count); err != nil {
		return fmt.Errorf("seed check: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, task := range snap.Tasks {
		if err := s.insertTask(ctx, task); err != nil {
			return err
		}
	}
	for _, sprint := range snap.Sprints {
		if err := s.insertSprint(ctx, sprint); err != nil {
			return err
		}
	}
	for _, user := range snap.Users {
		if _, err := s.db.ExecContext(ctx, `INSERT INTO users(id, name, email, role, mood, workload) VALUES(?, ?, ?, ?, ?, ?)`,
			user.ID, user.Name, user.Email, string(user.Role), user.Mood, user.Workload); err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
	}
	for _, sugg := range snap.Suggestions {
		if _, err := s.db.ExecContext(ctx, `INSERT INTO suggestions(id, type, title, description, confidence, impact, reasoning, actionable, created_at) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sugg.ID, string(sugg.Type), sugg.Title, sugg.Description, sugg.Confidence, string(sugg.Impact), sugg.Reasoning, sugg.Actionable, sugg.CreatedAt); err != nil {
			return fmt.Errorf("seed suggestion: %w", err)
		}
	}
	for _, notif := range snap.Notifications {
		if _, err := s.db.ExecContext(ctx, `INSERT INTO notifications(id, type, title, message, user_id, read, actionable, action_url, created_at, priority) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			notif.ID, notif.Type, notif.Title, notif.Message, notif.UserID, notif.Read, notif.Actionable, notif.ActionURL, notif.CreatedAt, string(notif.Priority)); err != nil {
			return fmt.Errorf("seed notification: %w", err)
		}
	}
	s.logger.Info("database seeded",
		"tasks", len(snap.Tasks),
		"sprints", len(snap.Sprints),
		"users", len(snap.Users))
	return nil
}

const taskColumns = `id, title, description, status, priority, assignee_id, reporter_id, story_points,
    tags, dependencies, created_at, updated_at, due_date, estimated_hours, actual_hours, block_reason`

func scanTask(row interface{ Scan(...any) error }) (board.Task, error) {
	var (
		t        board.Task
		tagsJSON string
		depsJSON string
		due      sql.NullTime
		status   string
		priority string
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &t.AssigneeID, &t.ReporterID,
		&t.StoryPoints, &tagsJSON, &depsJSON, &t.CreatedAt, &t.UpdatedAt, &due, &t.EstimatedHours,
		&t.ActualHours, &t.BlockReason)
	if err != nil {
		return board.Task{}, err
	}
	t.Status = board.Status(status)
	t.Priority = board.Priority(priority)
	if err := json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil {
		return board.Task{}, fmt.Errorf("decode tags: %w", err)
	}
	if err := json.Unmarshal([]byte(depsJSON), &t.Dependencies); err != nil {
		return board.Task{}, fmt.Errorf("decode dependencies: %w", err)
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return t, nil
}

func encodeList[T any](list []T) (string, error) {
	if list == nil {
		return "[]", nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ListTasks returns every task, optionally restricted to a sprint's task set.
func (s *Store) ListTasks(ctx context.Context, sprintID string) ([]board.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []board.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if sprintID == "" {
		return tasks, nil
	}

	sprint, err := s.getSprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	inSprint := make(map[string]bool, len(sprint.TaskIDs))
	for _, id := range sprint.TaskIDs {
		inSprint[id] = true
	}
	var scoped []board.Task
	for _, t := range tasks {
		if inSprint[t.ID] {
			scoped = append(scoped, t)
		}
	}
	return scoped, nil
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id string) (board.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return board.Task{}, ErrNotFound
	}
	if err != nil {
		return board.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// CreateTask persists a fully built task. The caller assigns the id and
// timestamps; the store only validates the essentials.
func (s *Store) CreateTask(ctx context.Context, t board.Task) (board.Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return board.Task{}, fmt.Errorf("task title must not be empty")
	}
	if !t.Status.Valid() {
		t.Status = board.StatusTodo
	}
	if !t.Priority.Valid() {
		t.Priority = board.PriorityMedium
	}
	if err := s.insertTask(ctx, t); err != nil {
		return board.Task{}, err
	}
	return s.GetTask(ctx, t.ID)
}

func (s *Store) insertTask(ctx context.Context, t board.Task) error {
	tags, err := encodeList(t.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	deps, err := encodeList(t.Dependencies)
	if err != nil {
		return fmt.Errorf("encode dependencies: %w", err)
	}
	var due any
	if t.DueDate != nil {
		due = *t.DueDate
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO tasks(`+taskColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, string(t.Status), string(t.Priority), t.AssigneeID, t.ReporterID,
		t.StoryPoints, tags, deps, t.CreatedAt, t.UpdatedAt, due, t.EstimatedHours, t.ActualHours, t.BlockReason)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// SaveTask replaces an existing task row with the given value.
func (s *Store) SaveTask(ctx context.Context, t board.Task) (board.Task, error) {
	tags, err := encodeList(t.Tags)
	if err != nil {
		return board.Task{}, fmt.Errorf("encode tags: %w", err)
	}
	deps, err := encodeList(t.Dependencies)
	if err != nil {
		return board.Task{}, fmt.Errorf("encode dependencies: %w", err)
	}
	var due any
	if t.DueDate != nil {
		due = *t.DueDate
	}
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?,
        assignee_id = ?, reporter_id = ?, story_points = ?, tags = ?, dependencies = ?, updated_at = ?,
        due_date = ?, estimated_hours = ?, actual_hours = ?, block_reason = ? WHERE id = ?`,
		t.Title, t.Description, string(t.Status), string(t.Priority), t.AssigneeID, t.ReporterID,
		t.StoryPoints, tags, deps, t.UpdatedAt, due, t.EstimatedHours, t.ActualHours, t.BlockReason, t.ID)
	if err != nil {
		return board.Task{}, fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return board.Task{}, err
	}
	if affected == 0 {
		return board.Task{}, ErrNotFound
	}
	return s.GetTask(ctx, t.ID)
}

// DeleteTask removes a task by id. Dependency references in other tasks are
// intentionally left alone; stale ids are skipped when rendered.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

const sprintColumns = `id, name, goal, start_date, end_date, status, task_ids, capacity, velocity, burndown`

func scanSprint(row interface{ Scan(...any) error }) (board.Sprint, error) {
	var (
		sp           board.Sprint
		status       string
		taskIDsJSON  string
		burndownJSON string
	)
	err := row.Scan(&sp.ID, &sp.Name, &sp.Goal, &sp.StartDate, &sp.EndDate, &status, &taskIDsJSON,
		&sp.Capacity, &sp.Velocity, &burndownJSON)
	if err != nil {
		return board.Sprint{}, err
	}
	sp.Status = board.SprintStatus(status)
	if err := json.Unmarshal([]byte(taskIDsJSON), &sp.TaskIDs); err != nil {
		return board.Sprint{}, fmt.Errorf("decode task ids: %w", err)
	}
	if err := json.Unmarshal([]byte(burndownJSON), &sp.Burndown); err != nil {
		return board.Sprint{}, fmt.Errorf("decode burndown: %w", err)
	}
	return sp, nil
}

func (s *Store) insertSprint(ctx context.Context, sp board.Sprint) error {
	taskIDs, err := encodeList(sp.TaskIDs)
	if err != nil {
		return fmt.Errorf("encode task ids: %w", err)
	}
	burndown, err := encodeList(sp.Burndown)
	if err != nil {
		return fmt.Errorf("encode burndown: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO sprints(`+sprintColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sp.ID, sp.Name, sp.Goal, sp.StartDate, sp.EndDate, string(sp.Status), taskIDs, sp.Capacity, sp.Velocity, burndown)
	if err != nil {
		return fmt.Errorf("insert sprint: %w", err)
	}
	return nil
}

func (s *Store) getSprint(ctx context.Context, id string) (board.Sprint, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sprintColumns+` FROM sprints WHERE id = ?`, id)
	sp, err := scanSprint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return board.Sprint{}, ErrNotFound
	}
	if err != nil {
		return board.Sprint{}, fmt.Errorf("get sprint: %w", err)
	}
	return sp, nil
}

// CurrentSprint returns the active sprint, or nil when no sprint is active.
func (s *Store) CurrentSprint(ctx context.Context) (*board.Sprint, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sprintColumns+` FROM sprints WHERE status = ? ORDER BY start_date DESC LIMIT 1`,
		string(board.SprintActive))
	sp, err := scanSprint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current sprint: %w", err)
	}
	return &sp, nil
}

// ListSprints returns sprints newest first, optionally limited.
func (s *Store) ListSprints(ctx context.Context, limit int) ([]board.Sprint, error) {
	query := `SELECT ` + sprintColumns + ` FROM sprints ORDER BY start_date DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sprints: %w", err)
	}
	defer rows.Close()

	var sprints []board.Sprint
	for rows.Next() {
		sp, err := scanSprint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sprint: %w", err)
		}
		sprints = append(sprints, sp)
	}
	return sprints, rows.Err()
}

// ListUsers returns every team member.
func (s *Store) ListUsers(ctx context.Context) ([]board.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email, role, mood, workload FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []board.User
	for rows.Next() {
		var (
			u    board.User
			role string
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &role, &u.Mood, &u.Workload); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Role = board.Role(role)
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListSuggestions returns the pending suggestions oldest first.
func (s *Store) ListSuggestions(ctx context.Context) ([]board.AISuggestion, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, type, title, description, confidence, impact, reasoning, actionable, created_at
        FROM suggestions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []board.AISuggestion
	for rows.Next() {
		var (
			sg             board.AISuggestion
			sgType, impact string
		)
		if err := rows.Scan(&sg.ID, &sgType, &sg.Title, &sg.Description, &sg.Confidence, &impact,
			&sg.Reasoning, &sg.Actionable, &sg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		sg.Type = board.SuggestionType(sgType)
		sg.Impact = board.Impact(impact)
		suggestions = append(suggestions, sg)
	}
	return suggestions, rows.Err()
}

// GetSuggestion retrieves one pending suggestion by id.
func (s *Store) GetSuggestion(ctx context.Context, id string) (board.AISuggestion, error) {
	var (
		sg             board.AISuggestion
		sgType, impact string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, type, title, description, confidence, impact, reasoning, actionable, created_at
        FROM suggestions WHERE id = ?`, id).
		Scan(&sg.ID, &sgType, &sg.Title, &sg.Description, &sg.Confidence, &impact, &sg.Reasoning, &sg.Actionable, &sg.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return board.AISuggestion{}, ErrNotFound
	}
	if err != nil {
		return board.AISuggestion{}, fmt.Errorf("get suggestion: %w", err)
	}
	sg.Type = board.SuggestionType(sgType)
	sg.Impact = board.Impact(impact)
	return sg, nil
}

// DeleteSuggestion removes a suggestion from the pending set. Absent ids are
// not an error; accept and dismiss are idempotent at the HTTP layer.
func (s *Store) DeleteSuggestion(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM suggestions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete suggestion: %w", err)
	}
	return nil
}

// ListNotifications returns every notification oldest first.
func (s *Store) ListNotifications(ctx context.Context) ([]board.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, type, title, message, user_id, read, actionable, action_url, created_at, priority
        FROM notifications ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []board.Notification
	for rows.Next() {
		var (
			n        board.Notification
			priority string
		)
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.UserID, &n.Read, &n.Actionable,
			&n.ActionURL, &n.CreatedAt, &priority); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Priority = board.Priority(priority)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flips the read flag. Marking an already read
// notification succeeds without a change.
func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}
