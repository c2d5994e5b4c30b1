// internal/tui/app.go
//
// This is the main TUI for the sprint dashboard. It uses bubbletea, which
// follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen
//
// All board state lives in the store; this model only holds cursor and
// focus state plus the persisted preferences.

package tui

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"sprintdeck/internal/board"
	"sprintdeck/internal/config"
	"sprintdeck/internal/logbook"
	"sprintdeck/internal/prefs"
	"sprintdeck/internal/store"
)

type panelFocus int

const (
	focusBoard panelFocus = iota
	focusSuggestions
	focusNotifications
)

// sortFieldCycle is the order the "p" key walks through.
var sortFieldCycle = []board.SortField{
	board.SortByCreatedAt,
	board.SortByUpdatedAt,
	board.SortByPriority,
	board.SortByStoryPoints,
	board.SortByDueDate,
	board.SortByTitle,
}

type loadFinishedMsg struct {
	err error
}

type storeChangeMsg store.Change

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	store      *store.Store
	controller *store.DropController
	config     *config.Config
	logbook    *logbook.Logbook
	prefs      prefs.Preferences
	sub        store.Subscription
	keys       keyMap

	// Cursor state. column indexes board.Statuses; card indexes the column's
	// derived view slice.
	focus      panelFocus
	column     int
	card       int
	suggestion int
	notifIdx   int

	// Drag state: a grabbed card plus the column it would land in.
	grabbedTaskID string
	dropColumn    int

	statusMsg string
	loadErr   error

	width  int
	height int
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithPreferences overrides the loaded preferences.
func WithPreferences(p prefs.Preferences) AppOption {
	return func(a *App) {
		a.prefs = p
	}
}

// NewApp creates the dashboard model around an already-constructed store.
func NewApp(cfg *config.Config, st *store.Store, opts ...AppOption) (*App, error) {
	logPath := filepath.Join(cfg.LogsDir(), "activity.log")
	lb, err := logbook.New(logPath)
	if err != nil {
		return nil, err
	}
	lb.Info("session opened")

	app := &App{
		store:      st,
		controller: store.NewDropController(st),
		config:     cfg,
		logbook:    lb,
		prefs:      prefs.Load(cfg.PrefsPath()),
		sub:        st.Subscribe(),
		keys:       defaultKeyMap(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app, nil
}

// Init kicks off the initial load and starts listening for store changes.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadInitialData(), a.waitForChange())
}

func (a *App) loadInitialData() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return loadFinishedMsg{err: a.store.LoadInitialData(ctx)}
	}
}

// waitForChange blocks on the store subscription and surfaces the next
// change as a message. Re-armed after every delivery.
func (a *App) waitForChange() tea.Cmd {
	return func() tea.Msg {
		change, ok := <-a.sub.Changes
		if !ok {
			return nil
		}
		return storeChangeMsg(change)
	}
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case loadFinishedMsg:
		a.loadErr = msg.err
		if msg.err != nil {
			a.statusMsg = "load failed: " + msg.err.Error()
			a.logbook.Error("initial load failed: %v", msg.err)
		} else {
			a.statusMsg = "board loaded (" + string(a.store.Origin()) + ")"
			a.clampCursors()
		}
		return a, nil

	case storeChangeMsg:
		return a.handleStoreChange(store.Change(msg))

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleStoreChange(change store.Change) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{a.waitForChange()}
	switch change.Action {
	case store.ActionInvalidate:
		// An unknown realtime event kind means local state may be stale;
		// the only safe response is a full reload.
		a.statusMsg = "state invalidated, reloading"
		a.logbook.Warn("realtime invalidation, reloading board")
		cmds = append(cmds, a.loadInitialData())
	case store.ActionRealtime:
		a.statusMsg = "board updated"
	}
	a.clampCursors()
	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.savePrefs()
		a.logbook.Info("session closed")
		return a, tea.Quit

	case key.Matches(msg, a.keys.Cancel):
		if a.grabbedTaskID != "" {
			a.grabbedTaskID = ""
			a.statusMsg = "drag cancelled"
		}
		return a, nil

	case key.Matches(msg, a.keys.Focus):
		if a.prefs.SidebarOpen {
			a.focus = (a.focus + 1) % 3
		} else {
			a.focus = focusBoard
		}
		return a, nil

	case key.Matches(msg, a.keys.Reload):
		a.statusMsg = "reloading"
		return a, a.loadInitialData()

	case key.Matches(msg, a.keys.Sidebar):
		a.prefs.SidebarOpen = !a.prefs.SidebarOpen
		if !a.prefs.SidebarOpen {
			a.focus = focusBoard
		}
		a.savePrefs()
		return a, nil

	case key.Matches(msg, a.keys.ViewMode):
		if a.prefs.ViewMode == prefs.ViewBoard {
			a.prefs.ViewMode = prefs.ViewList
		} else {
			a.prefs.ViewMode = prefs.ViewBoard
		}
		a.savePrefs()
		return a, nil

	case key.Matches(msg, a.keys.Theme):
		if a.prefs.Theme == prefs.ThemeDark {
			a.prefs.Theme = prefs.ThemeLight
		} else {
			a.prefs.Theme = prefs.ThemeDark
		}
		a.savePrefs()
		return a, nil

	case key.Matches(msg, a.keys.SortBy):
		a.prefs.Sort.Field = nextSortField(a.prefs.Sort.Field)
		a.savePrefs()
		a.statusMsg = "sorted by " + string(a.prefs.Sort.Field)
		return a, nil

	case key.Matches(msg, a.keys.SortDir):
		if a.prefs.Sort.Direction == board.SortAsc {
			a.prefs.Sort.Direction = board.SortDesc
		} else {
			a.prefs.Sort.Direction = board.SortAsc
		}
		a.savePrefs()
		return a, nil

	case key.Matches(msg, a.keys.Left):
		return a.moveHorizontal(-1), nil

	case key.Matches(msg, a.keys.Right):
		return a.moveHorizontal(1), nil

	case key.Matches(msg, a.keys.Up):
		return a.moveVertical(-1), nil

	case key.Matches(msg, a.keys.Down):
		return a.moveVertical(1), nil

	case key.Matches(msg, a.keys.Select):
		return a.handleSelect()

	case key.Matches(msg, a.keys.Accept):
		return a.acceptSelectedSuggestion()

	case key.Matches(msg, a.keys.Dismiss):
		return a.dismissSelectedSuggestion()

	case key.Matches(msg, a.keys.ReadAll):
		a.store.MarkAllNotificationsRead(context.Background())
		a.statusMsg = "all notifications read"
		return a, nil

	case key.Matches(msg, a.keys.Read):
		return a.markSelectedNotificationRead()
	}

	return a, nil
}

func (a *App) moveHorizontal(delta int) *App {
	if a.focus != focusBoard {
		return a
	}
	if a.grabbedTaskID != "" {
		a.dropColumn = clamp(a.dropColumn+delta, 0, len(board.Statuses)-1)
		return a
	}
	a.column = clamp(a.column+delta, 0, len(board.Statuses)-1)
	a.card = clamp(a.card, 0, maxIndex(len(a.columnTasks(a.column))))
	return a
}

func (a *App) moveVertical(delta int) *App {
	switch a.focus {
	case focusBoard:
		a.card = clamp(a.card+delta, 0, maxIndex(len(a.columnTasks(a.column))))
	case focusSuggestions:
		a.suggestion = clamp(a.suggestion+delta, 0, maxIndex(len(a.store.Suggestions())))
	case focusNotifications:
		a.notifIdx = clamp(a.notifIdx+delta, 0, maxIndex(len(a.store.Notifications())))
	}
	return a
}

// handleSelect grabs the card under the cursor, or drops a grabbed card into
// the targeted column.
func (a *App) handleSelect() (tea.Model, tea.Cmd) {
	if a.focus != focusBoard {
		return a, nil
	}
	if a.grabbedTaskID == "" {
		tasks := a.columnTasks(a.column)
		if a.card >= len(tasks) {
			return a, nil
		}
		a.grabbedTaskID = tasks[a.card].ID
		a.dropColumn = a.column
		a.statusMsg = "moving " + a.grabbedTaskID
		return a, nil
	}

	target := board.Statuses[a.dropColumn]
	task, moved, err := a.controller.Drop(context.Background(), a.grabbedTaskID, string(target))
	id := a.grabbedTaskID
	a.grabbedTaskID = ""
	if err != nil {
		a.statusMsg = "move failed: " + err.Error()
		a.logbook.Error("move %s: %v", id, err)
		return a, nil
	}
	if moved {
		a.column = a.dropColumn
		a.statusMsg = task.Title + " -> " + string(target)
		a.logbook.Info("moved %s to %s", task.ID, target)
	}
	a.clampCursors()
	return a, nil
}

func (a *App) acceptSelectedSuggestion() (tea.Model, tea.Cmd) {
	if a.focus != focusSuggestions {
		return a, nil
	}
	suggestions := a.store.Suggestions()
	if a.suggestion >= len(suggestions) {
		return a, nil
	}
	sugg := suggestions[a.suggestion]
	a.store.AcceptSuggestion(context.Background(), sugg.ID)
	a.statusMsg = "accepted: " + sugg.Title
	a.logbook.Info("accepted suggestion %s", sugg.ID)
	a.clampCursors()
	return a, nil
}

func (a *App) dismissSelectedSuggestion() (tea.Model, tea.Cmd) {
	if a.focus != focusSuggestions {
		return a, nil
	}
	suggestions := a.store.Suggestions()
	if a.suggestion >= len(suggestions) {
		return a, nil
	}
	sugg := suggestions[a.suggestion]
	a.store.DismissSuggestion(context.Background(), sugg.ID)
	a.statusMsg = "dismissed: " + sugg.Title
	a.logbook.Info("dismissed suggestion %s", sugg.ID)
	a.clampCursors()
	return a, nil
}

func (a *App) markSelectedNotificationRead() (tea.Model, tea.Cmd) {
	if a.focus != focusNotifications {
		return a, nil
	}
	notifications := a.store.Notifications()
	if a.notifIdx >= len(notifications) {
		return a, nil
	}
	notif := notifications[a.notifIdx]
	if err := a.store.MarkNotificationRead(context.Background(), notif.ID); err != nil {
		a.statusMsg = "mark read failed: " + err.Error()
		return a, nil
	}
	a.statusMsg = "read: " + notif.Title
	return a, nil
}

// columnTasks returns the derived view for one board column: the persisted
// filter and sort applied first, then the column's status.
func (a *App) columnTasks(column int) []board.Task {
	if column < 0 || column >= len(board.Statuses) {
		return nil
	}
	status := board.Statuses[column]
	visible := store.View(a.store.Tasks(), a.prefs.Filter, a.prefs.Sort)
	var out []board.Task
	for _, task := range visible {
		if task.Status == status {
			out = append(out, task)
		}
	}
	return out
}

// listTasks returns the derived view as a single flat list (list view mode).
func (a *App) listTasks() []board.Task {
	return store.View(a.store.Tasks(), a.prefs.Filter, a.prefs.Sort)
}

func (a *App) clampCursors() {
	a.card = clamp(a.card, 0, maxIndex(len(a.columnTasks(a.column))))
	a.suggestion = clamp(a.suggestion, 0, maxIndex(len(a.store.Suggestions())))
	a.notifIdx = clamp(a.notifIdx, 0, maxIndex(len(a.store.Notifications())))
}

func (a *App) savePrefs() {
	if err := prefs.Save(a.config.PrefsPath(), a.prefs); err != nil {
		a.logbook.Warn("save preferences: %v", err)
	}
}

func nextSortField(current board.SortField) board.SortField {
	for i, field := range sortFieldCycle {
		if field == current {
			return sortFieldCycle[(i+1)%len(sortFieldCycle)]
		}
	}
	return sortFieldCycle[0]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxIndex(length int) int {
	if length <= 0 {
		return 0
	}
	return length - 1
}
