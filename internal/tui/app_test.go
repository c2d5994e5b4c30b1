package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"sprintdeck/internal/board"
	"sprintdeck/internal/config"
	"sprintdeck/internal/datasource"
	"sprintdeck/internal/prefs"
	"sprintdeck/internal/store"
)

func newTestApp(t *testing.T, opts ...AppOption) *App {
	t.Helper()
	projectDir := t.TempDir()
	if err := config.InitDeckDir(projectDir); err != nil {
		t.Fatalf("init deck dir: %v", err)
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	source := datasource.NewMemorySource(datasource.FallbackSnapshot(), datasource.OriginLive)
	app, err := NewApp(cfg, store.New(source), opts...)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	load := app.loadInitialData()
	model, _ := app.Update(load())
	return asApp(t, model)
}

func asApp(t *testing.T, model tea.Model) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	return app
}

func press(t *testing.T, app *App, keys ...string) *App {
	t.Helper()
	for _, key := range keys {
		var msg tea.KeyMsg
		switch key {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		model, _ := app.Update(msg)
		app = asApp(t, model)
	}
	return app
}

func TestLoadPopulatesBoard(t *testing.T) {
	app := newTestApp(t)
	if app.loadErr != nil {
		t.Fatalf("load err: %v", app.loadErr)
	}
	total := 0
	for i := range board.Statuses {
		total += len(app.columnTasks(i))
	}
	if total != 6 {
		t.Fatalf("board cards: got %d want 6", total)
	}
}

func TestGrabAndDropMovesCard(t *testing.T) {
	app := newTestApp(t)
	// Column 0 is the todo column; grab its top card.
	tasks := app.columnTasks(0)
	if len(tasks) == 0 {
		t.Fatalf("todo column must not be empty")
	}
	target := tasks[app.card].ID

	app = press(t, app, "enter")
	if app.grabbedTaskID != target {
		t.Fatalf("grab: got %q want %q", app.grabbedTaskID, target)
	}
	app = press(t, app, "l", "enter")
	if app.grabbedTaskID != "" {
		t.Fatalf("drop must release the card")
	}
	moved, ok := app.store.Task(target)
	if !ok || moved.Status != board.StatusInProgress {
		t.Fatalf("card not moved: %+v", moved)
	}
}

func TestEscCancelsDrag(t *testing.T) {
	app := newTestApp(t)
	tasks := app.columnTasks(0)
	target := tasks[app.card].ID
	before, _ := app.store.Task(target)

	app = press(t, app, "enter", "l", "esc")
	if app.grabbedTaskID != "" {
		t.Fatalf("esc must cancel the drag")
	}
	after, _ := app.store.Task(target)
	if after.Status != before.Status {
		t.Fatalf("cancelled drag must not move the card")
	}
}

func TestDropInSameColumnDoesNotTouchTask(t *testing.T) {
	app := newTestApp(t)
	tasks := app.columnTasks(0)
	target := tasks[app.card].ID
	before, _ := app.store.Task(target)

	app = press(t, app, "enter", "enter")
	after, _ := app.store.Task(target)
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("same-column drop must be visual only")
	}
}

func TestAcceptSuggestionFromSidebar(t *testing.T) {
	app := newTestApp(t)
	before := len(app.store.Suggestions())
	app = press(t, app, "tab", "a")
	if got := len(app.store.Suggestions()); got != before-1 {
		t.Fatalf("suggestions: got %d want %d", got, before-1)
	}
}

func TestDismissSuggestionFromSidebar(t *testing.T) {
	app := newTestApp(t)
	before := len(app.store.Suggestions())
	tasksBefore := len(app.store.Tasks())
	app = press(t, app, "tab", "d")
	if got := len(app.store.Suggestions()); got != before-1 {
		t.Fatalf("suggestions: got %d want %d", got, before-1)
	}
	if got := len(app.store.Tasks()); got != tasksBefore {
		t.Fatalf("dismiss must not mutate tasks")
	}
}

func TestMarkNotificationReadFromSidebar(t *testing.T) {
	app := newTestApp(t)
	unread := app.store.UnreadCount()
	if unread == 0 {
		t.Fatalf("fixture must carry unread notifications")
	}
	app = press(t, app, "tab", "tab", "n")
	if got := app.store.UnreadCount(); got != unread-1 {
		t.Fatalf("unread: got %d want %d", got, unread-1)
	}
}

func TestSidebarToggleIsPersisted(t *testing.T) {
	app := newTestApp(t)
	if !app.prefs.SidebarOpen {
		t.Fatalf("sidebar must default open")
	}
	app = press(t, app, "s")
	if app.prefs.SidebarOpen {
		t.Fatalf("toggle must close the sidebar")
	}
	saved := prefs.Load(app.config.PrefsPath())
	if saved.SidebarOpen {
		t.Fatalf("toggle must be persisted")
	}
}

func TestSortCyclePersists(t *testing.T) {
	app := newTestApp(t)
	start := app.prefs.Sort.Field
	app = press(t, app, "p")
	if app.prefs.Sort.Field == start {
		t.Fatalf("sort field must advance")
	}
	saved := prefs.Load(app.config.PrefsPath())
	if saved.Sort.Field != app.prefs.Sort.Field {
		t.Fatalf("sort change must be persisted")
	}
}

func TestInvalidationTriggersReload(t *testing.T) {
	app := newTestApp(t)
	model, cmd := app.handleStoreChange(store.Change{Action: store.ActionInvalidate})
	app = asApp(t, model)
	if cmd == nil {
		t.Fatalf("invalidation must schedule a reload")
	}
	if app.statusMsg == "" {
		t.Fatalf("invalidation must surface a status message")
	}
}

func TestViewRendersWithoutSize(t *testing.T) {
	app := newTestApp(t)
	out := app.View()
	if out == "" {
		t.Fatalf("view must render before the first WindowSizeMsg")
	}
}
