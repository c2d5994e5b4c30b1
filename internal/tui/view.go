package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"sprintdeck/internal/board"
	"sprintdeck/internal/datasource"
	"sprintdeck/internal/prefs"
)

type palette struct {
	accent  lipgloss.Color
	muted   lipgloss.Color
	border  lipgloss.Color
	warning lipgloss.Color
}

var (
	darkPalette = palette{
		accent:  lipgloss.Color("#5B8DEF"),
		muted:   lipgloss.Color("#888888"),
		border:  lipgloss.Color("#444444"),
		warning: lipgloss.Color("#FF6B6B"),
	}
	lightPalette = palette{
		accent:  lipgloss.Color("#1D4ED8"),
		muted:   lipgloss.Color("#6B7280"),
		border:  lipgloss.Color("#9CA3AF"),
		warning: lipgloss.Color("#B91C1C"),
	}
)

func (a *App) palette() palette {
	if a.prefs.Theme == prefs.ThemeLight {
		return lightPalette
	}
	return darkPalette
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 120
	}
	colors := a.palette()

	sections := []string{a.renderHeader(colors, width)}

	if a.store.Loading() && !a.store.Loaded() {
		sections = append(sections, "Loading board...")
		return strings.Join(sections, "\n")
	}

	sidebarWidth := 0
	if a.prefs.SidebarOpen {
		sidebarWidth = maxInt(32, width/4)
	}
	mainWidth := width - sidebarWidth - 2

	var main string
	if a.prefs.ViewMode == prefs.ViewList {
		main = a.renderList(colors, mainWidth)
	} else {
		main = a.renderBoard(colors, mainWidth)
	}

	if sidebarWidth > 0 {
		sidebar := a.renderSidebar(colors, sidebarWidth-4)
		sidebarBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.border).
			Padding(0, 1).
			Width(sidebarWidth).
			Render(sidebar)
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, main, sidebarBox))
	} else {
		sections = append(sections, main)
	}

	if logPanel := a.renderLogPanel(colors); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, a.renderFooter(colors))
	return strings.Join(sections, "\n")
}

func (a *App) renderHeader(colors palette, width int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.warning).
		Render("⬡ SPRINTDECK")

	var parts []string
	if sprint, ok := a.store.CurrentSprint(); ok {
		days := int(time.Until(sprint.EndDate).Hours() / 24)
		parts = append(parts, fmt.Sprintf("%s · %dd left", sprint.Name, maxInt(days, 0)))
	}
	metrics := board.ComputeTeamMetrics(currentSprintPtr(a), a.store.Tasks())
	if metrics.TotalPoints > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d pts", metrics.CompletedPoints, metrics.TotalPoints))
	}
	if unread := a.store.UnreadCount(); unread > 0 {
		parts = append(parts, fmt.Sprintf("%d unread", unread))
	}
	if a.store.Origin() == datasource.OriginFallback {
		parts = append(parts, "offline data")
	}
	if a.store.Invalidated() {
		parts = append(parts, "stale")
	}
	info := lipgloss.NewStyle().Foreground(colors.muted).Render(strings.Join(parts, " · "))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", info)
}

func currentSprintPtr(a *App) *board.Sprint {
	if sprint, ok := a.store.CurrentSprint(); ok {
		return &sprint
	}
	return nil
}

func (a *App) renderBoard(colors palette, width int) string {
	colWidth := maxInt(18, width/len(board.Statuses)-2)
	var columns []string
	for i, status := range board.Statuses {
		columns = append(columns, a.renderColumn(colors, i, status, colWidth))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

func (a *App) renderColumn(colors palette, index int, status board.Status, width int) string {
	tasks := a.columnTasks(index)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(colors.muted)
	borderColor := colors.border
	if a.focus == focusBoard && index == a.column {
		titleStyle = titleStyle.Foreground(colors.accent)
		borderColor = colors.accent
	}
	if a.grabbedTaskID != "" && index == a.dropColumn {
		borderColor = colors.warning
	}
	title := titleStyle.Render(fmt.Sprintf("%s (%d)", columnLabel(status), len(tasks)))

	var cards []string
	for i, task := range tasks {
		selected := a.focus == focusBoard && index == a.column && i == a.card && a.grabbedTaskID == ""
		grabbed := task.ID == a.grabbedTaskID
		cards = append(cards, a.renderCard(colors, task, selected, grabbed, width-2))
	}
	body := strings.Join(cards, "\n")
	if body == "" {
		body = lipgloss.NewStyle().Foreground(colors.muted).Render("empty")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}

func (a *App) renderCard(colors palette, task board.Task, selected, grabbed bool, width int) string {
	line1 := task.Title
	line2 := fmt.Sprintf("%s · %dpt", priorityLabel(task.Priority), task.StoryPoints)
	if task.AssigneeID != "" {
		if user, ok := a.store.User(task.AssigneeID); ok {
			line2 += " · " + user.Name
		}
	}
	if len(task.Dependencies) > 0 {
		line2 += fmt.Sprintf(" · %d dep", len(task.Dependencies))
	}
	if task.Status == board.StatusBlocked && task.BlockReason != "" {
		line2 += " · " + task.BlockReason
	}
	content := line1 + "\n" + line2
	style := lipgloss.NewStyle().Width(maxInt(16, width)).Padding(0, 0, 1, 0)
	switch {
	case grabbed:
		style = style.Bold(true).Foreground(colors.warning)
	case selected:
		style = style.Bold(true).Foreground(colors.accent)
	default:
		style = style.Foreground(colors.muted)
	}
	return style.Render(content)
}

func (a *App) renderList(colors palette, width int) string {
	tasks := a.listTasks()
	var rows []string
	for i, task := range tasks {
		marker := "  "
		if a.focus == focusBoard && i == a.card {
			marker = "> "
		}
		row := fmt.Sprintf("%s%-12s %-8s %3dpt  %s", marker, columnLabel(task.Status), priorityLabel(task.Priority), task.StoryPoints, task.Title)
		style := lipgloss.NewStyle().Foreground(colors.muted)
		if marker == "> " {
			style = style.Bold(true).Foreground(colors.accent)
		}
		rows = append(rows, style.Render(row))
	}
	if len(rows) == 0 {
		rows = append(rows, "no tasks match the filter")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colors.border).
		Padding(0, 1).
		Width(maxInt(40, width)).
		Render(strings.Join(rows, "\n"))
}

func (a *App) renderSidebar(colors palette, width int) string {
	var sections []string

	suggTitle := lipgloss.NewStyle().Bold(true).Foreground(colors.muted)
	if a.focus == focusSuggestions {
		suggTitle = suggTitle.Foreground(colors.accent)
	}
	suggestions := a.store.Suggestions()
	sections = append(sections, suggTitle.Render(fmt.Sprintf("Suggestions (%d)", len(suggestions))))
	for i, sugg := range suggestions {
		marker := "  "
		if a.focus == focusSuggestions && i == a.suggestion {
			marker = "> "
		}
		line := fmt.Sprintf("%s%s [%s, %.0f%%]", marker, sugg.Title, sugg.Impact, sugg.Confidence*100)
		sections = append(sections, lipgloss.NewStyle().Foreground(colors.muted).Width(maxInt(20, width)).Render(line))
	}
	if len(suggestions) == 0 {
		sections = append(sections, lipgloss.NewStyle().Foreground(colors.muted).Render("none pending"))
	}

	sections = append(sections, "")
	notifTitle := lipgloss.NewStyle().Bold(true).Foreground(colors.muted)
	if a.focus == focusNotifications {
		notifTitle = notifTitle.Foreground(colors.accent)
	}
	notifications := a.store.Notifications()
	sections = append(sections, notifTitle.Render(fmt.Sprintf("Notifications (%d unread)", a.store.UnreadCount())))
	for i, notif := range notifications {
		marker := "  "
		if a.focus == focusNotifications && i == a.notifIdx {
			marker = "> "
		}
		flag := "•"
		if notif.Read {
			flag = " "
		}
		line := fmt.Sprintf("%s%s %s", marker, flag, notif.Title)
		sections = append(sections, lipgloss.NewStyle().Foreground(colors.muted).Width(maxInt(20, width)).Render(line))
	}
	return strings.Join(sections, "\n")
}

func (a *App) renderLogPanel(colors palette) string {
	lines := a.logbook.Tail(5)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.accent).
		Render("ACTIVITY")
	body := lipgloss.NewStyle().
		Foreground(colors.muted).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colors.border).
		Padding(0, 1).
		Render(head + "\n" + body)
}

func (a *App) renderFooter(colors palette) string {
	hints := "enter grab/drop · hjkl move · tab focus · a accept · d dismiss · n read · s sidebar · v view · p/o sort · r reload · q quit"
	if a.grabbedTaskID != "" {
		hints = "←/→ choose column · enter drop · esc cancel"
	}
	footer := hints
	if a.statusMsg != "" {
		footer = a.statusMsg + "    " + hints
	}
	return lipgloss.NewStyle().Foreground(colors.muted).MarginTop(1).Render(footer)
}

func columnLabel(status board.Status) string {
	switch status {
	case board.StatusTodo:
		return "To Do"
	case board.StatusInProgress:
		return "In Progress"
	case board.StatusReview:
		return "Review"
	case board.StatusDone:
		return "Done"
	case board.StatusBlocked:
		return "Blocked"
	}
	return string(status)
}

func priorityLabel(p board.Priority) string {
	switch p {
	case board.PriorityCritical:
		return "CRIT"
	case board.PriorityHigh:
		return "HIGH"
	case board.PriorityMedium:
		return "MED"
	case board.PriorityLow:
		return "LOW"
	}
	return string(p)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
