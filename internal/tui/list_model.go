package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/tend/internal/checklist"
	"github.com/balkashynov/tend/internal/config"
	"github.com/balkashynov/tend/internal/db"
	"github.com/balkashynov/tend/internal/models"
	"github.com/balkashynov/tend/internal/parser"
	"github.com/balkashynov/tend/internal/tasks"
)

// TaskService is what the list needs from the task service
type TaskService interface {
	Watch(ctx context.Context, filter db.TaskFilter) <-chan []models.Task
	Go(ctx context.Context, name string, op func(ctx context.Context) error) *tasks.Pending
	SetTaskCompleted(ctx context.Context, id uint, completed bool) (*models.Task, error)
	SetTaskPinned(ctx context.Context, id uint, pinned bool) (*models.Task, error)
	SetChecklistItemCompleted(ctx context.Context, itemID uint, completed bool) (*models.ChecklistItem, error)
}

// Focus represents what UI element has focus
type Focus int

const (
	FocusTable Focus = iota
	FocusSearch
	FocusChecklist
)

type snapshotMsg []models.Task

type streamClosedMsg struct{}

type opDoneMsg struct {
	name string
	err  error
}

// ListModel is the live task list. It redraws whenever the store reports a
// change, whether the change came from this screen or another process.
type ListModel struct {
	ctx       context.Context
	svc       TaskService
	mode      config.TimelineMode
	snapshots <-chan []models.Task

	width  int
	height int

	all          []models.Task // latest snapshot
	tasks        []models.Task // after search and done filter
	loaded       bool
	selectedTask int
	selectedItem int

	focus    Focus
	search   textinput.Model
	showDone bool
	status   string

	currentPage  int
	tasksPerPage int
}

// NewListModel subscribes to the task stream. The stream ends with ctx.
func NewListModel(ctx context.Context, svc TaskService, mode config.TimelineMode) ListModel {
	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "title, notes or tag"
	search.CharLimit = 64

	return ListModel{
		ctx:          ctx,
		svc:          svc,
		mode:         mode,
		snapshots:    svc.Watch(ctx, db.TaskFilter{}),
		search:       search,
		showDone:     true,
		tasksPerPage: 10,
	}
}

func waitForSnapshot(ch <-chan []models.Task) tea.Cmd {
	return func() tea.Msg {
		snapshot, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return snapshotMsg(snapshot)
	}
}

// Init starts listening for task snapshots
func (m ListModel) Init() tea.Cmd {
	return waitForSnapshot(m.snapshots)
}

// Update handles messages
func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// header, pagination, help and borders take 12 lines
		m.tasksPerPage = max(m.height-12, 3)
		m.ensureSelectionVisible()
		return m, nil

	case snapshotMsg:
		m.all = msg
		m.loaded = true
		m.applyFilter()
		return m, waitForSnapshot(m.snapshots)

	case streamClosedMsg:
		return m, tea.Quit

	case opDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %s failed: %v", msg.name, msg.err)
		} else {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch m.focus {
		case FocusSearch:
			return m.handleSearchKeys(msg)
		case FocusChecklist:
			return m.handleChecklistKeys(msg)
		}
		return m.handleTableKeys(msg)
	}

	return m, nil
}

func (m ListModel) handleTableKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "esc" && m.search.Value() != "":
		m.search.SetValue("")
		m.applyFilter()
		return m, nil

	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.selectedTask > 0 {
			m.selectedTask--
			m.ensureSelectionVisible()
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.selectedTask < len(m.tasks)-1 {
			m.selectedTask++
			m.ensureSelectionVisible()
		}
		return m, nil

	case key.Matches(msg, keys.PrevPage):
		if m.currentPage > 0 {
			m.currentPage--
			m.selectedTask = m.currentPage * m.tasksPerPage
		}
		return m, nil

	case key.Matches(msg, keys.NextPage):
		if (m.currentPage+1)*m.tasksPerPage < len(m.tasks) {
			m.currentPage++
			m.selectedTask = m.currentPage * m.tasksPerPage
		}
		return m, nil

	case key.Matches(msg, keys.Search):
		m.focus = FocusSearch
		return m, m.search.Focus()

	case key.Matches(msg, keys.Filter):
		m.showDone = !m.showDone
		m.applyFilter()
		return m, nil

	case key.Matches(msg, keys.Done):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		completed := !task.Completed
		return m, m.mutate("toggle done", func(ctx context.Context) error {
			_, err := m.svc.SetTaskCompleted(ctx, task.ID, completed)
			return err
		})

	case key.Matches(msg, keys.Pin):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		pinned := !task.PinNotification
		return m, m.mutate("toggle pin", func(ctx context.Context) error {
			_, err := m.svc.SetTaskPinned(ctx, task.ID, pinned)
			return err
		})

	case key.Matches(msg, keys.Focus):
		if task, ok := m.selected(); ok && len(task.Checklist) > 0 {
			m.focus = FocusChecklist
			m.selectedItem = 0
		}
		return m, nil
	}
	return m, nil
}

func (m ListModel) handleChecklistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	task, ok := m.selected()
	if !ok || len(task.Checklist) == 0 {
		m.focus = FocusTable
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Focus), msg.String() == "esc":
		m.focus = FocusTable
		return m, nil

	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.selectedItem > 0 {
			m.selectedItem--
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.selectedItem < len(task.Checklist)-1 {
			m.selectedItem++
		}
		return m, nil

	case key.Matches(msg, keys.CheckItem):
		item := task.Checklist[min(m.selectedItem, len(task.Checklist)-1)]
		completed := !item.Completed
		return m, m.mutate("toggle item", func(ctx context.Context) error {
			_, err := m.svc.SetChecklistItemCompleted(ctx, item.ID, completed)
			return err
		})
	}
	return m, nil
}

// handleSearchKeys filters as you type; enter keeps the query, esc drops it
func (m ListModel) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		m.search.Blur()
		m.focus = FocusTable
		m.applyFilter()
		return m, nil

	case "enter":
		m.search.Blur()
		m.focus = FocusTable
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyFilter()
	return m, cmd
}

// mutate returns a command that runs op through the service and reports back
// when it finishes. The list itself is refreshed by the next snapshot.
func (m ListModel) mutate(name string, op func(ctx context.Context) error) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		pending := svc.Go(ctx, name, op)
		return opDoneMsg{name: name, err: pending.Wait(ctx)}
	}
}

func (m ListModel) selected() (models.Task, bool) {
	if m.selectedTask < 0 || m.selectedTask >= len(m.tasks) {
		return models.Task{}, false
	}
	return m.tasks[m.selectedTask], true
}

// applyFilter rebuilds the visible list, keeping the selected task selected
func (m *ListModel) applyFilter() {
	var selectedID uint
	if task, ok := m.selected(); ok {
		selectedID = task.ID
	}

	query := strings.ToLower(strings.TrimSpace(m.search.Value()))
	m.tasks = m.tasks[:0:0]
	for _, task := range m.all {
		if !m.showDone && task.Completed {
			continue
		}
		if query != "" && !matchesQuery(task, query) {
			continue
		}
		m.tasks = append(m.tasks, task)
	}

	m.selectedTask = 0
	for i, task := range m.tasks {
		if task.ID == selectedID {
			m.selectedTask = i
			break
		}
	}
	if task, ok := m.selected(); ok && m.selectedItem >= len(task.Checklist) {
		m.selectedItem = max(len(task.Checklist)-1, 0)
	}
	m.ensureSelectionVisible()
}

func matchesQuery(task models.Task, query string) bool {
	return strings.Contains(strings.ToLower(task.Title), query) ||
		strings.Contains(strings.ToLower(task.Description), query) ||
		strings.Contains(strings.ToLower(task.Tags), query)
}

func (m *ListModel) ensureSelectionVisible() {
	if m.tasksPerPage <= 0 {
		return
	}
	m.currentPage = m.selectedTask / m.tasksPerPage
}

// View renders the TUI
func (m ListModel) View() string {
	if m.width == 0 || m.height == 0 || !m.loaded {
		return "Loading..."
	}

	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 1

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTaskTable(leftWidth),
		" ",
		m.renderTaskDetails(rightWidth),
	)

	var footer string
	switch {
	case m.focus == FocusSearch:
		footer = m.renderSearchBar()
	case m.status != "":
		footer = fg(ColorError).Width(m.width).Render(m.status)
	default:
		footer = m.renderHelpBar()
	}

	return lipgloss.JoinVertical(lipgloss.Left, "", content, "", footer)
}

// titleColor is the workspace color in COLOR mode and the theme color otherwise
func (m ListModel) titleColor(task models.Task) string {
	if task.Completed {
		return ColorDisabledText
	}
	if m.mode == config.TimelineColor && task.Workspace != nil && task.Workspace.Color != "" {
		return task.Workspace.Color
	}
	return ColorPrimaryText
}

// renderTaskTable renders the left panel with the task table
func (m ListModel) renderTaskTable(width int) string {
	var b strings.Builder

	header := "📋 Tasks"
	if !m.showDone {
		header += " (open)"
	}
	if q := m.search.Value(); q != "" {
		header += fmt.Sprintf(" matching %q", q)
	}
	b.WriteString(fg(ColorAccentBright).Bold(true).Render(header))
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(fg(ColorSecondaryText).Italic(true).Render("No tasks found"))
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Width(width).
			Render(b.String())
	}

	idWidth, statusWidth, dueWidth := 5, 7, 9
	titleWidth := max(width-4-idWidth-statusWidth-dueWidth-6, 20)

	headers := fmt.Sprintf("%-*s %-*s %-*s %-*s",
		idWidth, "ID",
		titleWidth, "TITLE",
		statusWidth, "STATUS",
		dueWidth, "DUE")
	b.WriteString(fg(ColorAccentBright).Bold(true).Padding(0, 1).Render(headers))
	b.WriteString("\n\n")

	now := time.Now()
	start := m.currentPage * m.tasksPerPage
	end := min(start+m.tasksPerPage, len(m.tasks))
	for i := start; i < end; i++ {
		task := m.tasks[i]

		title := task.Title
		if task.PinNotification {
			title = "📌 " + title
		}
		if done, total := checklist.Progress(task.Checklist); total > 0 {
			title = fmt.Sprintf("%s [%d/%d]", title, done, total)
		}
		title = truncate(title, titleWidth)

		statusText, statusColor := "○ todo", ColorSecondaryText
		if task.Completed {
			statusText, statusColor = "✓ done", ColorSuccess
		}
		dueText, dueColor := dueLabel(task.Deadline, now)

		row := fmt.Sprintf("%-*s %s %s %s",
			idWidth, fmt.Sprintf("#%d", task.ID),
			fg(m.titleColor(task)).Width(titleWidth).Render(title),
			fg(statusColor).Width(statusWidth).Render(statusText),
			fg(dueColor).Width(dueWidth).Render(dueText))

		if i == m.selectedTask {
			border := ColorAccentMain
			if m.focus == FocusChecklist {
				border = ColorBorder
			}
			b.WriteString(lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color(border)).
				Bold(true).
				Padding(0, 1).
				Render(row))
		} else {
			b.WriteString(" " + row)
		}
		b.WriteString("\n")
	}

	if m.tasksPerPage < len(m.tasks) {
		totalPages := (len(m.tasks) + m.tasksPerPage - 1) / m.tasksPerPage
		pageInfo := fmt.Sprintf("Page %d/%d (%d tasks)", m.currentPage+1, totalPages, len(m.tasks))
		b.WriteString(fg(ColorHelpText).Align(lipgloss.Center).Width(width - 2).MarginTop(1).Render(pageInfo))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width).
		Render(b.String())
}

// renderTaskDetails renders the right panel with task details
func (m ListModel) renderTaskDetails(width int) string {
	var b strings.Builder

	task, ok := m.selected()
	if !ok {
		b.WriteString(fg(ColorAccentMain).Bold(true).Align(lipgloss.Center).Width(width).Render("tend"))
		b.WriteString("\n")
		b.WriteString(fg(ColorSecondaryText).Italic(true).Align(lipgloss.Center).Width(width).MarginTop(2).
			Render("Select a task to view details"))
	} else {
		b.WriteString(fg(ColorPrimaryText).Bold(true).Width(width).Render("📋 " + task.Title))
		b.WriteString("\n\n")

		status, statusColor := "todo", ColorSecondaryText
		if task.Completed {
			status, statusColor = "done", ColorSuccess
		}
		b.WriteString("Status: " + fg(statusColor).Bold(true).Render(status) + "\n")

		if task.Workspace != nil {
			color := task.Workspace.Color
			if color == "" {
				color = ColorAccentBright
			}
			b.WriteString("Workspace: " + fg(color).Render(task.Workspace.Name) + "\n")
		}
		if task.Priority > 0 {
			b.WriteString("Priority: " + fg(priorityColor(task.Priority)).Render(task.PriorityName()) + "\n")
		}
		if tags := task.TagList(); len(tags) > 0 {
			b.WriteString("Tags: " + fg(ColorAccentBright).Render(strings.Join(tags, ", ")) + "\n")
		}
		if task.Deadline != nil {
			_, color := dueLabel(task.Deadline, time.Now())
			b.WriteString("Due: " + fg(color).Render(parser.FormatDueDate(task.Deadline)) + "\n")
		}
		if task.PinNotification {
			b.WriteString("Pinned: " + fg(ColorWarning).Render("yes") + "\n")
		}

		if task.Description != "" {
			b.WriteString("\nNotes:\n")
			b.WriteString(fg(ColorSecondaryText).Italic(true).Width(width - 2).Render(task.Description))
			b.WriteString("\n")
		}

		if len(task.Checklist) > 0 {
			done, total := checklist.Progress(task.Checklist)
			b.WriteString(fmt.Sprintf("\nChecklist %d/%d\n", done, total))
			for i, item := range task.Checklist {
				mark, color := "[ ]", ColorPrimaryText
				if item.Completed {
					mark, color = "[x]", ColorDisabledText
				}
				cursor := "  "
				if m.focus == FocusChecklist && i == m.selectedItem {
					cursor, color = "> ", ColorAccentBright
				}
				b.WriteString(cursor + fg(color).Render(mark+" "+truncate(item.Text, width-8)) + "\n")
			}
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width).
		Render(b.String())
}

// renderSearchBar renders the search bar when active
func (m ListModel) renderSearchBar() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Background(lipgloss.Color(ColorBorder)).
		Padding(0, 1).
		Width(m.width - 2).
		Render(m.search.View())
}

// renderHelpBar renders the help bar with hotkey hints
func (m ListModel) renderHelpBar() string {
	var parts []string
	for _, binding := range keys.helpLine(m.focus) {
		h := binding.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return fg(ColorHelpText).Italic(true).Align(lipgloss.Center).Width(m.width).
		Render(strings.Join(parts, " · "))
}

// dueLabel returns a short due label and its color
func dueLabel(due *time.Time, now time.Time) (string, string) {
	if due == nil {
		return "-", ColorDisabledText
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	local := due.In(now.Location())
	dueDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, now.Location())
	days := int(dueDay.Sub(today).Hours() / 24)

	switch {
	case days < 0:
		return "OVERDUE", ColorError
	case days == 0:
		return "TODAY", ColorWarning
	case days == 1:
		return "TOMORROW", ColorWarning
	case days <= 7:
		return fmt.Sprintf("%dd", days), ColorAccentBright
	default:
		return local.Format("02/01"), ColorSecondaryText
	}
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-3]) + "..."
}
