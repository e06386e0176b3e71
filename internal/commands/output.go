package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/balkashynov/tend/internal/checklist"
	"github.com/balkashynov/tend/internal/models"
	"github.com/balkashynov/tend/internal/parser"
)

// jsonTask is the --json shape of a task
type jsonTask struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Completed   bool            `json:"completed"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Workspace   string          `json:"workspace,omitempty"`
	Priority    string          `json:"priority,omitempty"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	Tags        []string        `json:"tags"`
	Pinned      bool            `json:"pinned"`
	Checklist   []jsonChecklist `json:"checklist,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type jsonChecklist struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

func toJSONTask(task models.Task) jsonTask {
	out := jsonTask{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CompletedAt: task.CompletedAt,
		Priority:    task.PriorityName(),
		Deadline:    task.Deadline,
		Tags:        task.TagList(),
		Pinned:      task.PinNotification,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if task.Workspace != nil {
		out.Workspace = task.Workspace.Name
	}
	for _, item := range task.Checklist {
		out.Checklist = append(out.Checklist, jsonChecklist{ID: item.ID, Text: item.Text, Completed: item.Completed})
	}
	return out
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func statusLabel(task models.Task) string {
	if task.Completed {
		return "done"
	}
	return "todo"
}

func workspaceName(task models.Task) string {
	if task.Workspace == nil {
		return ""
	}
	return task.Workspace.Name
}

// renderTaskTable prints tasks in fixed columns for 80-character terminals
func renderTaskTable(w io.Writer, tasks []models.Task) {
	fmt.Fprintf(w, "%-4s %-5s %-34s %-12s %-6s %-10s %s\n", "ID", "STAT", "TITLE", "WORKSPACE", "PRIO", "DUE", "TAGS")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, task := range tasks {
		title := task.Title
		if task.PinNotification {
			title = "📌 " + title
		}
		due := ""
		if task.Deadline != nil {
			due = task.Deadline.Format("02/01/2006")
		}
		fmt.Fprintf(w, "%-4d %-5s %-34s %-12s %-6s %-10s %s\n",
			task.ID,
			statusLabel(task),
			truncate(title, 34),
			truncate(workspaceName(task), 12),
			truncate(task.PriorityName(), 6),
			due,
			truncate(task.Tags, 20))
	}
}

// printTaskDetail prints one task with its checklist
func printTaskDetail(w io.Writer, task models.Task) {
	fmt.Fprintf(w, "#%d %s\n", task.ID, task.Title)
	fmt.Fprintf(w, "  Status: %s", statusLabel(task))
	if task.CompletedAt != nil && task.Completed {
		fmt.Fprintf(w, " (%s)", task.CompletedAt.Format("02/01/2006 15:04"))
	}
	fmt.Fprintln(w)
	if name := workspaceName(task); name != "" {
		fmt.Fprintf(w, "  Workspace: %s\n", name)
	}
	if task.Priority > 0 {
		fmt.Fprintf(w, "  Priority: %s\n", task.PriorityName())
	}
	if tags := task.TagList(); len(tags) > 0 {
		fmt.Fprintf(w, "  Tags: %s\n", strings.Join(tags, ", "))
	}
	if task.Deadline != nil {
		fmt.Fprintf(w, "  Due: %s\n", parser.FormatDueDate(task.Deadline))
	}
	if task.PinNotification {
		fmt.Fprintln(w, "  Pinned: yes")
	}
	if task.Description != "" {
		fmt.Fprintf(w, "  Notes: %s\n", task.Description)
	}
	if len(task.Checklist) > 0 {
		done, total := checklist.Progress(task.Checklist)
		fmt.Fprintf(w, "  Checklist (%d/%d):\n", done, total)
		for _, item := range task.Checklist {
			mark := " "
			if item.Completed {
				mark = "x"
			}
			fmt.Fprintf(w, "    [%s] %-4d %s\n", mark, item.ID, item.Text)
		}
	}
}
