package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tend/internal/models"
	"github.com/balkashynov/tend/internal/parser"
)

var addCmd = &cobra.Command{
	Use:   "add [task title]",
	Short: "Add a new task",
	Long: `Add a new task with optional metadata and checklist.

Smart parsing syntax:
  #tag1,tag2  - Tags (comma-separated or individual)
  @workspace  - Workspace name (created if missing)
  +priority   - Priority (low/medium/high or 1/2/3)
  due:3days   - Due date (today, tomorrow, dd/mm/yyyy, yyyy-mm-dd, 3d, 24h, 2w)
  !pin        - Pin the task as a notification

Example:
  tend add "Hand in essay #uni @school +high due:tomorrow" --item "Outline" --item "Draft"`,
	Args: cobra.MinimumNArgs(1),
	RunE: withApp(runAdd),
}

func runAdd(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
	parsed := parser.ParseTitle(strings.Join(args, " "))
	if len(parsed.Errors) > 0 {
		return fmt.Errorf("found issues with parsing: %s", strings.Join(parsed.Errors, ", "))
	}

	task := models.Task{
		Title:           parsed.Title,
		Deadline:        parsed.Deadline,
		Priority:        parsed.Priority,
		Tags:            models.JoinTags(parsed.Tags),
		PinNotification: parsed.Pin,
	}
	workspace := parsed.Workspace

	// Explicit flags take precedence over the parsed title
	flags := cmd.Flags()
	if flags.Changed("desc") {
		task.Description, _ = flags.GetString("desc")
	}
	if flags.Changed("workspace") {
		workspace, _ = flags.GetString("workspace")
	}
	if flags.Changed("tags") {
		tags, _ := flags.GetStringSlice("tags")
		task.Tags = models.JoinTags(tags)
	}
	if flags.Changed("priority") {
		raw, _ := flags.GetString("priority")
		priority, ok := parser.ParsePriority(raw)
		if !ok {
			return fmt.Errorf("invalid priority '%s'. Use: low, medium, high, 1, 2, or 3", raw)
		}
		task.Priority = priority
	}
	if flags.Changed("due") {
		raw, _ := flags.GetString("due")
		deadline, err := parser.ParseDueDate(raw)
		if err != nil {
			return fmt.Errorf("error parsing due date: %w", err)
		}
		task.Deadline = deadline
	}
	if flags.Changed("pin") {
		task.PinNotification, _ = flags.GetBool("pin")
	}

	if workspace != "" {
		ws, created, err := resolveWorkspace(ctx, a, workspace, true)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "Created workspace %q\n", ws.Name)
		}
		task.WorkspaceID = &ws.ID
	}

	texts, _ := flags.GetStringArray("item")
	var items []models.ChecklistItem
	for _, text := range texts {
		if text = strings.TrimSpace(text); text != "" {
			items = append(items, models.ChecklistItem{Text: text})
		}
	}

	saved, err := a.Tasks.SaveTaskWithChecklist(ctx, &task, items)
	if err != nil {
		return fmt.Errorf("error creating task: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✅ Created task")
	printTaskDetail(cmd.OutOrStdout(), *saved)
	return nil
}

func init() {
	addCmd.Flags().StringP("desc", "d", "", "Task description")
	addCmd.Flags().StringP("workspace", "w", "", "Workspace name or ID")
	addCmd.Flags().StringSliceP("tags", "t", []string{}, "Comma-separated tags")
	addCmd.Flags().StringP("priority", "p", "", "Priority: low, medium, high, or 1-3")
	addCmd.Flags().String("due", "", "Due date: today, tomorrow, dd/mm/yyyy, yyyy-mm-dd, X days, X hours, X weeks")
	addCmd.Flags().Bool("pin", false, "Pin the task as a notification until it is done")
	addCmd.Flags().StringArrayP("item", "i", []string{}, "Checklist item (repeatable)")
}
