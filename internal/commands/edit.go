package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/balkashynov/tend/internal/models"
	"github.com/balkashynov/tend/internal/parser"
)

var editCmd = &cobra.Command{
	Use:   "edit <task_id>",
	Short: "Edit an existing task",
	Long: `Edit a task's fields and checklist.

Only the flags you pass are changed. Checklist flags are applied to the
current checklist and the result is saved in one go: new items are added,
checked or unchecked items are updated, dropped items are removed. Checking
the last open item completes the task.

Usage:
  tend edit 42 --title "New title" --priority high
  tend edit 42 --due none --workspace none
  tend edit 42 --item "Buy stamps" --check 7 --drop 8`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runEdit),
}

func runEdit(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
	taskID, err := parseID(args[0], "task")
	if err != nil {
		return err
	}

	task, err := a.Tasks.Task(ctx, taskID)
	if err != nil {
		return err
	}

	if !anyLocalFlagChanged(cmd) {
		return fmt.Errorf("nothing to change. See 'tend edit --help'")
	}

	if err := applyFieldFlags(ctx, cmd, a, task); err != nil {
		return err
	}

	items, changed, err := editChecklist(cmd, task)
	if err != nil {
		return err
	}

	// The saved task must not carry stale associations
	task.Workspace = nil
	task.Checklist = nil

	var saved *models.Task
	if changed {
		saved, err = a.Tasks.SaveTaskWithChecklist(ctx, task, items)
	} else {
		saved, err = a.Tasks.UpdateTask(ctx, task)
	}
	if err != nil {
		return fmt.Errorf("error saving task: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✅ Updated task")
	printTaskDetail(cmd.OutOrStdout(), *saved)
	return nil
}

func anyLocalFlagChanged(cmd *cobra.Command) bool {
	changed := false
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			changed = true
		}
	})
	return changed
}

func applyFieldFlags(ctx context.Context, cmd *cobra.Command, a *App, task *models.Task) error {
	flags := cmd.Flags()

	if flags.Changed("title") {
		title, _ := flags.GetString("title")
		if strings.TrimSpace(title) == "" {
			return fmt.Errorf("task title cannot be empty")
		}
		task.Title = strings.TrimSpace(title)
	}
	if flags.Changed("desc") {
		task.Description, _ = flags.GetString("desc")
	}
	if flags.Changed("priority") {
		raw, _ := flags.GetString("priority")
		priority, ok := parser.ParsePriority(raw)
		if !ok {
			return fmt.Errorf("invalid priority '%s'. Use: none, low, medium, high, 0-3", raw)
		}
		task.Priority = priority
	}
	if flags.Changed("due") {
		raw, _ := flags.GetString("due")
		if strings.EqualFold(raw, "none") {
			task.Deadline = nil
		} else {
			deadline, err := parser.ParseDueDate(raw)
			if err != nil {
				return fmt.Errorf("error parsing due date: %w", err)
			}
			task.Deadline = deadline
		}
	}
	if flags.Changed("tags") {
		tags, _ := flags.GetStringSlice("tags")
		task.Tags = models.JoinTags(tags)
	}
	if flags.Changed("workspace") {
		ref, _ := flags.GetString("workspace")
		if ref == "" || strings.EqualFold(ref, "none") {
			task.WorkspaceID = nil
		} else {
			ws, _, err := resolveWorkspace(ctx, a, ref, false)
			if err != nil {
				return err
			}
			task.WorkspaceID = &ws.ID
		}
	}
	if flags.Changed("pin") {
		task.PinNotification, _ = flags.GetBool("pin")
	}
	if flags.Changed("completed") {
		task.Completed, _ = flags.GetBool("completed")
	}
	return nil
}

// editChecklist applies the checklist flags to the task's current items and
// reports whether anything was asked of the checklist.
func editChecklist(cmd *cobra.Command, task *models.Task) ([]models.ChecklistItem, bool, error) {
	flags := cmd.Flags()
	texts, _ := flags.GetStringArray("item")
	check, _ := flags.GetUintSlice("check")
	uncheck, _ := flags.GetUintSlice("uncheck")
	drop, _ := flags.GetUintSlice("drop")
	clearAll, _ := flags.GetBool("clear-checklist")

	if len(texts) == 0 && len(check) == 0 && len(uncheck) == 0 && len(drop) == 0 && !clearAll {
		return nil, false, nil
	}

	byID := make(map[uint]int, len(task.Checklist))
	for i, item := range task.Checklist {
		byID[item.ID] = i
	}
	lookup := func(id uint) (int, error) {
		i, ok := byID[id]
		if !ok {
			return 0, fmt.Errorf("checklist item #%d is not on task #%d", id, task.ID)
		}
		return i, nil
	}

	items := make([]models.ChecklistItem, len(task.Checklist))
	copy(items, task.Checklist)

	for _, id := range check {
		i, err := lookup(id)
		if err != nil {
			return nil, false, err
		}
		items[i].Completed = true
	}
	for _, id := range uncheck {
		i, err := lookup(id)
		if err != nil {
			return nil, false, err
		}
		items[i].Completed = false
	}

	dropped := make(map[uint]bool, len(drop))
	for _, id := range drop {
		if _, err := lookup(id); err != nil {
			return nil, false, err
		}
		dropped[id] = true
	}

	var target []models.ChecklistItem
	if !clearAll {
		for _, item := range items {
			if !dropped[item.ID] {
				target = append(target, item)
			}
		}
	}
	for _, text := range texts {
		if text = strings.TrimSpace(text); text != "" {
			target = append(target, models.ChecklistItem{Text: text})
		}
	}
	return target, true, nil
}

func init() {
	editCmd.Flags().String("title", "", "New title")
	editCmd.Flags().StringP("desc", "d", "", "New description")
	editCmd.Flags().StringP("priority", "p", "", "Priority: none, low, medium, high, or 0-3")
	editCmd.Flags().String("due", "", "Due date, or 'none' to clear")
	editCmd.Flags().StringSliceP("tags", "t", []string{}, "Replace tags (comma-separated)")
	editCmd.Flags().StringP("workspace", "w", "", "Workspace name or ID, or 'none'")
	editCmd.Flags().Bool("pin", false, "Pin (--pin) or unpin (--pin=false) the notification")
	editCmd.Flags().Bool("completed", false, "Mark completed (--completed) or open (--completed=false)")
	editCmd.Flags().StringArrayP("item", "i", []string{}, "Add a checklist item (repeatable)")
	editCmd.Flags().UintSlice("check", []uint{}, "Check checklist items by ID")
	editCmd.Flags().UintSlice("uncheck", []uint{}, "Uncheck checklist items by ID")
	editCmd.Flags().UintSlice("drop", []uint{}, "Remove checklist items by ID")
	editCmd.Flags().Bool("clear-checklist", false, "Remove every checklist item")
}
