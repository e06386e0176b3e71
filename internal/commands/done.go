package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tend/internal/checklist"
	"github.com/balkashynov/tend/internal/models"
)

var doneCmd = &cobra.Command{
	Use:   "done <task_id>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		task, err := setTaskFlag(ctx, a, args[0], a.Tasks.SetTaskCompleted, true)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Marked task %s as done\n", taskLabel(task))
		if task.CompletedAt != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Completed at: %s\n", task.CompletedAt.Format("15:04:05"))
		}
		return nil
	}),
}

var undoneCmd = &cobra.Command{
	Use:   "undone <task_id>",
	Short: "Mark a completed task as open again",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		task, err := setTaskFlag(ctx, a, args[0], a.Tasks.SetTaskCompleted, false)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "↩️  Marked task %s back to todo\n", taskLabel(task))
		return nil
	}),
}

var pinCmd = &cobra.Command{
	Use:   "pin <task_id>",
	Short: "Pin a task as a notification until it is done",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		task, err := setTaskFlag(ctx, a, args[0], a.Tasks.SetTaskPinned, true)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📌 Pinned task %s\n", taskLabel(task))
		if task.Completed {
			fmt.Fprintln(cmd.OutOrStdout(), "The task is completed, so no notification is shown.")
		}
		return nil
	}),
}

var unpinCmd = &cobra.Command{
	Use:   "unpin <task_id>",
	Short: "Remove a task's pinned notification",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		task, err := setTaskFlag(ctx, a, args[0], a.Tasks.SetTaskPinned, false)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Unpinned task %s\n", taskLabel(task))
		return nil
	}),
}

var rmCmd = &cobra.Command{
	Use:     "rm <task_id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task and its checklist",
	Args:    cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		taskID, err := parseID(args[0], "task")
		if err != nil {
			return err
		}
		if err := a.Tasks.DeleteTask(ctx, taskID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted task #%d\n", taskID)
		return nil
	}),
}

var checkCmd = &cobra.Command{
	Use:   "check <item_id>",
	Short: "Check a checklist item",
	Long: `Check a checklist item. When it was the last open item on its task,
the task is marked completed.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		return setItemCompleted(ctx, cmd, a, args[0], true)
	}),
}

var uncheckCmd = &cobra.Command{
	Use:   "uncheck <item_id>",
	Short: "Uncheck a checklist item",
	Long: `Uncheck a checklist item. A task that was already completed stays
completed; use 'tend undone' to reopen it.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		return setItemCompleted(ctx, cmd, a, args[0], false)
	}),
}

type taskFlagSetter func(ctx context.Context, id uint, value bool) (*models.Task, error)

func setTaskFlag(ctx context.Context, a *App, arg string, set taskFlagSetter, value bool) (*models.Task, error) {
	taskID, err := parseID(arg, "task")
	if err != nil {
		return nil, err
	}
	return set(ctx, taskID, value)
}

func setItemCompleted(ctx context.Context, cmd *cobra.Command, a *App, arg string, completed bool) error {
	itemID, err := parseID(arg, "checklist item")
	if err != nil {
		return err
	}

	item, err := a.Tasks.SetChecklistItemCompleted(ctx, itemID, completed)
	if err != nil {
		return err
	}

	task, err := a.Tasks.Task(ctx, item.TaskID)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	mark := " "
	if item.Completed {
		mark = "x"
	}
	done, total := checklist.Progress(task.Checklist)
	fmt.Fprintf(w, "[%s] %s (%d/%d on task #%d)\n", mark, item.Text, done, total, task.ID)
	if completed && task.Completed && checklist.AllCompleted(task.Checklist) {
		fmt.Fprintf(w, "✅ Task %s is complete\n", taskLabel(task))
	}
	return nil
}
