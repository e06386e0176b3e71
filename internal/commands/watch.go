package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tend/internal/checklist"
	"github.com/balkashynov/tend/internal/db"
	"github.com/balkashynov/tend/internal/models"
	"github.com/balkashynov/tend/internal/stats"
)

var watchCmd = &cobra.Command{
	Use:   "watch [tasks | task <id> | habits | workspaces]",
	Short: "Print a fresh summary whenever the data changes",
	Long: `Stream snapshots as the database changes, including changes made by
other tend processes. Stops on Ctrl+C, or after --count snapshots.

  tend watch              open/done counts of all tasks
  tend watch task 42      one task with its checklist
  tend watch habits       today's habit check-ins
  tend watch workspaces   workspace list`,
	Args: cobra.MaximumNArgs(2),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		count, _ := cmd.Flags().GetInt("count")
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		kind := "tasks"
		if len(args) > 0 {
			kind = args[0]
		}
		w := cmd.OutOrStdout()

		switch kind {
		case "tasks":
			return drain(cancel, count, a.Tasks.Watch(ctx, db.TaskFilter{}), func(tasks []models.Task) {
				printTasksSnapshot(w, tasks)
			})

		case "task":
			if len(args) < 2 {
				return fmt.Errorf("usage: tend watch task <id>")
			}
			taskID, err := parseID(args[1], "task")
			if err != nil {
				return err
			}
			if _, err := a.Tasks.Task(ctx, taskID); err != nil {
				return err
			}
			return drain(cancel, count, a.Store.WatchTask(ctx, taskID), func(task models.Task) {
				fmt.Fprintf(w, "[%s]\n", time.Now().Format("15:04:05"))
				printTaskDetail(w, task)
			})

		case "habits":
			return drain(cancel, count, a.Store.WatchHabits(ctx, false), func(habits []models.Habit) {
				printHabitsSnapshot(w, habits)
			})

		case "workspaces":
			return drain(cancel, count, a.Store.WatchWorkspaces(ctx, false), func(list []models.Workspace) {
				fmt.Fprintf(w, "[%s] %d workspaces\n", time.Now().Format("15:04:05"), len(list))
				for _, ws := range list {
					fmt.Fprintf(w, "  #%d %s %s\n", ws.ID, ws.Name, ws.Color)
				}
			})
		}
		return fmt.Errorf("unknown watch target '%s'. Use: tasks, task, habits, workspaces", kind)
	}),
}

// drain prints every snapshot until the stream ends or count is reached
func drain[T any](cancel context.CancelFunc, count int, stream <-chan T, show func(T)) error {
	seen := 0
	for snapshot := range stream {
		show(snapshot)
		seen++
		if count > 0 && seen >= count {
			cancel()
			break
		}
	}
	// Ctrl+C closes the stream; that is a normal exit
	return nil
}

func printTasksSnapshot(w io.Writer, tasks []models.Task) {
	open, pinned, items, itemsDone := 0, 0, 0, 0
	for _, task := range tasks {
		if !task.Completed {
			open++
		}
		if task.WantsNotification() {
			pinned++
		}
		done, total := checklist.Progress(task.Checklist)
		itemsDone += done
		items += total
	}
	fmt.Fprintf(w, "[%s] %d tasks: %d open, %d done (%d%%), %d pinned, checklist %d/%d\n",
		time.Now().Format("15:04:05"), len(tasks), open, len(tasks)-open,
		stats.CompletionPercent(tasks), pinned, itemsDone, items)
}

func printHabitsSnapshot(w io.Writer, habits []models.Habit) {
	today := time.Now()
	todayKey := stats.Day(today)
	done := 0
	for _, habit := range habits {
		for _, entry := range habit.History {
			if entry.Day == todayKey && entry.Done {
				done++
				break
			}
		}
	}
	fmt.Fprintf(w, "[%s] habits done today: %d/%d\n", today.Format("15:04:05"), done, len(habits))
	for _, habit := range habits {
		s := stats.Habit(habit.History, today, 7)
		fmt.Fprintf(w, "  #%d %-24s %s streak %d\n", habit.ID, truncate(habit.Name, 24), weekStrip(habit.History, today), s.CurrentStreak)
	}
}

func init() {
	watchCmd.Flags().IntP("count", "c", 0, "Stop after this many snapshots (0 = until Ctrl+C)")
}
