package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tend/internal/db"
	"github.com/balkashynov/tend/internal/models"
	"github.com/balkashynov/tend/internal/stats"
)

var listCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List tasks",
	Long:    "List tasks with optional filters for status, workspace and tags",
	Args:    cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		filter, err := taskFilterFromFlags(ctx, cmd, a)
		if err != nil {
			return err
		}

		tasks, err := a.Tasks.Tasks(ctx, filter)
		if err != nil {
			return fmt.Errorf("error fetching tasks: %w", err)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			out := make([]jsonTask, 0, len(tasks))
			for _, task := range tasks {
				out = append(out, toJSONTask(task))
			}
			return writeJSON(cmd.OutOrStdout(), out)
		}

		w := cmd.OutOrStdout()
		if len(tasks) == 0 {
			fmt.Fprintln(w, "No tasks found. Use 'tend add \"task title\"' to create your first task.")
			return nil
		}
		renderTaskTable(w, tasks)
		fmt.Fprintf(w, "\n%d tasks, %d%% done\n", len(tasks), stats.CompletionPercent(tasks))
		return nil
	}),
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search tasks by title, description and tags",
	Long: `Search tasks case-insensitively across title, description and tags.
Accepts the same filters as 'tend ls'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		filter, err := taskFilterFromFlags(ctx, cmd, a)
		if err != nil {
			return err
		}
		query := strings.Join(args, " ")
		filter.Search = query

		tasks, err := a.Tasks.Tasks(ctx, filter)
		if err != nil {
			return fmt.Errorf("error searching tasks: %w", err)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			type searchResult struct {
				Query string     `json:"query"`
				Count int        `json:"count"`
				Tasks []jsonTask `json:"tasks"`
			}
			result := searchResult{Query: query, Count: len(tasks), Tasks: []jsonTask{}}
			for _, task := range tasks {
				result.Tasks = append(result.Tasks, toJSONTask(task))
			}
			return writeJSON(cmd.OutOrStdout(), result)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Search results for '%s' (%d found):\n", query, len(tasks))
		if len(tasks) == 0 {
			fmt.Fprintln(w, "No tasks found matching your search.")
			return nil
		}
		fmt.Fprintln(w)
		renderTaskTable(w, tasks)
		return nil
	}),
}

var showCmd = &cobra.Command{
	Use:   "show <task_id>",
	Short: "Show a task with its checklist",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		taskID, err := parseID(args[0], "task")
		if err != nil {
			return err
		}
		task, err := a.Tasks.Task(ctx, taskID)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), toJSONTask(*task))
		}
		printTaskDetail(cmd.OutOrStdout(), *task)
		return nil
	}),
}

// taskFilterFromFlags builds a task filter from the shared list flags
func taskFilterFromFlags(ctx context.Context, cmd *cobra.Command, a *App) (db.TaskFilter, error) {
	flags := cmd.Flags()
	filter := db.TaskFilter{}

	done, _ := flags.GetBool("done")
	todo, _ := flags.GetBool("todo")
	switch {
	case done && todo:
		return filter, fmt.Errorf("--done and --todo cannot be combined")
	case done:
		filter.Completed = &done
	case todo:
		open := false
		filter.Completed = &open
	}

	if ref, _ := flags.GetString("workspace"); ref != "" {
		if strings.EqualFold(ref, "none") {
			filter.NoWorkspace = true
		} else {
			ws, _, err := resolveWorkspace(ctx, a, ref, false)
			if err != nil {
				return filter, err
			}
			filter.WorkspaceID = &ws.ID
		}
	}

	filter.Tag, _ = flags.GetString("tag")
	filter.Tag = strings.TrimPrefix(filter.Tag, "#")

	filter.OrderBy, _ = flags.GetString("order")
	if !db.ValidTaskOrder(filter.OrderBy) {
		return filter, fmt.Errorf("invalid order '%s'. Use: deadline, priority, created, id", filter.OrderBy)
	}
	filter.Limit, _ = flags.GetInt("limit")
	return filter, nil
}

func addTaskFilterFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("done", false, "Only completed tasks")
	cmd.Flags().Bool("todo", false, "Only open tasks")
	cmd.Flags().StringP("workspace", "w", "", "Filter by workspace name or ID ('none' for unfiled)")
	cmd.Flags().StringP("tag", "t", "", "Filter by tag")
	cmd.Flags().StringP("order", "o", "", "Order by: deadline, priority, created, id")
	cmd.Flags().IntP("limit", "l", 0, "Limit number of results")
	cmd.Flags().Bool("json", false, "Output as JSON")
}

func init() {
	addTaskFilterFlags(listCmd)
	addTaskFilterFlags(searchCmd)
	showCmd.Flags().Bool("json", false, "Output as JSON")
}

// taskLabel is used in one-line confirmations
func taskLabel(task *models.Task) string {
	return fmt.Sprintf("#%d: %s", task.ID, task.Title)
}
