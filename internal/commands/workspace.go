package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tend/internal/db"
	"github.com/balkashynov/tend/internal/models"
	"github.com/balkashynov/tend/internal/parser"
	"github.com/balkashynov/tend/internal/stats"
)

var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Aliases: []string{"ws"},
	Short:   "Manage workspaces",
}

var workspaceAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a workspace",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		ws := models.Workspace{Name: strings.Join(args, " ")}
		if raw, _ := cmd.Flags().GetString("color"); raw != "" {
			color, err := parser.ParseColor(raw)
			if err != nil {
				return err
			}
			ws.Color = color
		}
		if err := a.Store.CreateWorkspace(ctx, &ws); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created workspace #%d: %s (%s)\n", ws.ID, ws.Name, ws.Color)
		return nil
	}),
}

var workspaceEditCmd = &cobra.Command{
	Use:   "edit <workspace>",
	Short: "Rename or recolor a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		ws, _, err := resolveWorkspace(ctx, a, args[0], false)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("name") {
			name, _ := flags.GetString("name")
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("workspace name cannot be empty")
			}
			ws.Name = strings.TrimSpace(name)
		}
		if flags.Changed("color") {
			raw, _ := flags.GetString("color")
			if ws.Color, err = parser.ParseColor(raw); err != nil {
				return err
			}
		}
		if err := a.Store.SaveWorkspace(ctx, ws); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated workspace #%d: %s (%s)\n", ws.ID, ws.Name, ws.Color)
		return nil
	}),
}

var workspaceListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List workspaces with task progress",
	Args:    cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		all, _ := cmd.Flags().GetBool("all")
		workspaces, err := a.Store.ListWorkspaces(ctx, all)
		if err != nil {
			return err
		}
		tasks, err := a.Tasks.Tasks(ctx, db.TaskFilter{})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(workspaces) == 0 && len(tasks) == 0 {
			fmt.Fprintln(w, "No workspaces yet. Use 'tend workspace add <name>' to create one.")
			return nil
		}

		fmt.Fprintf(w, "%-4s %-20s %-8s %-6s %-6s %s\n", "ID", "NAME", "COLOR", "TASKS", "DONE", "PROGRESS")
		fmt.Fprintln(w, strings.Repeat("-", 60))
		for _, summary := range stats.SummarizeWorkspaces(workspaces, tasks) {
			id, color, name := "-", "", summary.Name()
			if summary.Workspace != nil {
				id = strconv.FormatUint(uint64(summary.Workspace.ID), 10)
				color = summary.Workspace.Color
				if summary.Workspace.Archived {
					name += " (archived)"
				}
			}
			fmt.Fprintf(w, "%-4s %-20s %-8s %-6d %-6d %s %d%%\n",
				id, truncate(name, 20), color, summary.Total, summary.Done,
				progressBar(summary.Percent, 10), summary.Percent)
		}
		return nil
	}),
}

var workspaceArchiveCmd = &cobra.Command{
	Use:   "archive <workspace>",
	Short: "Hide a workspace from lists",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		return setWorkspaceArchived(ctx, cmd, a, args[0], true)
	}),
}

var workspaceUnarchiveCmd = &cobra.Command{
	Use:   "unarchive <workspace>",
	Short: "Restore an archived workspace",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		return setWorkspaceArchived(ctx, cmd, a, args[0], false)
	}),
}

var workspaceRmCmd = &cobra.Command{
	Use:   "rm <workspace>",
	Short: "Delete a workspace, keeping its tasks unfiled",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		ws, _, err := resolveWorkspace(ctx, a, args[0], false)
		if err != nil {
			return err
		}
		if err := a.Store.DeleteWorkspace(ctx, ws.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted workspace %s\n", ws.Name)
		return nil
	}),
}

func setWorkspaceArchived(ctx context.Context, cmd *cobra.Command, a *App, ref string, archived bool) error {
	ws, _, err := resolveWorkspace(ctx, a, ref, false)
	if err != nil {
		return err
	}
	ws, err = a.Store.SetWorkspaceArchived(ctx, ws.ID, archived)
	if err != nil {
		return err
	}
	verb := "Restored"
	if archived {
		verb = "Archived"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s workspace %s\n", verb, ws.Name)
	return nil
}

// resolveWorkspace finds a workspace by ID or name. With create set, an
// unknown name is created with the default color.
func resolveWorkspace(ctx context.Context, a *App, ref string, create bool) (*models.Workspace, bool, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseUint(ref, 10, 32); err == nil {
		ws, err := a.Store.GetWorkspace(ctx, uint(id))
		return ws, false, err
	}

	ws, err := a.Store.GetWorkspaceByName(ctx, ref)
	if err == nil {
		return ws, false, nil
	}
	if !create || !errors.Is(err, db.ErrNotFound) {
		return nil, false, err
	}

	ws = &models.Workspace{Name: ref}
	if err := a.Store.CreateWorkspace(ctx, ws); err != nil {
		return nil, false, err
	}
	return ws, true, nil
}

// progressBar renders percent as a fixed-width bar
func progressBar(percent, width int) string {
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func init() {
	workspaceAddCmd.Flags().StringP("color", "c", "", "Hex color, e.g. #10B981")
	workspaceEditCmd.Flags().String("name", "", "New name")
	workspaceEditCmd.Flags().StringP("color", "c", "", "New hex color")
	workspaceListCmd.Flags().BoolP("all", "a", false, "Include archived workspaces")

	workspaceCmd.AddCommand(workspaceAddCmd)
	workspaceCmd.AddCommand(workspaceEditCmd)
	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceArchiveCmd)
	workspaceCmd.AddCommand(workspaceUnarchiveCmd)
	workspaceCmd.AddCommand(workspaceRmCmd)
}
