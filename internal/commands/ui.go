package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tend/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive task list",
	Long: `Open a live task list. It refreshes whenever tasks change, including
changes made from another terminal.

Keys: ↑/↓ move, ←/→ page, / search, d done/undone, p pin, f open/all,
tab checklist (space checks an item), q quit.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		return tui.RunList(ctx, a.Tasks, a.Config.TimelineMode())
	}),
}
