package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tend/internal/parser"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"tray"},
	Short:   "List pinned task notifications",
	Long: `List the notifications currently in the tray file. Pinned tasks appear
here until they are completed or unpinned.

--sync rebuilds the tray from the database, for example after the file
was deleted or edited by hand.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		w := cmd.OutOrStdout()

		if sync, _ := cmd.Flags().GetBool("sync"); sync {
			shown, err := a.Tasks.SyncNotifications(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Synced notifications: %d pinned\n", shown)
		}

		entries, err := a.Tray.Active()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(w, "No pinned notifications. Use 'tend pin <id>' to pin a task.")
			return nil
		}

		for _, entry := range entries {
			line := fmt.Sprintf("📌 #%d %s", entry.TaskID, entry.Title)
			if entry.Deadline != nil {
				line += "  " + parser.FormatDueDate(entry.Deadline)
			}
			fmt.Fprintln(w, line)
		}
		if verbose, _ := cmd.Flags().GetBool("path"); verbose {
			fmt.Fprintf(w, "\n%s\n", a.Tray.Path())
		}
		return nil
	}),
}

func init() {
	notificationsCmd.Flags().Bool("sync", false, "Rebuild the tray from the database first")
	notificationsCmd.Flags().Bool("path", false, "Print the tray file location")
}
