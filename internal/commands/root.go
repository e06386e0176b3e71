package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "tend",
	Short: "Tasks, habits and attendance from the terminal",
	Long: `tend keeps your tasks (with checklists and workspaces), daily habits
and course attendance in one local database.
Checking off the last checklist item completes a task, and pinned tasks stay
in the notification tray until they are done.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tend %s (commit %s, built %s)\n", version, commit, date)
	},
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $TEND_HOME/config.yaml or ~/.tend/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoneCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(unpinCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(uncheckCmd)
	rootCmd.AddCommand(workspaceCmd)
	rootCmd.AddCommand(habitCmd)
	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(uiCmd)
	rootCmd.SetHelpCommand(helpCmd)
	rootCmd.AddCommand(versionCmd)
}
