package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/balkashynov/tend/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := loadConfig()
		if err != nil {
			return err
		}
		cfg, err := manager.Config()
		if err != nil {
			return err
		}

		view := map[string]interface{}{
			"database":      map[string]string{"path": cfg.Database.Path},
			"notifications": map[string]string{"path": cfg.Notifications.Path},
			"log":           map[string]string{"level": cfg.Log.Level},
			"timeline":      map[string]string{"mode": string(manager.TimelineMode())},
		}
		data, err := yaml.Marshal(view)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", manager.Path(), data)
		return nil
	},
}

var configTimelineModeCmd = &cobra.Command{
	Use:   "timeline-mode [DEFAULT|COLOR]",
	Short: "Get or set how the timeline is colored",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := loadConfig()
		if err != nil {
			return err
		}
		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), manager.TimelineMode())
			return nil
		}

		mode, err := config.ParseTimelineMode(args[0])
		if err != nil {
			return err
		}
		if err := manager.SetTimelineMode(mode); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Timeline mode set to %s\n", mode)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configTimelineModeCmd)
}
