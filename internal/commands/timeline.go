package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tend/internal/config"
	"github.com/balkashynov/tend/internal/db"
	"github.com/balkashynov/tend/internal/models"
	"github.com/balkashynov/tend/internal/tui"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show deadlines and classes day by day",
	Long: `Show task deadlines and recorded classes for the coming days, with
overdue open tasks on top.

The coloring follows the stored timeline mode (see 'tend config timeline-mode'):
DEFAULT uses the theme colors, COLOR uses each workspace's and course's color.
--mode overrides it for one run.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		mode := a.Config.TimelineMode()
		if raw, _ := cmd.Flags().GetString("mode"); raw != "" {
			parsed, err := config.ParseTimelineMode(raw)
			if err != nil {
				return err
			}
			mode = parsed
		}

		days, _ := cmd.Flags().GetInt("days")
		past, _ := cmd.Flags().GetInt("past")
		if days < 1 || past < 0 {
			return fmt.Errorf("--days must be at least 1 and --past not negative")
		}

		now := time.Now()
		from := now.AddDate(0, 0, -past)
		to := now.AddDate(0, 0, days-1)

		tasks, err := a.Tasks.Tasks(ctx, db.TaskFilter{OrderBy: "deadline"})
		if err != nil {
			return err
		}
		records, err := a.Store.AttendanceInRange(ctx, from.Format(models.DayLayout), to.Format(models.DayLayout))
		if err != nil {
			return err
		}
		courses, err := a.Store.ListCourses(ctx)
		if err != nil {
			return err
		}

		timeline := tui.BuildTimeline(tasks, records, courses, from, to)
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderTimeline(timeline, mode, now))
		return nil
	}),
}

func init() {
	timelineCmd.Flags().String("mode", "", "DEFAULT or COLOR for this run")
	timelineCmd.Flags().IntP("days", "n", 7, "Number of days to show, starting today")
	timelineCmd.Flags().Int("past", 0, "Also show this many past days")
}
