package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tend/internal/models"
	"github.com/balkashynov/tend/internal/parser"
	"github.com/balkashynov/tend/internal/stats"
)

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Track daily habits",
}

var habitAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a habit",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		habit := models.Habit{Name: strings.Join(args, " ")}
		habit.Description, _ = cmd.Flags().GetString("desc")
		if raw, _ := cmd.Flags().GetString("color"); raw != "" {
			color, err := parser.ParseColor(raw)
			if err != nil {
				return err
			}
			habit.Color = color
		}
		if err := a.Store.CreateHabit(ctx, &habit); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created habit #%d: %s\n", habit.ID, habit.Name)
		return nil
	}),
}

var habitListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List habits with their streaks",
	Args:    cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		all, _ := cmd.Flags().GetBool("all")
		habits, err := a.Store.ListHabits(ctx, all)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(habits) == 0 {
			fmt.Fprintln(w, "No habits yet. Use 'tend habit add <name>' to start one.")
			return nil
		}

		today := time.Now()
		fmt.Fprintf(w, "%-4s %-24s %-9s %-8s %-8s %s\n", "ID", "NAME", "LAST 7", "STREAK", "BEST", "30 DAYS")
		fmt.Fprintln(w, strings.Repeat("-", 66))
		for _, habit := range habits {
			s := stats.Habit(habit.History, today, 30)
			name := habit.Name
			if habit.Archived {
				name += " (archived)"
			}
			fmt.Fprintf(w, "%-4d %-24s %-9s %-8d %-8d %d%%\n",
				habit.ID, truncate(name, 24), weekStrip(habit.History, today), s.CurrentStreak, s.LongestStreak, s.Rate)
		}
		return nil
	}),
}

var habitLogCmd = &cobra.Command{
	Use:   "log <habit_id> [day]",
	Short: "Mark a habit done for today (or the given day)",
	Long: `Mark a habit done for a day. The day defaults to today and accepts
'yesterday' or a YYYY-MM-DD date. Use --missed to record a missed day.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		habitID, day, err := habitDayArgs(args)
		if err != nil {
			return err
		}
		missed, _ := cmd.Flags().GetBool("missed")
		entry, err := a.Store.LogHabit(ctx, habitID, day, !missed)
		if err != nil {
			return err
		}
		habit, err := a.Store.GetHabit(ctx, habitID)
		if err != nil {
			return err
		}

		s := stats.Habit(habit.History, time.Now(), 30)
		if entry.Done {
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s done on %s (streak: %d)\n", habit.Name, entry.Day, s.CurrentStreak)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "❌ %s missed on %s\n", habit.Name, entry.Day)
		}
		return nil
	}),
}

var habitUnlogCmd = &cobra.Command{
	Use:   "unlog <habit_id> [day]",
	Short: "Clear a habit's entry for today (or the given day)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		habitID, day, err := habitDayArgs(args)
		if err != nil {
			return err
		}
		if err := a.Store.UnlogHabit(ctx, habitID, day); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared habit #%d on %s\n", habitID, day)
		return nil
	}),
}

var habitArchiveCmd = &cobra.Command{
	Use:   "archive <habit_id>",
	Short: "Hide a habit from lists",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		habitID, err := parseID(args[0], "habit")
		if err != nil {
			return err
		}
		unarchive, _ := cmd.Flags().GetBool("undo")
		if err := a.Store.SetHabitArchived(ctx, habitID, !unarchive); err != nil {
			return err
		}
		if unarchive {
			fmt.Fprintf(cmd.OutOrStdout(), "Restored habit #%d\n", habitID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Archived habit #%d\n", habitID)
		}
		return nil
	}),
}

var habitRmCmd = &cobra.Command{
	Use:   "rm <habit_id>",
	Short: "Delete a habit and its history",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		habitID, err := parseID(args[0], "habit")
		if err != nil {
			return err
		}
		if err := a.Store.DeleteHabit(ctx, habitID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted habit #%d\n", habitID)
		return nil
	}),
}

var habitStatsCmd = &cobra.Command{
	Use:   "stats <habit_id>",
	Short: "Show streaks and completion rate of a habit",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		habitID, err := parseID(args[0], "habit")
		if err != nil {
			return err
		}
		days, _ := cmd.Flags().GetInt("days")
		if days < 1 {
			return fmt.Errorf("--days must be at least 1")
		}
		habit, err := a.Store.GetHabit(ctx, habitID)
		if err != nil {
			return err
		}

		today := time.Now()
		s := stats.Habit(habit.History, today, days)
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "#%d %s\n", habit.ID, habit.Name)
		if habit.Description != "" {
			fmt.Fprintf(w, "  %s\n", habit.Description)
		}
		fmt.Fprintf(w, "  Last 7 days:    %s\n", weekStrip(habit.History, today))
		fmt.Fprintf(w, "  Current streak: %d\n", s.CurrentStreak)
		fmt.Fprintf(w, "  Longest streak: %d\n", s.LongestStreak)
		fmt.Fprintf(w, "  Last %d days:   %d/%d (%d%%)\n", s.Window, s.DoneInWindow, s.Window, s.Rate)
		if s.LastDone != "" {
			fmt.Fprintf(w, "  Last done:      %s\n", s.LastDone)
		}
		return nil
	}),
}

func habitDayArgs(args []string) (uint, string, error) {
	habitID, err := parseID(args[0], "habit")
	if err != nil {
		return 0, "", err
	}
	raw := ""
	if len(args) > 1 {
		raw = args[1]
	}
	day, err := parser.ParseDay(raw)
	if err != nil {
		return 0, "", err
	}
	return habitID, day, nil
}

// weekStrip renders the last seven days, oldest first: ● done, ✗ missed, · no entry
func weekStrip(history []models.HabitHistory, today time.Time) string {
	byDay := make(map[string]bool, len(history))
	for _, entry := range history {
		byDay[entry.Day] = entry.Done
	}

	var b strings.Builder
	for i := 6; i >= 0; i-- {
		day := stats.Day(today.AddDate(0, 0, -i))
		done, logged := byDay[day]
		switch {
		case !logged:
			b.WriteString("·")
		case done:
			b.WriteString("●")
		default:
			b.WriteString("✗")
		}
	}
	return b.String()
}

func init() {
	habitAddCmd.Flags().StringP("desc", "d", "", "Description")
	habitAddCmd.Flags().StringP("color", "c", "", "Hex color")
	habitListCmd.Flags().BoolP("all", "a", false, "Include archived habits")
	habitLogCmd.Flags().Bool("missed", false, "Record the day as missed")
	habitArchiveCmd.Flags().Bool("undo", false, "Restore an archived habit")
	habitStatsCmd.Flags().Int("days", 30, "Window for the completion rate")

	habitCmd.AddCommand(habitAddCmd)
	habitCmd.AddCommand(habitListCmd)
	habitCmd.AddCommand(habitLogCmd)
	habitCmd.AddCommand(habitUnlogCmd)
	habitCmd.AddCommand(habitArchiveCmd)
	habitCmd.AddCommand(habitRmCmd)
	habitCmd.AddCommand(habitStatsCmd)
}
