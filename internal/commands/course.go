package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tend/internal/models"
	"github.com/balkashynov/tend/internal/parser"
	"github.com/balkashynov/tend/internal/stats"
)

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Track course attendance",
}

var courseAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a course",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		course := models.Course{Name: strings.Join(args, " ")}
		course.Teacher, _ = cmd.Flags().GetString("teacher")
		course.RequiredPercent, _ = cmd.Flags().GetInt("required")
		if course.RequiredPercent < 0 || course.RequiredPercent > 100 {
			return fmt.Errorf("--required must be between 1 and 100")
		}
		if raw, _ := cmd.Flags().GetString("color"); raw != "" {
			color, err := parser.ParseColor(raw)
			if err != nil {
				return err
			}
			course.Color = color
		}
		if err := a.Store.CreateCourse(ctx, &course); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created course #%d: %s (required attendance %d%%)\n",
			course.ID, course.Name, course.RequiredPercent)
		return nil
	}),
}

var courseListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List courses with attendance",
	Args:    cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		courses, err := a.Store.ListCourses(ctx)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(courses) == 0 {
			fmt.Fprintln(w, "No courses yet. Use 'tend course add <name>' to add one.")
			return nil
		}

		fmt.Fprintf(w, "%-4s %-24s %-16s %-9s %-9s %s\n", "ID", "NAME", "TEACHER", "ATTENDED", "REQUIRED", "STATUS")
		fmt.Fprintln(w, strings.Repeat("-", 76))
		for _, course := range courses {
			s := stats.Attendance(course)
			fmt.Fprintf(w, "%-4d %-24s %-16s %-9s %-9s %s\n",
				course.ID,
				truncate(course.Name, 24),
				truncate(course.Teacher, 16),
				fmt.Sprintf("%d%%", s.Percent),
				fmt.Sprintf("%d%%", s.Required),
				attendanceStatus(s))
		}
		return nil
	}),
}

var courseAttendCmd = &cobra.Command{
	Use:   "attend <course_id> [present|absent|excused] [day]",
	Short: "Record attendance for today (or the given day)",
	Long: `Record attendance for a course. Status defaults to present and the day
to today; 'yesterday' and YYYY-MM-DD are accepted. Recording the same day
again replaces the earlier record.`,
	Args: cobra.RangeArgs(1, 3),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		courseID, err := parseID(args[0], "course")
		if err != nil {
			return err
		}
		status := models.AttendancePresent
		if len(args) > 1 {
			status = strings.ToLower(args[1])
		}
		rawDay := ""
		if len(args) > 2 {
			rawDay = args[2]
		}
		day, err := parser.ParseDay(rawDay)
		if err != nil {
			return err
		}
		note, _ := cmd.Flags().GetString("note")

		record, err := a.Store.RecordAttendance(ctx, courseID, day, status, note)
		if err != nil {
			return err
		}
		course, err := a.Store.GetCourse(ctx, courseID)
		if err != nil {
			return err
		}

		s := stats.Attendance(*course)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s on %s. Attendance %d%% (%s)\n",
			course.Name, record.Status, record.Day, s.Percent, attendanceStatus(s))
		return nil
	}),
}

var courseUnattendCmd = &cobra.Command{
	Use:   "unattend <course_id> [day]",
	Short: "Remove the attendance record for today (or the given day)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		courseID, err := parseID(args[0], "course")
		if err != nil {
			return err
		}
		rawDay := ""
		if len(args) > 1 {
			rawDay = args[1]
		}
		day, err := parser.ParseDay(rawDay)
		if err != nil {
			return err
		}
		if err := a.Store.DeleteAttendance(ctx, courseID, day); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared attendance of course #%d on %s\n", courseID, day)
		return nil
	}),
}

var courseRmCmd = &cobra.Command{
	Use:   "rm <course_id>",
	Short: "Delete a course and its attendance records",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		courseID, err := parseID(args[0], "course")
		if err != nil {
			return err
		}
		if err := a.Store.DeleteCourse(ctx, courseID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted course #%d\n", courseID)
		return nil
	}),
}

var courseStatsCmd = &cobra.Command{
	Use:   "stats <course_id>",
	Short: "Show attendance details of a course",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *App) error {
		courseID, err := parseID(args[0], "course")
		if err != nil {
			return err
		}
		course, err := a.Store.GetCourse(ctx, courseID)
		if err != nil {
			return err
		}

		s := stats.Attendance(*course)
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "#%d %s", course.ID, course.Name)
		if course.Teacher != "" {
			fmt.Fprintf(w, " (%s)", course.Teacher)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Present: %d  Absent: %d  Excused: %d\n", s.Present, s.Absent, s.Excused)
		fmt.Fprintf(w, "  Attendance: %s %d%% (required %d%%)\n", progressBar(s.Percent, 20), s.Percent, s.Required)
		fmt.Fprintf(w, "  Status: %s\n", attendanceStatus(s))
		if s.AtRisk && s.Needed > 0 {
			fmt.Fprintf(w, "  Attend the next %d classes to get back on track\n", s.Needed)
		}

		if history, _ := cmd.Flags().GetBool("history"); history && len(course.Records) > 0 {
			fmt.Fprintln(w, "  History:")
			for _, record := range course.Records {
				line := fmt.Sprintf("    %s  %-8s", record.Day, record.Status)
				if record.Note != "" {
					line += "  " + record.Note
				}
				fmt.Fprintln(w, line)
			}
		}
		return nil
	}),
}

func attendanceStatus(s stats.AttendanceStats) string {
	switch {
	case s.AtRisk && s.Needed < 0:
		return "below required, cannot recover"
	case s.AtRisk:
		return fmt.Sprintf("at risk, attend %d more", s.Needed)
	case s.CanMiss > 0:
		return fmt.Sprintf("ok, can miss %d", s.CanMiss)
	default:
		return "ok, no absences to spare"
	}
}

func init() {
	courseAddCmd.Flags().String("teacher", "", "Teacher name")
	courseAddCmd.Flags().StringP("color", "c", "", "Hex color")
	courseAddCmd.Flags().Int("required", models.DefaultRequiredPercent, "Required attendance percentage")
	courseAttendCmd.Flags().StringP("note", "n", "", "Note for the day")
	courseStatsCmd.Flags().Bool("history", false, "List every attendance record")

	courseCmd.AddCommand(courseAddCmd)
	courseCmd.AddCommand(courseListCmd)
	courseCmd.AddCommand(courseAttendCmd)
	courseCmd.AddCommand(courseUnattendCmd)
	courseCmd.AddCommand(courseRmCmd)
	courseCmd.AddCommand(courseStatsCmd)
}
