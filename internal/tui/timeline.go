package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/tend/internal/config"
	"github.com/balkashynov/tend/internal/models"
)

// TimelineEntry is one line on the timeline: a task deadline or a class
type TimelineEntry struct {
	At    time.Time
	Label string
	Color string // workspace or course color, may be empty
	Done  bool
	Class bool
}

// TimelineDay groups the entries of one calendar day
type TimelineDay struct {
	Day     time.Time
	Entries []TimelineEntry
}

// Timeline is the view between two days, plus open tasks already overdue
type Timeline struct {
	Overdue []TimelineEntry
	Days    []TimelineDay
}

// BuildTimeline places task deadlines and attendance records on the days
// from..to (inclusive, in from's location). Open tasks due before from are
// listed as overdue; completed ones before from are dropped.
func BuildTimeline(tasks []models.Task, records []models.AttendanceRecord, courses []models.Course, from, to time.Time) Timeline {
	loc := from.Location()
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc)

	var tl Timeline
	index := make(map[string]int)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		index[d.Format(models.DayLayout)] = len(tl.Days)
		tl.Days = append(tl.Days, TimelineDay{Day: d})
	}

	for _, task := range tasks {
		if task.Deadline == nil {
			continue
		}
		due := task.Deadline.In(loc)
		entry := TimelineEntry{At: due, Label: fmt.Sprintf("#%d %s", task.ID, task.Title), Done: task.Completed}
		if task.Workspace != nil {
			entry.Color = task.Workspace.Color
		}
		if due.Before(start) {
			if !task.Completed {
				tl.Overdue = append(tl.Overdue, entry)
			}
			continue
		}
		if i, ok := index[due.Format(models.DayLayout)]; ok {
			tl.Days[i].Entries = append(tl.Days[i].Entries, entry)
		}
	}

	byID := make(map[uint]models.Course, len(courses))
	for _, course := range courses {
		byID[course.ID] = course
	}
	for _, record := range records {
		i, ok := index[record.Day]
		if !ok {
			continue
		}
		course := byID[record.CourseID]
		name := course.Name
		if name == "" {
			name = fmt.Sprintf("course #%d", record.CourseID)
		}
		tl.Days[i].Entries = append(tl.Days[i].Entries, TimelineEntry{
			At:    tl.Days[i].Day,
			Label: fmt.Sprintf("%s: %s", name, record.Status),
			Color: course.Color,
			Done:  record.Status != models.AttendanceAbsent,
			Class: true,
		})
	}

	// Classes first, then deadlines by time
	for i := range tl.Days {
		entries := tl.Days[i].Entries
		sort.SliceStable(entries, func(a, b int) bool {
			if entries[a].Class != entries[b].Class {
				return entries[a].Class
			}
			return entries[a].At.Before(entries[b].At)
		})
	}
	sort.SliceStable(tl.Overdue, func(a, b int) bool { return tl.Overdue[a].At.Before(tl.Overdue[b].At) })
	return tl
}

// RenderTimeline draws the timeline. In COLOR mode entries use their
// workspace or course color; in DEFAULT mode they use the theme colors.
func RenderTimeline(tl Timeline, mode config.TimelineMode, today time.Time) string {
	var b strings.Builder
	todayKey := today.Format(models.DayLayout)

	if len(tl.Overdue) > 0 {
		b.WriteString(fg(ColorError).Bold(true).Render("Overdue"))
		b.WriteString("\n")
		for _, entry := range tl.Overdue {
			b.WriteString(renderEntry(entry, mode, ColorError))
		}
		b.WriteString("\n")
	}

	for _, day := range tl.Days {
		heading := day.Day.Format("Mon 02 Jan")
		headColor := ColorAccentBright
		if day.Day.Format(models.DayLayout) == todayKey {
			heading += "  (today)"
			headColor = ColorAccentMain
		}
		b.WriteString(fg(headColor).Bold(true).Render(heading))
		b.WriteString("\n")

		if len(day.Entries) == 0 {
			b.WriteString(fg(ColorDisabledText).Render("  ·"))
			b.WriteString("\n")
			continue
		}
		for _, entry := range day.Entries {
			b.WriteString(renderEntry(entry, mode, ColorPrimaryText))
		}
	}
	return b.String()
}

func renderEntry(entry TimelineEntry, mode config.TimelineMode, themeColor string) string {
	color := themeColor
	if mode == config.TimelineColor && entry.Color != "" {
		color = entry.Color
	}

	mark := "○"
	switch {
	case entry.Class:
		mark = "▪"
	case entry.Done:
		mark = "✓"
	}

	when := "     "
	if !entry.Class && !(entry.At.Hour() == 23 && entry.At.Minute() == 59) {
		when = entry.At.Format("15:04")
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	if entry.Done && !entry.Class {
		style = style.Foreground(lipgloss.Color(ColorDisabledText)).Strikethrough(true)
	}
	return fmt.Sprintf("  %s %s %s\n", fg(ColorSecondaryText).Render(when), mark, style.Render(entry.Label))
}
