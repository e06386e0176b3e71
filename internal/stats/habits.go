package stats

import (
	"sort"
	"time"

	"github.com/balkashynov/tend/internal/models"
)

// HabitStats summarizes a habit's history
type HabitStats struct {
	CurrentStreak int
	LongestStreak int
	DoneInWindow  int
	Window        int
	Rate          int // percent of days done within Window
	LastDone      string
}

// Day formats t as a storage day string in t's own location
func Day(t time.Time) string {
	return t.Format(models.DayLayout)
}

// Habit computes streaks and the completion rate over the last window days
// (today included). The current streak counts back from today, or from
// yesterday when today has not been logged as done yet.
func Habit(history []models.HabitHistory, today time.Time, window int) HabitStats {
	done := make(map[string]bool)
	var days []time.Time
	for _, entry := range history {
		if !entry.Done || done[entry.Day] {
			continue
		}
		d, err := time.Parse(models.DayLayout, entry.Day)
		if err != nil {
			continue
		}
		done[entry.Day] = true
		days = append(days, d)
	}

	stats := HabitStats{Window: window}
	start := dateOnly(today)

	// Current streak, with a one-day grace for today
	cursor := start
	if !done[Day(cursor)] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	for done[Day(cursor)] {
		stats.CurrentStreak++
		cursor = cursor.AddDate(0, 0, -1)
	}

	// Longest streak over sorted done days
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	run := 0
	for i, d := range days {
		if i > 0 && days[i-1].AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		if run > stats.LongestStreak {
			stats.LongestStreak = run
		}
	}
	if len(days) > 0 {
		stats.LastDone = Day(days[len(days)-1])
	}

	if window > 0 {
		for i := 0; i < window; i++ {
			if done[Day(start.AddDate(0, 0, -i))] {
				stats.DoneInWindow++
			}
		}
		stats.Rate = Percent(stats.DoneInWindow, window)
	}

	return stats
}

// dateOnly drops the clock part, keeping the calendar day as seen in t's location
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
