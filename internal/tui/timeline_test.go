package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/balkashynov/tend/internal/config"
	"github.com/balkashynov/tend/internal/models"
)

func at(day, hour, minute int) *time.Time {
	t := time.Date(2026, 10, day, hour, minute, 0, 0, time.UTC)
	return &t
}

func TestBuildTimeline(t *testing.T) {
	work := &models.Workspace{ID: 1, Name: "Work", Color: "#10B981"}
	tasks := []models.Task{
		{ID: 1, Title: "Late report", Deadline: at(14, 23, 59)},
		{ID: 2, Title: "Old done", Deadline: at(13, 12, 0), Completed: true},
		{ID: 3, Title: "Standup", Deadline: at(17, 9, 30), Workspace: work},
		{ID: 4, Title: "Early call", Deadline: at(17, 8, 0)},
		{ID: 5, Title: "Someday"},
		{ID: 6, Title: "Far away", Deadline: at(30, 12, 0)},
	}
	courses := []models.Course{{ID: 7, Name: "Algebra", Color: "#F59E0B"}}
	records := []models.AttendanceRecord{
		{CourseID: 7, Day: "2026-10-17", Status: models.AttendanceAbsent},
		{CourseID: 7, Day: "2026-10-01", Status: models.AttendancePresent},
	}

	from := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	to := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	tl := BuildTimeline(tasks, records, courses, from, to)

	if len(tl.Days) != 4 {
		t.Fatalf("expected 4 days, got %d", len(tl.Days))
	}
	if len(tl.Overdue) != 1 || !strings.Contains(tl.Overdue[0].Label, "Late report") {
		t.Errorf("overdue = %+v", tl.Overdue)
	}

	day := tl.Days[1].Entries
	if len(day) != 3 {
		t.Fatalf("expected 3 entries on the 17th, got %+v", day)
	}
	if !day[0].Class || day[0].Label != "Algebra: absent" || day[0].Done {
		t.Errorf("class entry should come first: %+v", day[0])
	}
	if !strings.Contains(day[1].Label, "Early call") || !strings.Contains(day[2].Label, "Standup") {
		t.Errorf("deadlines should be ordered by time: %+v", day)
	}
	if day[2].Color != "#10B981" {
		t.Errorf("workspace color not carried: %+v", day[2])
	}
}

func TestRenderTimeline(t *testing.T) {
	today := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	tl := BuildTimeline(
		[]models.Task{{ID: 3, Title: "Standup", Deadline: at(17, 9, 30)}},
		nil, nil, today, today.AddDate(0, 0, 1))

	for _, mode := range []config.TimelineMode{config.TimelineDefault, config.TimelineColor} {
		out := RenderTimeline(tl, mode, today)
		for _, want := range []string{"Sat 17 Oct", "(today)", "09:30", "#3 Standup", "Sun 18 Oct"} {
			if !strings.Contains(out, want) {
				t.Errorf("%s output missing %q:\n%s", mode, want, out)
			}
		}
	}
}
