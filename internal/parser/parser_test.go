package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/balkashynov/tend/internal/models"
)

func fixNow(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestParseTitle(t *testing.T) {
	fixNow(t, time.Date(2026, 10, 17, 9, 0, 0, 0, time.Local))

	got := ParseTitle("Write report #work,urgent @office +high due:tomorrow !pin #q4")
	if got.Title != "Write report" {
		t.Errorf("Title = %q", got.Title)
	}
	if strings.Join(got.Tags, ",") != "work,urgent,q4" {
		t.Errorf("Tags = %v", got.Tags)
	}
	if got.Workspace != "office" {
		t.Errorf("Workspace = %q", got.Workspace)
	}
	if got.Priority != models.PriorityHigh {
		t.Errorf("Priority = %d", got.Priority)
	}
	if !got.Pin {
		t.Error("Pin should be set")
	}
	want := time.Date(2026, 10, 18, 23, 59, 59, 0, time.Local)
	if got.Deadline == nil || !got.Deadline.Equal(want) {
		t.Errorf("Deadline = %v, want %v", got.Deadline, want)
	}
	if len(got.Errors) != 0 {
		t.Errorf("Errors = %v", got.Errors)
	}
}

func TestParseTitleKeepsEmbeddedSymbols(t *testing.T) {
	got := ParseTitle("Email bob@example.com about C#")
	if got.Title != "Email bob@example.com about C#" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Workspace != "" || len(got.Tags) != 0 {
		t.Errorf("unexpected metadata: %+v", got)
	}
}

func TestParseTitleErrors(t *testing.T) {
	got := ParseTitle("Broken +urgent due:someday")
	if got.Title != "Broken" {
		t.Errorf("Title = %q", got.Title)
	}
	if len(got.Errors) != 2 {
		t.Errorf("expected 2 errors, got %v", got.Errors)
	}
	if got.Deadline != nil || got.Priority != models.PriorityNone {
		t.Errorf("invalid values should not be applied: %+v", got)
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"", models.PriorityNone, true},
		{"none", models.PriorityNone, true},
		{"1", models.PriorityLow, true},
		{"LOW", models.PriorityLow, true},
		{"med", models.PriorityMedium, true},
		{"2", models.PriorityMedium, true},
		{" high ", models.PriorityHigh, true},
		{"urgent", 0, false},
		{"4", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePriority(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePriority(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseDueDate(t *testing.T) {
	base := time.Date(2026, 10, 17, 9, 30, 0, 0, time.Local)
	fixNow(t, base)

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"today", time.Date(2026, 10, 17, 23, 59, 59, 0, time.Local), false},
		{"Tomorrow", time.Date(2026, 10, 18, 23, 59, 59, 0, time.Local), false},
		{"15/12/2026", time.Date(2026, 12, 15, 23, 59, 59, 0, time.Local), false},
		{"2026-12-15", time.Date(2026, 12, 15, 23, 59, 59, 0, time.Local), false},
		{"3 days", time.Date(2026, 10, 20, 23, 59, 59, 0, time.Local), false},
		{"3d", time.Date(2026, 10, 20, 23, 59, 59, 0, time.Local), false},
		{"2 weeks", time.Date(2026, 10, 31, 23, 59, 59, 0, time.Local), false},
		{"5h", base.Add(5 * time.Hour), false},
		{"31/02/2026", time.Time{}, true},
		{"0 days", time.Time{}, true},
		{"someday", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDueDate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDueDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if got, err := ParseDueDate("  "); got != nil || err != nil {
		t.Errorf("blank input = %v, %v; want nil, nil", got, err)
	}
}

func TestFormatDueDate(t *testing.T) {
	fixNow(t, time.Date(2026, 10, 17, 12, 0, 0, 0, time.Local))

	at := func(day int) *time.Time {
		d := time.Date(2026, 10, day, 23, 59, 59, 0, time.Local)
		return &d
	}
	tests := []struct {
		due  *time.Time
		want string
	}{
		{nil, ""},
		{at(16), "OVERDUE"},
		{at(17), "Due today"},
		{at(18), "Due tomorrow"},
		{at(20), "in 3 days"},
		{at(30), "Due 30/10/2026"},
	}
	for _, tt := range tests {
		if got := FormatDueDate(tt.due); !strings.Contains(got, tt.want) {
			t.Errorf("FormatDueDate(%v) = %q, want it to contain %q", tt.due, got, tt.want)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"#7c3aed", "#7C3AED", false},
		{"10B981", "#10B981", false},
		{"#fff", "", true},
		{"purple", "", true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseColor(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestParseDay(t *testing.T) {
	fixNow(t, time.Date(2026, 10, 1, 8, 0, 0, 0, time.Local))

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "2026-10-01", false},
		{"today", "2026-10-01", false},
		{"yesterday", "2026-09-30", false},
		{"2026-09-15", "2026-09-15", false},
		{"2026-10-02", "", true},
		{"15/09/2026", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDay(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDay(%q) = %q, %v", tt.in, got, err)
		}
	}
}
