package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/tend/internal/models"
)

var (
	dateRegex     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	relativeRegex = regexp.MustCompile(`^(\d+)\s*(hour|hours|h|day|days|d|week|weeks|w)$`)
)

// now is swapped in tests
var now = time.Now

// ParseDueDate parses various due date formats
// Supported formats:
// - today, tomorrow
// - dd/mm/yyyy (e.g., "15/12/2026")
// - yyyy-mm-dd (e.g., "2026-12-15")
// - X days (e.g., "3 days", "3d")
// - X hours (e.g., "24 hours", "24h")
// - X weeks (e.g., "2 weeks", "2w")
// Date-only forms resolve to the end of that day.
func ParseDueDate(input string) (*time.Time, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return nil, nil
	}

	switch input {
	case "today":
		due := endOfDay(now(), 0)
		return &due, nil
	case "tomorrow":
		due := endOfDay(now(), 1)
		return &due, nil
	}

	if due, err := parseDateFormat(input); err == nil {
		return due, nil
	}
	if day, err := time.ParseInLocation(models.DayLayout, input, time.Local); err == nil {
		due := endOfDay(day, 0)
		return &due, nil
	}
	if due, err := parseRelativeTime(input); err == nil {
		return due, nil
	}

	return nil, fmt.Errorf("invalid date format. Use: today, tomorrow, dd/mm/yyyy, yyyy-mm-dd, X days, X hours, or X weeks")
}

func endOfDay(t time.Time, addDays int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+addDays, 23, 59, 59, 0, t.Location())
}

// parseDateFormat parses dd/mm/yyyy format
func parseDateFormat(input string) (*time.Time, error) {
	matches := dateRegex.FindStringSubmatch(input)
	if len(matches) != 4 {
		return nil, fmt.Errorf("invalid date format")
	}

	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])

	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be between 1 and 12")
	}
	if year < 1970 || year > 2100 {
		return nil, fmt.Errorf("year must be between 1970 and 2100")
	}

	due := time.Date(year, time.Month(month), day, 23, 59, 59, 0, time.Local)

	// time.Date normalizes 31/02 into March
	if due.Day() != day || due.Month() != time.Month(month) {
		return nil, fmt.Errorf("invalid date")
	}
	return &due, nil
}

// parseRelativeTime parses relative time formats like "3 days", "24h"
func parseRelativeTime(input string) (*time.Time, error) {
	matches := relativeRegex.FindStringSubmatch(input)
	if len(matches) != 3 {
		return nil, fmt.Errorf("invalid relative time format")
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid number")
	}

	current := now()
	switch matches[2] {
	case "hour", "hours", "h":
		if amount < 1 || amount > 8760 {
			return nil, fmt.Errorf("hours must be between 1 and 8760")
		}
		due := current.Add(time.Duration(amount) * time.Hour)
		return &due, nil
	case "day", "days", "d":
		if amount < 1 || amount > 365 {
			return nil, fmt.Errorf("days must be between 1 and 365")
		}
		due := endOfDay(current, amount)
		return &due, nil
	default:
		if amount < 1 || amount > 52 {
			return nil, fmt.Errorf("weeks must be between 1 and 52")
		}
		due := endOfDay(current, amount*7)
		return &due, nil
	}
}

// FormatDueDate formats a deadline for display, relative to today
func FormatDueDate(due *time.Time) string {
	if due == nil {
		return ""
	}

	current := now()
	today := time.Date(current.Year(), current.Month(), current.Day(), 0, 0, 0, 0, current.Location())
	local := due.In(current.Location())
	dueDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, current.Location())
	daysDiff := int(dueDay.Sub(today).Hours() / 24)

	dateStr := local.Format("02/01/2006")
	switch {
	case daysDiff < 0:
		return fmt.Sprintf("⚠️ OVERDUE (%s)", dateStr)
	case daysDiff == 0:
		return fmt.Sprintf("🔥 Due today (%s)", dateStr)
	case daysDiff == 1:
		return fmt.Sprintf("📅 Due tomorrow (%s)", dateStr)
	case daysDiff <= 7:
		return fmt.Sprintf("📅 Due %s (in %d days)", dateStr, daysDiff)
	default:
		return fmt.Sprintf("📅 Due %s", dateStr)
	}
}
