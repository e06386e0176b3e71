package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/balkashynov/tend/internal/models"
)

var colorRegex = regexp.MustCompile(`^#?([0-9a-fA-F]{6})$`)

// ParseColor normalizes a hex color to "#RRGGBB"
func ParseColor(input string) (string, error) {
	m := colorRegex.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return "", fmt.Errorf("invalid color %q. Use a hex value like #7C3AED", input)
	}
	return "#" + strings.ToUpper(m[1]), nil
}

// ParseDay resolves today, yesterday or a YYYY-MM-DD date to a day key.
// Days after today are rejected.
func ParseDay(input string) (string, error) {
	current := now()
	today := time.Date(current.Year(), current.Month(), current.Day(), 0, 0, 0, 0, current.Location())

	var day time.Time
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "today":
		day = today
	case "yesterday":
		day = today.AddDate(0, 0, -1)
	default:
		parsed, err := time.ParseInLocation(models.DayLayout, strings.TrimSpace(input), current.Location())
		if err != nil {
			return "", fmt.Errorf("invalid day %q. Use: today, yesterday, or YYYY-MM-DD", input)
		}
		day = parsed
	}

	if day.After(today) {
		return "", fmt.Errorf("day %s is in the future", day.Format(models.DayLayout))
	}
	return day.Format(models.DayLayout), nil
}
