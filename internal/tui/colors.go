package tui

import "github.com/charmbracelet/lipgloss"

// Color constants for the tend TUI theme
const (
	ColorBorder = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Titles, user input
	ColorSecondaryText = "#B1B8C7" // Labels, open tasks
	ColorDisabledText  = "#6D7383" // Completed or empty values
	ColorHelpText      = "240"     // Dark grey for help text

	// Accent Colors (Purple theme)
	ColorAccentMain   = "#7C3AED" // Logo, active borders
	ColorAccentBright = "#A78BFA" // Highlights, headers

	// State Colors
	ColorError   = "#EF4444" // Overdue, high priority, errors
	ColorSuccess = "#22C55E" // Done
	ColorWarning = "#F59E0B" // Due soon, medium priority
)

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// priorityColor maps a task priority to its theme color
func priorityColor(priority int) string {
	switch priority {
	case 3:
		return ColorError
	case 2:
		return ColorWarning
	default:
		return ColorSecondaryText
	}
}
