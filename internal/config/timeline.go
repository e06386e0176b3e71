package config

import (
	"fmt"
	"strings"
)

// TimelineMode selects how the timeline view colors tasks
type TimelineMode string

const (
	// TimelineDefault renders tasks in the theme colors
	TimelineDefault TimelineMode = "DEFAULT"
	// TimelineColor renders each task in its workspace color
	TimelineColor TimelineMode = "COLOR"
)

// ParseTimelineMode accepts DEFAULT or COLOR in any case
func ParseTimelineMode(s string) (TimelineMode, error) {
	switch TimelineMode(strings.ToUpper(strings.TrimSpace(s))) {
	case TimelineDefault:
		return TimelineDefault, nil
	case TimelineColor:
		return TimelineColor, nil
	}
	return "", fmt.Errorf("invalid timeline mode %q. Use: DEFAULT or COLOR", s)
}

// TimelineMode returns the stored mode. Unknown stored values read as DEFAULT.
func (m *Manager) TimelineMode() TimelineMode {
	m.mu.Lock()
	raw := m.v.GetString(KeyTimelineMode)
	m.mu.Unlock()

	mode, err := ParseTimelineMode(raw)
	if err != nil {
		return TimelineDefault
	}
	return mode
}

// SetTimelineMode persists the timeline mode
func (m *Manager) SetTimelineMode(mode TimelineMode) error {
	if _, err := ParseTimelineMode(string(mode)); err != nil {
		return err
	}
	return m.Set(KeyTimelineMode, string(mode))
}
