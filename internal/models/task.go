package models

import (
	"strings"
	"time"
)

// Priority levels stored on a task
const (
	PriorityNone   = 0
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

// PriorityNames maps a stored priority to its display name
var PriorityNames = []string{"", "low", "medium", "high"}

// Task represents a todo item, optionally filed under a workspace
type Task struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title           string     `gorm:"not null" json:"title"`
	Description     string     `json:"description"`
	Deadline        *time.Time `json:"deadline"`
	Completed       bool       `gorm:"default:false;index" json:"completed"`
	CompletedAt     *time.Time `json:"completed_at"`
	WorkspaceID     *uint      `gorm:"index" json:"workspace_id"`
	Priority        int        `gorm:"default:0" json:"priority"` // 0=no priority, 1=low, 2=medium, 3=high
	Tags            string     `json:"tags"`                      // comma-separated
	PinNotification bool       `gorm:"default:false" json:"pin_notification"`

	// Relationships
	Workspace *Workspace      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"workspace,omitempty"`
	Checklist []ChecklistItem `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE;" json:"checklist,omitempty"`
}

// TagList splits the comma-separated tag string into trimmed, non-empty tags
func (t Task) TagList() []string {
	var tags []string
	for _, tag := range strings.Split(t.Tags, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// PriorityName returns the display name of the task priority
func (t Task) PriorityName() string {
	if t.Priority < 0 || t.Priority >= len(PriorityNames) {
		return ""
	}
	return PriorityNames[t.Priority]
}

// WantsNotification reports whether the task should currently have a pinned notification
func (t Task) WantsNotification() bool {
	return t.PinNotification && !t.Completed
}

// JoinTags builds the stored tag string from a list of tags
func JoinTags(tags []string) string {
	var cleaned []string
	seen := make(map[string]bool)
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		cleaned = append(cleaned, tag)
	}
	return strings.Join(cleaned, ",")
}
