package models

import "time"

// DayLayout is the storage format for calendar days (habit history, attendance)
const DayLayout = "2006-01-02"

// Habit represents a recurring practice to track
type Habit struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Archived    bool   `gorm:"default:false" json:"archived"`

	History []HabitHistory `gorm:"foreignKey:HabitID;constraint:OnDelete:CASCADE;" json:"history,omitempty"`
}

// HabitHistory records whether a habit was done on a given day
type HabitHistory struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	HabitID uint   `gorm:"not null;uniqueIndex:idx_habit_day" json:"habit_id"`
	Day     string `gorm:"not null;uniqueIndex:idx_habit_day" json:"day"` // YYYY-MM-DD
	Done    bool   `json:"done"`
}
