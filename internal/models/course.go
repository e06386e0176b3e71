package models

import "time"

// Attendance statuses
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceExcused = "excused"
)

// DefaultRequiredPercent is the attendance threshold used when none is given
const DefaultRequiredPercent = 75

// Course is a class whose attendance is tracked
type Course struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name            string `gorm:"not null" json:"name"`
	Teacher         string `json:"teacher"`
	Color           string `json:"color"`
	RequiredPercent int    `json:"required_percent"`

	Records []AttendanceRecord `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE;" json:"records,omitempty"`
}

// AttendanceRecord is one lecture day for a course
type AttendanceRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CourseID uint   `gorm:"not null;uniqueIndex:idx_course_day" json:"course_id"`
	Day      string `gorm:"not null;uniqueIndex:idx_course_day" json:"day"` // YYYY-MM-DD
	Status   string `gorm:"not null;default:present" json:"status"`         // present, absent, excused
	Note     string `json:"note"`
}

// ValidAttendanceStatus reports whether s is a known attendance status
func ValidAttendanceStatus(s string) bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceExcused:
		return true
	}
	return false
}
