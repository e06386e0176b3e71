package stats

import "github.com/balkashynov/tend/internal/models"

// AttendanceStats summarizes a course's attendance. Excused days count
// toward neither side.
type AttendanceStats struct {
	Present  int
	Absent   int
	Excused  int
	Percent  int
	Required int
	AtRisk   bool
	// CanMiss is how many more classes can be missed while staying at or above Required
	CanMiss int
	// Needed is how many consecutive attended classes bring the course back to
	// Required; -1 when that can never happen (Required is 100 and a class was missed)
	Needed int
}

// Attendance computes the attendance summary of a course
func Attendance(course models.Course) AttendanceStats {
	required := course.RequiredPercent
	if required <= 0 || required > 100 {
		required = models.DefaultRequiredPercent
	}

	s := AttendanceStats{Required: required}
	for _, record := range course.Records {
		switch record.Status {
		case models.AttendancePresent:
			s.Present++
		case models.AttendanceAbsent:
			s.Absent++
		case models.AttendanceExcused:
			s.Excused++
		}
	}

	held := s.Present + s.Absent
	if held == 0 {
		// Nothing held yet: full marks, nothing at risk
		s.Percent = 100
		s.CanMiss = 0
		return s
	}

	s.Percent = Percent(s.Present, held)
	// Compare exactly rather than on the rounded percentage
	s.AtRisk = s.Present*100 < required*held

	if s.AtRisk {
		if required == 100 {
			s.Needed = -1
		} else {
			// smallest n with (present+n)*100 >= required*(held+n)
			gap := required*held - s.Present*100
			step := 100 - required
			s.Needed = (gap + step - 1) / step
		}
		return s
	}

	// largest k with present*100 >= required*(held+k)
	s.CanMiss = s.Present*100/required - held
	if s.CanMiss < 0 {
		s.CanMiss = 0
	}
	return s
}
