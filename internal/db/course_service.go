package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/tend/internal/models"
)

// CreateCourse inserts a new course
func (s *Store) CreateCourse(ctx context.Context, course *models.Course) error {
	course.Name = strings.TrimSpace(course.Name)
	if course.Name == "" {
		return errors.New("course name cannot be empty")
	}
	if course.RequiredPercent <= 0 || course.RequiredPercent > 100 {
		course.RequiredPercent = models.DefaultRequiredPercent
	}
	if err := s.conn(ctx).Omit(clause.Associations).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

// GetCourse retrieves a course with its attendance records, oldest first
func (s *Store) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := s.conn(ctx).
		Preload("Records", func(db *gorm.DB) *gorm.DB { return db.Order("day ASC") }).
		First(&course, id).Error
	if err != nil {
		return nil, notFound(err, "course", id)
	}
	return &course, nil
}

// ListCourses returns every course with its records, ordered by name
func (s *Store) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := s.conn(ctx).
		Preload("Records", func(db *gorm.DB) *gorm.DB { return db.Order("day ASC") }).
		Order("name ASC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// DeleteCourse removes a course and its attendance records
func (s *Store) DeleteCourse(ctx context.Context, id uint) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&models.AttendanceRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete attendance of course #%d: %w", id, err)
		}
		res := tx.Delete(&models.Course{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("course #%d %w", id, ErrNotFound)
		}
		return nil
	})
}

// RecordAttendance stores the attendance status for a course on day
// (YYYY-MM-DD), replacing any earlier record for that day.
func (s *Store) RecordAttendance(ctx context.Context, courseID uint, day, status, note string) (*models.AttendanceRecord, error) {
	if !models.ValidAttendanceStatus(status) {
		return nil, fmt.Errorf("invalid attendance status %q. Use: present, absent, excused", status)
	}
	if _, err := s.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}

	record := models.AttendanceRecord{CourseID: courseID, Day: day, Status: status, Note: note}
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "note"}),
	}).Create(&record).Error
	if err != nil {
		return nil, fmt.Errorf("failed to record attendance: %w", err)
	}

	if err := s.conn(ctx).Where("course_id = ? AND day = ?", courseID, day).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteAttendance removes the record for day, if any
func (s *Store) DeleteAttendance(ctx context.Context, courseID uint, day string) error {
	return s.conn(ctx).Where("course_id = ? AND day = ?", courseID, day).Delete(&models.AttendanceRecord{}).Error
}

// AttendanceInRange returns records for every course between two days inclusive
func (s *Store) AttendanceInRange(ctx context.Context, fromDay, toDay string) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := s.conn(ctx).
		Where("day >= ? AND day <= ?", fromDay, toDay).
		Order("day ASC, course_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
