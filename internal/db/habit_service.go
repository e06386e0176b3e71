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

// CreateHabit inserts a new habit
func (s *Store) CreateHabit(ctx context.Context, habit *models.Habit) error {
	habit.Name = strings.TrimSpace(habit.Name)
	if habit.Name == "" {
		return errors.New("habit name cannot be empty")
	}
	if err := s.conn(ctx).Omit(clause.Associations).Create(habit).Error; err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}
	return nil
}

// GetHabit retrieves a habit with its full history, oldest day first
func (s *Store) GetHabit(ctx context.Context, id uint) (*models.Habit, error) {
	var habit models.Habit
	err := s.conn(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("day ASC") }).
		First(&habit, id).Error
	if err != nil {
		return nil, notFound(err, "habit", id)
	}
	return &habit, nil
}

// ListHabits returns habits with their history, ordered by name
func (s *Store) ListHabits(ctx context.Context, includeArchived bool) ([]models.Habit, error) {
	q := s.conn(ctx).Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("day ASC") })
	if !includeArchived {
		q = q.Where("archived = ?", false)
	}
	var habits []models.Habit
	if err := q.Order("name ASC").Find(&habits).Error; err != nil {
		return nil, err
	}
	return habits, nil
}

// SetHabitArchived archives or restores a habit
func (s *Store) SetHabitArchived(ctx context.Context, id uint, archived bool) error {
	res := s.conn(ctx).Model(&models.Habit{ID: id}).Update("archived", archived)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("habit #%d %w", id, ErrNotFound)
	}
	return nil
}

// DeleteHabit removes a habit and its history
func (s *Store) DeleteHabit(ctx context.Context, id uint) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ?", id).Delete(&models.HabitHistory{}).Error; err != nil {
			return fmt.Errorf("failed to delete history of habit #%d: %w", id, err)
		}
		res := tx.Delete(&models.Habit{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("habit #%d %w", id, ErrNotFound)
		}
		return nil
	})
}

// LogHabit records whether the habit was done on day (YYYY-MM-DD), replacing
// any earlier entry for that day.
func (s *Store) LogHabit(ctx context.Context, habitID uint, day string, done bool) (*models.HabitHistory, error) {
	if _, err := s.GetHabit(ctx, habitID); err != nil {
		return nil, err
	}

	entry := models.HabitHistory{HabitID: habitID, Day: day, Done: done}
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"done"}),
	}).Create(&entry).Error
	if err != nil {
		return nil, fmt.Errorf("failed to log habit #%d: %w", habitID, err)
	}

	// Re-read so the ID is right when the upsert hit an existing row
	if err := s.conn(ctx).Where("habit_id = ? AND day = ?", habitID, day).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// UnlogHabit removes the entry for day, if any
func (s *Store) UnlogHabit(ctx context.Context, habitID uint, day string) error {
	return s.conn(ctx).Where("habit_id = ? AND day = ?", habitID, day).Delete(&models.HabitHistory{}).Error
}

// WatchHabits streams habits with their history
func (s *Store) WatchHabits(ctx context.Context, includeArchived bool) <-chan []models.Habit {
	return watch(ctx, s, func(ctx context.Context) ([]models.Habit, error) {
		return s.ListHabits(ctx, includeArchived)
	}, TableHabits, TableHabitHistories)
}
