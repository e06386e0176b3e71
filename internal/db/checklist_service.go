package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/balkashynov/tend/internal/checklist"
	"github.com/balkashynov/tend/internal/models"
)

func orderChecklist(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

// ChecklistItems returns the persisted checklist of a task in display order
func (s *Store) ChecklistItems(ctx context.Context, taskID uint) ([]models.ChecklistItem, error) {
	var items []models.ChecklistItem
	err := orderChecklist(s.conn(ctx).Where("task_id = ?", taskID)).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load checklist of task #%d: %w", taskID, err)
	}
	return items, nil
}

// GetChecklistItem retrieves a single checklist item
func (s *Store) GetChecklistItem(ctx context.Context, id uint) (*models.ChecklistItem, error) {
	var item models.ChecklistItem
	if err := s.conn(ctx).First(&item, id).Error; err != nil {
		return nil, notFound(err, "checklist item", id)
	}
	return &item, nil
}

// ApplyChecklistPlan writes a reconciliation plan in one transaction:
// inserts, then updates, then deletes. Updates and deletes are scoped to the
// plan's task; an update that matches no item of the task fails with
// ErrNotFound and nothing is written. It returns the inserted items with
// their new IDs.
func (s *Store) ApplyChecklistPlan(ctx context.Context, plan checklist.Plan) ([]models.ChecklistItem, error) {
	inserted := make([]models.ChecklistItem, len(plan.Inserts))
	copy(inserted, plan.Inserts)

	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if len(inserted) > 0 {
			if err := tx.Create(&inserted).Error; err != nil {
				return fmt.Errorf("failed to insert checklist items: %w", err)
			}
		}

		for _, item := range plan.Updates {
			res := tx.Model(&models.ChecklistItem{}).
				Where("id = ? AND task_id = ?", item.ID, plan.TaskID).
				Updates(map[string]interface{}{
					"text":      item.Text,
					"completed": item.Completed,
					"position":  item.Position,
				})
			if res.Error != nil {
				return fmt.Errorf("failed to update checklist item #%d: %w", item.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("checklist item #%d on task #%d %w", item.ID, plan.TaskID, ErrNotFound)
			}
		}

		if len(plan.Deletes) > 0 {
			err := tx.Where("task_id = ? AND id IN ?", plan.TaskID, plan.Deletes).
				Delete(&models.ChecklistItem{}).Error
			if err != nil {
				return fmt.Errorf("failed to delete checklist items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// SetChecklistItemCompleted flips one item's completion flag and returns it
func (s *Store) SetChecklistItemCompleted(ctx context.Context, id uint, completed bool) (*models.ChecklistItem, error) {
	res := s.conn(ctx).Model(&models.ChecklistItem{}).Where("id = ?", id).Update("completed", completed)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update checklist item #%d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("checklist item #%d %w", id, ErrNotFound)
	}
	return s.GetChecklistItem(ctx, id)
}

// DeleteChecklist removes every checklist item of a task
func (s *Store) DeleteChecklist(ctx context.Context, taskID uint) error {
	if err := s.conn(ctx).Where("task_id = ?", taskID).Delete(&models.ChecklistItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear checklist of task #%d: %w", taskID, err)
	}
	return nil
}

// WatchChecklist streams a task's checklist, re-emitting after every change to it
func (s *Store) WatchChecklist(ctx context.Context, taskID uint) <-chan []models.ChecklistItem {
	return watch(ctx, s, func(ctx context.Context) ([]models.ChecklistItem, error) {
		return s.ChecklistItems(ctx, taskID)
	}, TableChecklistItems)
}
