package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/tend/internal/models"
)

// TaskFilter narrows task queries. Zero values mean "don't filter".
type TaskFilter struct {
	WorkspaceID *uint
	NoWorkspace bool  // only tasks without a workspace
	Completed   *bool // nil for both
	Tag         string
	Search      string // case-insensitive match on title, description and tags
	OrderBy     string
	Limit       int
}

// allowed ORDER BY clauses, keyed by user-facing name
var taskOrders = map[string]string{
	"":         "completed ASC, deadline IS NULL, deadline ASC, priority DESC, id ASC",
	"deadline": "deadline IS NULL, deadline ASC, id ASC",
	"priority": "priority DESC, id ASC",
	"created":  "created_at DESC, id DESC",
	"id":       "id ASC",
}

// ValidTaskOrder reports whether name is a supported task ordering
func ValidTaskOrder(name string) bool {
	_, ok := taskOrders[name]
	return ok
}

// CreateTask inserts a new task and assigns its ID
func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return errors.New("task title cannot be empty")
	}
	if task.ID != 0 {
		return fmt.Errorf("task already has id #%d", task.ID)
	}
	if task.Completed && task.CompletedAt == nil {
		now := time.Now()
		task.CompletedAt = &now
	}

	// Checklist items go through the reconciliation path, not association saves
	if err := s.conn(ctx).Omit(clause.Associations).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// SaveTask overwrites every column of an existing task
func (s *Store) SaveTask(ctx context.Context, task *models.Task) error {
	if task.ID == 0 {
		return errors.New("cannot save a task without an id")
	}
	if strings.TrimSpace(task.Title) == "" {
		return errors.New("task title cannot be empty")
	}
	stampCompletion(task)

	res := s.conn(ctx).Model(task).Select("*").Omit("created_at", clause.Associations).Updates(task)
	if res.Error != nil {
		return fmt.Errorf("failed to save task #%d: %w", task.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("task #%d %w", task.ID, ErrNotFound)
	}
	return nil
}

// stampCompletion keeps CompletedAt in step with the Completed flag
func stampCompletion(task *models.Task) {
	switch {
	case task.Completed && task.CompletedAt == nil:
		now := time.Now()
		task.CompletedAt = &now
	case !task.Completed:
		task.CompletedAt = nil
	}
}

// GetTask retrieves a task by ID without its checklist
func (s *Store) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := s.conn(ctx).Preload("Workspace").First(&task, id).Error; err != nil {
		return nil, notFound(err, "task", id)
	}
	return &task, nil
}

// GetTaskWithChecklist retrieves a task with its checklist in display order
func (s *Store) GetTaskWithChecklist(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	err := s.conn(ctx).
		Preload("Workspace").
		Preload("Checklist", orderChecklist).
		First(&task, id).Error
	if err != nil {
		return nil, notFound(err, "task", id)
	}
	return &task, nil
}

// ListTasks retrieves tasks with their checklists, narrowed by filter
func (s *Store) ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	order, ok := taskOrders[filter.OrderBy]
	if !ok {
		return nil, fmt.Errorf("unknown task order %q", filter.OrderBy)
	}

	q := s.conn(ctx).Model(&models.Task{}).
		Preload("Workspace").
		Preload("Checklist", orderChecklist)

	if filter.WorkspaceID != nil {
		q = q.Where("workspace_id = ?", *filter.WorkspaceID)
	} else if filter.NoWorkspace {
		q = q.Where("workspace_id IS NULL")
	}
	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		// Tags are stored comma-separated; pad both sides so "go" doesn't match "golang"
		q = q.Where("(',' || REPLACE(tags, ' ', '') || ',') LIKE ?", "%,"+tag+",%")
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?)", like, like, like)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var tasks []models.Task
	if err := q.Order(order).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// SetTaskCompleted flips the completion flag and returns the updated task
func (s *Store) SetTaskCompleted(ctx context.Context, id uint, completed bool) (*models.Task, error) {
	var completedAt *time.Time
	if completed {
		now := time.Now()
		completedAt = &now
	}
	return s.updateTask(ctx, id, map[string]interface{}{
		"completed":    completed,
		"completed_at": completedAt,
	})
}

// SetTaskPinned flips the pin-as-notification flag and returns the updated task
func (s *Store) SetTaskPinned(ctx context.Context, id uint, pinned bool) (*models.Task, error) {
	return s.updateTask(ctx, id, map[string]interface{}{
		"pin_notification": pinned,
	})
}

func (s *Store) updateTask(ctx context.Context, id uint, fields map[string]interface{}) (*models.Task, error) {
	res := s.conn(ctx).Model(&models.Task{ID: id}).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update task #%d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("task #%d %w", id, ErrNotFound)
	}
	return s.GetTask(ctx, id)
}

// DeleteTask removes a task and its checklist in one transaction
func (s *Store) DeleteTask(ctx context.Context, id uint) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.ChecklistItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete checklist of task #%d: %w", id, err)
		}
		res := tx.Delete(&models.Task{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete task #%d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("task #%d %w", id, ErrNotFound)
		}
		return nil
	})
}

// WatchTasks streams the filtered task list, re-emitting after every change
// to tasks, checklists or workspaces.
func (s *Store) WatchTasks(ctx context.Context, filter TaskFilter) <-chan []models.Task {
	return watch(ctx, s, func(ctx context.Context) ([]models.Task, error) {
		return s.ListTasks(ctx, filter)
	}, TableTasks, TableChecklistItems, TableWorkspaces)
}

// WatchTask streams a single task with its checklist. Nothing is emitted
// while the task is missing.
func (s *Store) WatchTask(ctx context.Context, id uint) <-chan models.Task {
	return watch(ctx, s, func(ctx context.Context) (models.Task, error) {
		task, err := s.GetTaskWithChecklist(ctx, id)
		if err != nil {
			return models.Task{}, err
		}
		return *task, nil
	}, TableTasks, TableChecklistItems)
}
