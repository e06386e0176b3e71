// Package tasks coordinates task edits: checklist reconciliation,
// auto-completion and pinned notifications.
package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/balkashynov/tend/internal/checklist"
	"github.com/balkashynov/tend/internal/db"
	"github.com/balkashynov/tend/internal/models"
	"github.com/balkashynov/tend/internal/notify"
)

// Repository is the slice of the store the service needs
type Repository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	SaveTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id uint) (*models.Task, error)
	GetTaskWithChecklist(ctx context.Context, id uint) (*models.Task, error)
	ListTasks(ctx context.Context, filter db.TaskFilter) ([]models.Task, error)
	SetTaskCompleted(ctx context.Context, id uint, completed bool) (*models.Task, error)
	SetTaskPinned(ctx context.Context, id uint, pinned bool) (*models.Task, error)
	DeleteTask(ctx context.Context, id uint) error

	ChecklistItems(ctx context.Context, taskID uint) ([]models.ChecklistItem, error)
	ApplyChecklistPlan(ctx context.Context, plan checklist.Plan) ([]models.ChecklistItem, error)
	SetChecklistItemCompleted(ctx context.Context, id uint, completed bool) (*models.ChecklistItem, error)

	WatchTasks(ctx context.Context, filter db.TaskFilter) <-chan []models.Task
}

// Service applies task mutations and their side effects
type Service struct {
	repo   Repository
	notify *notify.Coordinator
	log    *log.Logger

	wg sync.WaitGroup
}

// NewService wires the service to its store and notification coordinator
func NewService(repo Repository, coordinator *notify.Coordinator, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		repo:   repo,
		notify: coordinator,
		log:    logger.WithPrefix("tasks"),
	}
}

// SaveTaskWithChecklist creates the task (ID 0) or overwrites it, then
// reconciles its checklist against items. Items with ID 0 are inserted,
// the rest are overwritten, and persisted items missing from items are
// deleted. It returns the stored task with its checklist.
func (s *Service) SaveTaskWithChecklist(ctx context.Context, task *models.Task, items []models.ChecklistItem) (*models.Task, error) {
	if err := s.upsert(ctx, task); err != nil {
		return nil, err
	}

	plan, err := s.reconcile(ctx, task.ID, items)
	if err != nil {
		return nil, err
	}

	s.notify.Sync(*task)

	if plan.ChecksAny() {
		if _, err := s.evaluateAutoCompletion(ctx, task.ID); err != nil {
			return nil, err
		}
	}

	return s.repo.GetTaskWithChecklist(ctx, task.ID)
}

// UpdateTask overwrites the task's own fields and leaves its checklist alone
func (s *Service) UpdateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	if err := s.upsert(ctx, task); err != nil {
		return nil, err
	}
	s.notify.Sync(*task)
	return s.repo.GetTaskWithChecklist(ctx, task.ID)
}

func (s *Service) upsert(ctx context.Context, task *models.Task) error {
	if task.ID == 0 {
		if err := s.repo.CreateTask(ctx, task); err != nil {
			return err
		}
		s.log.Debug("task created", "task", task.ID)
		return nil
	}
	return s.repo.SaveTask(ctx, task)
}

// reconcile diffs items against the stored checklist and applies the result
func (s *Service) reconcile(ctx context.Context, taskID uint, items []models.ChecklistItem) (checklist.Plan, error) {
	persisted, err := s.repo.ChecklistItems(ctx, taskID)
	if err != nil {
		return checklist.Plan{}, err
	}

	plan := checklist.Reconcile(taskID, persisted, items)
	if plan.Empty() {
		return plan, nil
	}
	if _, err := s.repo.ApplyChecklistPlan(ctx, plan); err != nil {
		return checklist.Plan{}, err
	}

	s.log.Debug("checklist reconciled", "task", taskID,
		"inserted", len(plan.Inserts), "updated", len(plan.Updates), "deleted", len(plan.Deletes))
	return plan, nil
}

// SetChecklistItemCompleted checks or unchecks one item. Checking the last
// open item completes the task. Unchecking never reopens a completed task.
func (s *Service) SetChecklistItemCompleted(ctx context.Context, itemID uint, completed bool) (*models.ChecklistItem, error) {
	item, err := s.repo.SetChecklistItemCompleted(ctx, itemID, completed)
	if err != nil {
		return nil, err
	}
	if completed {
		if _, err := s.evaluateAutoCompletion(ctx, item.TaskID); err != nil {
			return item, err
		}
	}
	return item, nil
}

// evaluateAutoCompletion marks the task completed when its checklist is
// non-empty and fully checked. A failed checklist read counts as no items.
func (s *Service) evaluateAutoCompletion(ctx context.Context, taskID uint) (bool, error) {
	items, err := s.repo.ChecklistItems(ctx, taskID)
	if err != nil {
		s.log.Debug("checklist unavailable, skipping auto-completion", "task", taskID, "err", err)
		return false, nil
	}
	if !checklist.AllCompleted(items) {
		return false, nil
	}

	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return false, err
	}
	if task.Completed {
		return false, nil
	}

	if _, err := s.repo.SetTaskCompleted(ctx, taskID, true); err != nil {
		return false, fmt.Errorf("failed to auto-complete task #%d: %w", taskID, err)
	}
	s.notify.Cancel(taskID)
	s.log.Info("task auto-completed", "task", taskID, "items", len(items))
	return true, nil
}

// SetTaskCompleted marks a task done or not done
func (s *Service) SetTaskCompleted(ctx context.Context, id uint, completed bool) (*models.Task, error) {
	task, err := s.repo.SetTaskCompleted(ctx, id, completed)
	if err != nil {
		return nil, err
	}
	s.notify.Sync(*task)
	return task, nil
}

// SetTaskPinned turns the task's pinned notification on or off
func (s *Service) SetTaskPinned(ctx context.Context, id uint, pinned bool) (*models.Task, error) {
	task, err := s.repo.SetTaskPinned(ctx, id, pinned)
	if err != nil {
		return nil, err
	}
	s.notify.Sync(*task)
	return task, nil
}

// DeleteTask removes a task with its checklist and drops its notification
func (s *Service) DeleteTask(ctx context.Context, id uint) error {
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.notify.Cancel(id)
	return nil
}

// Task returns a task with its checklist
func (s *Service) Task(ctx context.Context, id uint) (*models.Task, error) {
	return s.repo.GetTaskWithChecklist(ctx, id)
}

// Tasks returns the filtered task list
func (s *Service) Tasks(ctx context.Context, filter db.TaskFilter) ([]models.Task, error) {
	return s.repo.ListTasks(ctx, filter)
}

// Watch streams the filtered task list as it changes
func (s *Service) Watch(ctx context.Context, filter db.TaskFilter) <-chan []models.Task {
	return s.repo.WatchTasks(ctx, filter)
}

// SyncNotifications re-applies the show/cancel rule to every task. Use it
// after the notification tray was lost or edited by hand.
func (s *Service) SyncNotifications(ctx context.Context) (shown int, err error) {
	tasks, err := s.repo.ListTasks(ctx, db.TaskFilter{OrderBy: "id"})
	if err != nil {
		return 0, err
	}
	for _, task := range tasks {
		s.notify.Sync(task)
		if task.WantsNotification() {
			shown++
		}
	}
	return shown, nil
}
