// Package notify keeps pinned task notifications in step with task state.
package notify

import (
	"errors"
	"io/fs"

	"github.com/charmbracelet/log"

	"github.com/balkashynov/tend/internal/models"
)

// ErrPermissionDenied is returned by notifiers that are not allowed to post
var ErrPermissionDenied = errors.New("notification permission denied")

// Notifier posts and removes persistent task notifications
type Notifier interface {
	ShowTaskNotification(task models.Task) error
	CancelTaskNotification(taskID uint) error
}

// Coordinator decides whether a task's notification should be visible.
// All notifier failures are logged and dropped; callers never see them.
type Coordinator struct {
	notifier Notifier
	log      *log.Logger
}

// NewCoordinator wraps a notifier. A nil notifier makes every call a no-op.
func NewCoordinator(n Notifier, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{notifier: n, log: logger.WithPrefix("notify")}
}

// Sync shows the notification when the task is pinned and not completed,
// and cancels it otherwise.
func (c *Coordinator) Sync(task models.Task) {
	if task.WantsNotification() {
		c.Show(task)
		return
	}
	c.Cancel(task.ID)
}

// Show posts the task's notification
func (c *Coordinator) Show(task models.Task) {
	if c == nil || c.notifier == nil {
		return
	}
	c.report(c.notifier.ShowTaskNotification(task), "show", task.ID)
}

// Cancel removes the task's notification
func (c *Coordinator) Cancel(taskID uint) {
	if c == nil || c.notifier == nil {
		return
	}
	c.report(c.notifier.CancelTaskNotification(taskID), "cancel", taskID)
}

func (c *Coordinator) report(err error, action string, taskID uint) {
	if err == nil {
		return
	}
	if IsPermissionError(err) {
		c.log.Debug("notification not permitted", "action", action, "task", taskID, "err", err)
		return
	}
	c.log.Warn("notification failed", "action", action, "task", taskID, "err", err)
}

// IsPermissionError reports whether err is a notification permission denial
func IsPermissionError(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, fs.ErrPermission)
}
