package notify

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/balkashynov/tend/internal/models"
)

// Entry is one pinned notification as stored in the tray file
type Entry struct {
	TaskID   uint       `yaml:"task_id"`
	Title    string     `yaml:"title"`
	Deadline *time.Time `yaml:"deadline,omitempty"`
	Priority string     `yaml:"priority,omitempty"`
	PostedAt time.Time  `yaml:"posted_at"`
}

type trayFile struct {
	Notifications []Entry `yaml:"notifications"`
}

// Tray is a Notifier that keeps the active notifications in a YAML file, for
// status bars and `tend notifications` to read.
type Tray struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewTray returns a tray backed by the file at path
func NewTray(path string) *Tray {
	return &Tray{path: path, now: time.Now}
}

// Path returns the tray file location
func (t *Tray) Path() string {
	return t.path
}

// ShowTaskNotification adds or refreshes the task's entry
func (t *Tray) ShowTaskNotification(task models.Task) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	tray, err := t.load()
	if err != nil {
		return err
	}

	entry := Entry{
		TaskID:   task.ID,
		Title:    task.Title,
		Deadline: task.Deadline,
		Priority: task.PriorityName(),
		PostedAt: t.now(),
	}
	replaced := false
	for i := range tray.Notifications {
		if tray.Notifications[i].TaskID == task.ID {
			entry.PostedAt = tray.Notifications[i].PostedAt
			tray.Notifications[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		tray.Notifications = append(tray.Notifications, entry)
	}

	return t.save(tray)
}

// CancelTaskNotification drops the task's entry, if present
func (t *Tray) CancelTaskNotification(taskID uint) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	tray, err := t.load()
	if err != nil {
		return err
	}

	kept := tray.Notifications[:0]
	for _, entry := range tray.Notifications {
		if entry.TaskID != taskID {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(tray.Notifications) {
		return nil // nothing to cancel
	}
	tray.Notifications = kept

	return t.save(tray)
}

// Active returns the current entries ordered by task ID
func (t *Tray) Active() ([]Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tray, err := t.load()
	if err != nil {
		return nil, err
	}
	return tray.Notifications, nil
}

func (t *Tray) load() (*trayFile, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &trayFile{}, nil
		}
		return nil, fmt.Errorf("failed to read notification tray: %w", err)
	}

	var tray trayFile
	if err := yaml.Unmarshal(data, &tray); err != nil {
		return nil, fmt.Errorf("failed to parse notification tray: %w", err)
	}
	return &tray, nil
}

// save writes the tray through a temp file so readers never see a partial file
func (t *Tray) save(tray *trayFile) error {
	sort.Slice(tray.Notifications, func(i, j int) bool {
		return tray.Notifications[i].TaskID < tray.Notifications[j].TaskID
	})

	data, err := yaml.Marshal(tray)
	if err != nil {
		return fmt.Errorf("failed to encode notification tray: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return fmt.Errorf("failed to create tray directory: %w", err)
	}
	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write notification tray: %w", err)
	}
	if err := os.Rename(tmp, t.path); err != nil {
		return fmt.Errorf("failed to replace notification tray: %w", err)
	}
	return nil
}
