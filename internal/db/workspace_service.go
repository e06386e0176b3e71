package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/balkashynov/tend/internal/models"
)

// CreateWorkspace inserts a new workspace
func (s *Store) CreateWorkspace(ctx context.Context, ws *models.Workspace) error {
	ws.Name = strings.TrimSpace(ws.Name)
	if ws.Name == "" {
		return errors.New("workspace name cannot be empty")
	}
	if ws.Color == "" {
		ws.Color = models.DefaultWorkspaceColor
	}

	// Name is unique; report a friendly error instead of the constraint failure
	if existing, err := s.GetWorkspaceByName(ctx, ws.Name); err == nil {
		return fmt.Errorf("workspace %q already exists (#%d)", ws.Name, existing.ID)
	}

	if err := s.conn(ctx).Create(ws).Error; err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	return nil
}

// GetWorkspace retrieves a workspace by ID
func (s *Store) GetWorkspace(ctx context.Context, id uint) (*models.Workspace, error) {
	var ws models.Workspace
	if err := s.conn(ctx).First(&ws, id).Error; err != nil {
		return nil, notFound(err, "workspace", id)
	}
	return &ws, nil
}

// GetWorkspaceByName retrieves a workspace by its (case-insensitive) name
func (s *Store) GetWorkspaceByName(ctx context.Context, name string) (*models.Workspace, error) {
	var ws models.Workspace
	err := s.conn(ctx).Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(&ws).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("workspace %q %w", name, ErrNotFound)
		}
		return nil, err
	}
	return &ws, nil
}

// ListWorkspaces returns workspaces ordered by name
func (s *Store) ListWorkspaces(ctx context.Context, includeArchived bool) ([]models.Workspace, error) {
	q := s.conn(ctx)
	if !includeArchived {
		q = q.Where("archived = ?", false)
	}
	var list []models.Workspace
	if err := q.Order("name ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// SaveWorkspace overwrites name, color and archived flag
func (s *Store) SaveWorkspace(ctx context.Context, ws *models.Workspace) error {
	if ws.ID == 0 {
		return errors.New("cannot save a workspace without an id")
	}
	res := s.conn(ctx).Model(ws).Select("name", "color", "archived").Updates(ws)
	if res.Error != nil {
		return fmt.Errorf("failed to save workspace #%d: %w", ws.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("workspace #%d %w", ws.ID, ErrNotFound)
	}
	return nil
}

// SetWorkspaceArchived archives or restores a workspace
func (s *Store) SetWorkspaceArchived(ctx context.Context, id uint, archived bool) (*models.Workspace, error) {
	res := s.conn(ctx).Model(&models.Workspace{ID: id}).Update("archived", archived)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("workspace #%d %w", id, ErrNotFound)
	}
	return s.GetWorkspace(ctx, id)
}

// DeleteWorkspace removes a workspace. Its tasks are kept without a workspace.
func (s *Store) DeleteWorkspace(ctx context.Context, id uint) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		err := tx.Model(&models.Task{}).Where("workspace_id = ?", id).Update("workspace_id", nil).Error
		if err != nil {
			return fmt.Errorf("failed to detach tasks from workspace #%d: %w", id, err)
		}
		res := tx.Delete(&models.Workspace{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("workspace #%d %w", id, ErrNotFound)
		}
		return nil
	})
}

// WatchWorkspaces streams the workspace list
func (s *Store) WatchWorkspaces(ctx context.Context, includeArchived bool) <-chan []models.Workspace {
	return watch(ctx, s, func(ctx context.Context) ([]models.Workspace, error) {
		return s.ListWorkspaces(ctx, includeArchived)
	}, TableWorkspaces)
}
