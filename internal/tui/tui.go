// Package tui holds tend's terminal views.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/tend/internal/config"
)

// RunList starts the live task list and blocks until the user quits
func RunList(ctx context.Context, svc TaskService, mode config.TimelineMode) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewListModel(ctx, svc, mode)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
