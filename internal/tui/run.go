package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cristianoliveira/lostfound/internal/domain"
	"github.com/cristianoliveira/lostfound/internal/feed"
)

// Run shows the browser until the user quits or ctx ends.
func Run(ctx context.Context, screen *feed.Screen[domain.Post], opts Options) error {
	p := tea.NewProgram(New(screen, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
