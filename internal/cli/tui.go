package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	watchCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := ctx.Store.Watch(watchCtx)
	if err != nil {
		logger.Warn("Not watching store for external changes", "error", err)
		changes = nil
	}

	p := tea.NewProgram(tui.NewModel(ctx.Store, ctx.Config, changes), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}
