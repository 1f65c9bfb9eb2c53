package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mbx/internal/shared"
	"github.com/desertthunder/mbx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	reg, err := r.providers()
	if err != nil {
		return err
	}
	player := &lazyPlayer{runner: r}

	// Redirect logs to file to avoid interfering with TUI rendering
	path := r.config.Log.File
	if path == "" {
		path = "./tmp/mbx-tui.log"
	}
	fileLogger, err := shared.NewFileLogger(shared.ExpandPath(path))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, ui.Opts{
		Providers: reg,
		Player:    player,
		PageSize:  r.config.Browse.PageSize,
		Logger:    r.logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.Attach(p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
