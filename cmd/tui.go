package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plx/internal/session"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive transfer wizard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.source == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}
	if r.dest == nil {
		return fmt.Errorf("%w: Amazon Music service not initialized", shared.ErrServiceUnavailable)
	}

	// Logs and login prompts would corrupt the rendered screen.
	fileLogger, err := shared.NewFileLogger("./tmp/plx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)
	r.output = io.Discard

	opts := []session.Option{session.WithLogger(fileLogger)}
	if history := r.history(); history != nil {
		opts = append(opts, session.WithHistory(history))
	}
	sess := session.New(r.source, r.dest, r.newEngine(), opts...)

	model := ui.NewModel(ctx, sess,
		ui.WithSourceLogin(r.serviceName(r.source, "Spotify"), r.ensureLogin(serviceSpotify)),
		ui.WithDestinationLogin(r.serviceName(r.dest, "Amazon Music"), r.ensureLogin(serviceAmazon)),
	)

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
