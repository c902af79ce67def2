// Package tui provides the Bubble Tea replay interface.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/huangsam/timelapse/core/session"
	"github.com/huangsam/timelapse/schema"
)

// Options configure the replay screen.
type Options struct {
	Title     string
	Rejected  int
	UseColors bool
	Languages []schema.LanguageShare // corpus-wide legend
}

// Run drives s from the terminal until the user quits or ctx is done.
func Run(ctx context.Context, s *session.Session, opts Options) error {
	program := tea.NewProgram(
		NewModel(s, opts),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	_, err := program.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
