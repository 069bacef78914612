package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/endorses/dashsync/internal/pkg/constants"
	"github.com/endorses/dashsync/internal/pkg/dashboard"
	"github.com/endorses/dashsync/internal/pkg/logger"
)

// Run shows the dashboard until the user quits or ctx is cancelled. Log
// output is captured for the console line while the screen is in use.
func Run(ctx context.Context, config dashboard.Config) error {
	console := logger.CaptureToConsole(constants.ConsoleBufferSize)

	bridge := NewBridge()
	d, err := dashboard.New(config, bridge)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(ctx, d.Handlers, d.Printer, console)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(p)

	runErr := make(chan error, 1)
	go func() {
		runErr <- d.Run(ctx)
	}()

	_, err = p.Run()
	cancel()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		err = fmt.Errorf("terminal UI failed: %w", err)
	} else {
		err = nil
	}
	return errors.Join(err, <-runErr)
}
