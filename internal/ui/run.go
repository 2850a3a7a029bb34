package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"countdo/internal/tasklist"
)

// Options configures Run.
type Options struct {
	Tick   time.Duration
	Input  io.Reader
	Output io.Writer
}

// Run shows the watch view until the user quits or ctx is done. The
// controller must have been created with bridge as its prompter and
// notifier; Run attaches the bridge to the program.
func Run(ctx context.Context, ctrl *tasklist.Controller, bridge *Bridge, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	model := NewModel(ctx, ctrl)
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(opts.Input),
		tea.WithOutput(opts.Output),
	)
	bridge.Attach(program.Send)

	stop := ctrl.StartTicker(ctx, opts.Tick, func(now time.Time) {
		program.Send(tickMsg(now))
	})

	_, err := program.Run()
	stop()
	bridge.Attach(nil)
	model.Shutdown()
	ctrl.Close()

	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch view: %w", err)
	}
	return nil
}
