// Package tui implements the interactive queue view.
package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Iron-Ham/vidparse/internal/taskqueue"
	tea "github.com/charmbracelet/bubbletea"
)

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	model   Model
}

// New creates a new TUI application over sched. Extra program options are
// passed to tea.NewProgram after the alternate screen option.
func New(ctx context.Context, sched *taskqueue.Scheduler, opts Options, progOpts ...tea.ProgramOption) *App {
	model := NewModel(ctx, sched, opts)
	progOpts = append([]tea.ProgramOption{tea.WithAltScreen()}, progOpts...)
	return &App{
		model:   model,
		program: tea.NewProgram(model, progOpts...),
	}
}

// Run starts the TUI application and blocks until the user quits.
func (a *App) Run() error {
	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer func() {
		signal.Stop(sigChan)
		close(sigChan)
	}()

	go func() {
		if _, ok := <-sigChan; ok {
			a.program.Send(tea.Quit())
		}
	}()

	_, err := a.program.Run()
	return err
}

// Notify shows text on the status line. It is safe to call from any
// goroutine and blocks until the program is running.
func (a *App) Notify(text string, warn bool) {
	a.program.Send(flashMsg{text: text, warn: warn})
}
