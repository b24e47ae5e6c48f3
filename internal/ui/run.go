package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"subattach/internal/pipeline"
)

// Run shows the TUI while job executes and returns the job's own result.
func Run(ctx context.Context, input string, dryRun bool, job Job) (pipeline.Result, error) {
	m := NewModel(ctx, input, dryRun, job)
	prog := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := prog.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return pipeline.Result{}, err
	}
	fm, ok := final.(Model)
	if !ok || !fm.finished {
		if ctx.Err() != nil {
			return pipeline.Result{}, ctx.Err()
		}
		return pipeline.Result{}, errors.New("interrupted")
	}
	return fm.result, fm.err
}
