package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"subattach/internal/pipeline"
	"subattach/internal/progress"
)

// Job runs one attach with the given reporter. The TUI owns the reporter;
// the job owns everything else.
type Job func(ctx context.Context, rep progress.Reporter) (pipeline.Result, error)

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	job    *jobState
	run    Job
	dryRun bool

	result   pipeline.Result
	err      error
	finished bool

	width, height int
	styles        Styles

	// Internal event channel used by reporter to feed tea messages
	eventCh chan tea.Msg
}

func NewModel(ctx context.Context, input string, dryRun bool, run Job) Model {
	c, cancel := context.WithCancel(ctx)
	sty := defaultStyles()
	js := newJobState("job-0", input, sty)
	return Model{
		ctx:     c,
		cancel:  cancel,
		job:     &js,
		run:     run,
		dryRun:  dryRun,
		styles:  sty,
		eventCh: make(chan tea.Msg, 256),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.job.spinner.Tick, m.listenEventsCmd(), m.startJobCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	js := m.job
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// Cancelling kills ffmpeg; the pipeline then reports the failure.
			m.cancel()
			if m.finished {
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case jobUpdateMsg, jobLogMsg, jobResultMsg:
		m.applyEvent(msg)
	case jobDoneMsg:
		// Anything the reporter queued before the job returned belongs in
		// the final frame.
		for drained := false; !drained; {
			select {
			case ev := <-m.eventCh:
				m.applyEvent(ev)
			default:
				drained = true
			}
		}
		m.result = msg.Res
		m.err = msg.Err
		m.finished = true
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	var c tea.Cmd
	js.spinner, c = js.spinner.Update(msg)
	if c != nil {
		cmds = append(cmds, c)
	}
	switch msg.(type) {
	case jobUpdateMsg, jobLogMsg, jobResultMsg:
		cmds = append(cmds, m.listenEventsCmd())
	}
	return m, tea.Batch(cmds...)
}

// applyEvent folds one reporter event into the job state.
func (m Model) applyEvent(msg tea.Msg) {
	js := m.job
	switch msg := msg.(type) {
	case jobUpdateMsg:
		u := msg.U
		js.enter(u.Stage)
		js.percent = u.Percent
		if u.Message != "" {
			js.status = u.Message
		}
		if u.Bytes != nil {
			js.bytes = *u.Bytes
		}
		if u.Speed != nil {
			js.speed = *u.Speed
		}
	case jobLogMsg:
		js.pushLog(strings.TrimRight(msg.L.Line, "\r\n"))
	case jobResultMsg:
		r := msg.R
		js.done = true
		js.err = r.Err
		js.warnings = r.Warnings
		if r.Err == nil {
			js.enter(progress.StageCompleted)
			js.percent = 100
			js.outputPath = r.OutputPath
			js.bytes = r.Bytes
			name := filepath.Base(r.OutputPath)
			if m.dryRun {
				js.status = fmt.Sprintf("Planned: %s (dry-run)", name)
			} else {
				js.status = fmt.Sprintf("Saved: %s (%s)", name, humanize.IBytes(uint64(r.Bytes)))
			}
		} else {
			js.enter(progress.StageError)
			js.status = r.Err.Error()
			js.percent = -1
		}
	}
}

func (m Model) View() string {
	out := m.viewHeader() + "\n\n" + m.viewJob(m.job)
	if s := m.viewSummary(); s != "" {
		out += "\n" + s
	}
	return out
}

// listenEventsCmd delivers exactly one reporter event; every event handler
// re-arms it so there is never more than one listener.
func (m Model) listenEventsCmd() tea.Cmd {
	ch := m.eventCh
	return func() tea.Msg {
		return <-ch
	}
}

// startJobCmd runs the job and queues jobDoneMsg behind every event the
// reporter sent, so the listener delivers them in order.
func (m Model) startJobCmd() tea.Cmd {
	ctx, run, ch := m.ctx, m.run, m.eventCh
	return func() tea.Msg {
		res, err := run(ctx, teaReporter{ch: ch})
		ch <- jobDoneMsg{Res: res, Err: err}
		return nil
	}
}

type teaReporter struct {
	ch chan tea.Msg
}

func (r teaReporter) Update(u progress.Update) {
	// Block on completion messages to ensure they're delivered
	if u.Stage == progress.StageCompleted || u.Stage == progress.StageError {
		r.ch <- jobUpdateMsg{U: u}
		return
	}
	select {
	case r.ch <- jobUpdateMsg{U: u}:
	default:
	}
}

func (r teaReporter) Log(l progress.Log) {
	select {
	case r.ch <- jobLogMsg{L: l}:
	default:
	}
}

func (r teaReporter) Result(res progress.Result) {
	// Always block on Result messages - they're critical
	r.ch <- jobResultMsg{R: res}
}
