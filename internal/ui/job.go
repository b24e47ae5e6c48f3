package ui

import (
	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"

	"subattach/internal/progress"
)

// logTail is how many muxer stderr lines stay visible.
const logTail = 3

type jobState struct {
	id     string
	input  string
	stage  progress.Stage
	status string
	err    error
	done   bool

	outputPath string
	bytes      int64
	percent    float64 // -1 means unknown
	speed      string
	warnings   []string

	// stages reached so far, in order
	reached []progress.Stage

	spinner spinner.Model
	bar     bubblesprogress.Model

	logsRing []string
}

func newJobState(id, input string, styles Styles) jobState {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner
	bar := bubblesprogress.New(
		bubblesprogress.WithDefaultGradient(),
		bubblesprogress.WithWidth(40),
	)
	return jobState{
		id:      id,
		input:   input,
		stage:   progress.StageDeps,
		status:  "Starting",
		percent: -1,
		reached: []progress.Stage{progress.StageDeps},
		spinner: sp,
		bar:     bar,
	}
}

// enter records a stage transition.
func (js *jobState) enter(st progress.Stage) {
	if st == "" || st == js.stage {
		return
	}
	js.stage = st
	js.reached = append(js.reached, st)
}

func (js *jobState) pushLog(line string) {
	if line == "" {
		return
	}
	if len(js.logsRing) >= logTail {
		js.logsRing = js.logsRing[1:]
	}
	js.logsRing = append(js.logsRing, line)
}
