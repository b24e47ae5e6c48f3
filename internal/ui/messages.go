package ui

import (
	"subattach/internal/pipeline"
	"subattach/internal/progress"
)

type jobUpdateMsg struct {
	U progress.Update
}

type jobLogMsg struct {
	L progress.Log
}

type jobResultMsg struct {
	R progress.Result
}

// jobDoneMsg carries the pipeline's return values once the job goroutine exits.
type jobDoneMsg struct {
	Res pipeline.Result
	Err error
}
