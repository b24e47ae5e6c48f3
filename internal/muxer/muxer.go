// Package muxer runs ffmpeg for a muxplan.Plan and verifies what it wrote.
package muxer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"subattach/internal/muxplan"
	"subattach/internal/progress"
	"subattach/internal/util"
)

// ErrMuxFailed is returned when ffmpeg exits non-zero or leaves no usable output.
var ErrMuxFailed = errors.New("mux failed")

// stderrTail bounds how much ffmpeg stderr is quoted in errors.
const stderrTail = 20

// Options control ffmpeg execution.
type Options struct {
	FFmpegPath  string
	Runner      util.CmdRunner
	Reporter    progress.Reporter
	Logger      zerolog.Logger
	JobID       string
	DurationSec float64   // for percentages; 0 = unknown
	Echo        io.Writer // verbose passthrough of the command and its output
	LogLevel    string    // ffmpeg -loglevel

	// RemoveOnFailure deletes the output after a failed run. Set it only
	// when the output path was chosen by the caller as scratch space.
	RemoveOnFailure bool
}

// Muxer executes plans.
type Muxer struct {
	opts Options
}

// New constructs a Muxer, defaulting the binary and runner.
func New(opts Options) *Muxer {
	if strings.TrimSpace(opts.FFmpegPath) == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.Runner == nil {
		opts.Runner = util.NewDefaultRunner()
	}
	if opts.Reporter == nil {
		opts.Reporter = progress.Nop{}
	}
	return &Muxer{opts: opts}
}

// Args returns the full ffmpeg argument vector for p.
func (m *Muxer) Args(p muxplan.Plan) []string {
	return muxplan.Render(p, muxplan.RenderOptions{LogLevel: m.opts.LogLevel, Progress: true})
}

// Mux runs ffmpeg for p and returns the size of the written output. Any
// failure wraps ErrMuxFailed and the caller must not replace anything in that
// case. The partial output is removed only under RemoveOnFailure.
func (m *Muxer) Mux(ctx context.Context, p muxplan.Plan) (int64, error) {
	out := p.OutputPath()
	if out == "" {
		return 0, fmt.Errorf("%w: plan has no output path", ErrMuxFailed)
	}
	if err := util.EnsureDir(filepath.Dir(out)); err != nil {
		return 0, fmt.Errorf("ensure output dir: %w", err)
	}

	args := m.Args(p)
	m.opts.Logger.Debug().
		Str("ffmpeg", m.opts.FFmpegPath).
		Str("cmd", util.CommandLine(m.opts.FFmpegPath, args)).
		Msg("starting mux")

	ps := &ProgressState{}
	res, runErr := m.opts.Runner.Run(ctx, util.CmdSpec{
		Path: m.opts.FFmpegPath,
		Args: args,
		Echo: m.opts.Echo,
		StdoutLine: func(line string) {
			if u, ok := ps.UpdateFromLine(line, m.opts.JobID, m.opts.DurationSec); ok {
				m.opts.Reporter.Update(u)
			}
		},
		StderrLine: func(line string) {
			m.opts.Reporter.Log(progress.Log{JobID: m.opts.JobID, Stream: progress.StreamStderr, Line: line})
		},
	})
	if runErr != nil {
		m.discard(p, out)
		if ctx.Err() != nil {
			return 0, fmt.Errorf("%w: %v", ErrMuxFailed, ctx.Err())
		}
		if tail := lastLines(string(res.Stderr), stderrTail); tail != "" {
			return 0, fmt.Errorf("%w: ffmpeg exit %d: %s", ErrMuxFailed, res.Code, tail)
		}
		return 0, fmt.Errorf("%w: ffmpeg: %v", ErrMuxFailed, runErr)
	}

	size, err := util.RequireNonEmpty(out)
	if err != nil {
		m.discard(p, out)
		return 0, fmt.Errorf("%w: output %s: %v", ErrMuxFailed, out, err)
	}
	m.opts.Logger.Debug().Str("output", out).Int64("bytes", size).Msg("mux finished")
	return size, nil
}

// discard removes a failed output unless it is not ours to remove. An output
// that resolves to one of the plan's inputs is never touched.
func (m *Muxer) discard(p muxplan.Plan, out string) {
	if !m.opts.RemoveOnFailure {
		return
	}
	for _, d := range p.Filter(muxplan.KindInput) {
		if util.SamePath(out, d.Path) {
			m.opts.Logger.Warn().Str("output", out).Msg("failed output is also an input; leaving it in place")
			return
		}
	}
	if err := util.RemoveIfExists(out); err != nil {
		m.opts.Logger.Warn().Err(err).Str("output", out).Msg("could not remove partial output")
	}
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
