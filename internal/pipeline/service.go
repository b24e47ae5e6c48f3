// Package pipeline orchestrates one attach run: validate, probe, plan, mux, replace.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"subattach/internal/language"
	"subattach/internal/model"
	"subattach/internal/muxer"
	"subattach/internal/muxplan"
	"subattach/internal/probe"
	"subattach/internal/progress"
	"subattach/internal/util"
)

// ErrOverwrite means the mux succeeded but the temp output could not be moved
// onto the input. The temp file is left in place.
var ErrOverwrite = errors.New("overwrite failed")

// Service runs attach requests.
type Service struct {
	ffmpegPath  string
	ffprobePath string
	opts        model.CLIOptions
	runner      util.CmdRunner
	reporter    progress.Reporter
	logger      zerolog.Logger
	lockDir     string
	echo        io.Writer
	jobID       string
}

// Option configures a Service.
type Option func(*Service)

// WithFFmpegPath sets the ffmpeg binary path.
func WithFFmpegPath(p string) Option {
	return func(s *Service) {
		s.ffmpegPath = p
	}
}

// WithFFprobePath sets the ffprobe binary path.
func WithFFprobePath(p string) Option {
	return func(s *Service) {
		s.ffprobePath = p
	}
}

// WithCLIOptions sets the CLI options used for planning and execution.
func WithCLIOptions(o model.CLIOptions) Option {
	return func(s *Service) {
		s.opts = o
	}
}

// WithRunner injects a custom command runner (useful for testing).
func WithRunner(r util.CmdRunner) Option {
	return func(s *Service) {
		s.runner = r
	}
}

// WithReporter attaches a progress reporter (used by TUI).
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) {
		s.reporter = rp
	}
}

// WithLogger sets the structured logger for diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithLockDir enables the per-input run lock under dir.
func WithLockDir(dir string) Option {
	return func(s *Service) {
		s.lockDir = dir
	}
}

// WithEcho mirrors subprocess command lines and output to w (verbose mode).
func WithEcho(w io.Writer) Option {
	return func(s *Service) {
		s.echo = w
	}
}

// WithJobID sets the job ID associated with reporter events.
func WithJobID(id string) Option {
	return func(s *Service) {
		s.jobID = id
	}
}

// NewService constructs a new Service with the provided options.
func NewService(opts ...Option) *Service {
	s := &Service{logger: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	if s.runner == nil {
		s.runner = util.NewDefaultRunner()
	}
	if s.reporter == nil {
		s.reporter = progress.Nop{}
	}
	if s.ffmpegPath == "" {
		s.ffmpegPath = "ffmpeg"
	}
	if s.ffprobePath == "" {
		s.ffprobePath = "ffprobe"
	}
	return s
}

// Result is the outcome of Attach.
type Result struct {
	Request    model.AttachmentRequest // normalized request as executed
	Plan       muxplan.Plan
	Args       []string // ffmpeg argument vector
	Inspection probe.Inspection
	Planned    bool // dry run: nothing was written
	Output     *model.AttachResult
	Warnings   []string
	Elapsed    time.Duration
}

// Attach executes req. Steps run strictly in order and each one starts only
// after the previous one completed: validate, resolve the target path, lock,
// probe, plan, mux, and (for in-place runs) replace the input.
func (s *Service) Attach(ctx context.Context, req model.AttachmentRequest) (Result, error) {
	start := time.Now()
	var res Result

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return res, s.fail(err)
	}
	if req.HasSubtitle() {
		req.Language = language.Normalize(req.Language)
	}
	res.Request = req

	log := s.logger.With().Str("input", req.Input).Logger()

	// Resolve muxer target.
	inPlace := req.Output == ""
	target := req.Output
	if inPlace {
		target = util.TempSibling(req.Input)
	} else if util.SamePath(req.Output, req.Input) {
		w := fmt.Sprintf("output %s is the same file as the input; ffmpeg will read and write it at once", req.Output)
		log.Warn().Str("output", req.Output).Msg("output equals input")
		res.Warnings = append(res.Warnings, w)
	}

	if s.lockDir != "" && !s.opts.DryRun {
		lock, err := util.AcquireRunLock(s.lockDir, req.Input)
		if err != nil {
			return res, s.fail(err)
		}
		defer func() { _ = lock.Release() }()
	}

	// Probe existing subtitle streams. Failures degrade to zero.
	s.stage(progress.StageProbe, "Probing subtitle streams")
	insp, perr := probe.NewInspector(s.ffprobePath, s.runner).CountSubtitleStreams(ctx, req.Input)
	if perr != nil {
		log.Warn().Err(perr).Msg("subtitle probe failed; assuming no existing subtitle streams")
		res.Warnings = append(res.Warnings, fmt.Sprintf("could not count subtitle streams (%v); assuming 0", perr))
	} else {
		log.Debug().Int("subtitle_streams", insp.Count()).Float64("duration_sec", insp.DurationSec).Msg("probed")
	}
	res.Inspection = insp

	// Plan against the actual muxer target.
	s.stage(progress.StagePlan, "Building mux plan")
	planReq := req
	planReq.Output = target
	plan := muxplan.Build(planReq, insp.Count())
	res.Plan = plan

	m := muxer.New(muxer.Options{
		FFmpegPath:  s.ffmpegPath,
		Runner:      s.runner,
		Reporter:    s.reporter,
		Logger:      log,
		JobID:       s.jobID,
		DurationSec: insp.DurationSec,
		Echo:        s.echo,
		LogLevel:    ffmpegLogLevel(s.opts.Verbose),

		RemoveOnFailure: inPlace,
	})
	res.Args = m.Args(plan)

	if s.opts.DryRun {
		res.Planned = true
		res.Elapsed = time.Since(start)
		s.reporter.Update(progress.Update{
			JobID:   s.jobID,
			Stage:   progress.StageCompleted,
			Percent: 100,
			Message: fmt.Sprintf("Planned: %s (dry-run)", filepath.Base(finalPath(req))),
		})
		s.reporter.Result(progress.Result{JobID: s.jobID, OutputPath: finalPath(req), Warnings: res.Warnings})
		return res, nil
	}

	s.reporter.Update(progress.Update{JobID: s.jobID, Stage: progress.StageMux, Percent: -1, Message: "Muxing"})
	size, err := m.Mux(ctx, plan)
	if err != nil {
		return res, s.fail(err)
	}

	out := &model.AttachResult{OutputPath: target, Bytes: size}
	if inPlace {
		s.stage(progress.StageReplace, "Replacing original")
		if err := util.ReplaceFile(target, req.Input); err != nil {
			log.Error().Err(err).Str("temp", target).Msg("could not replace input; muxed file kept")
			return res, s.fail(fmt.Errorf("%w: %v (muxed output kept at %s)", ErrOverwrite, err, target))
		}
		out.OutputPath = req.Input
		out.TempPath = target
		out.Replaced = true
	}
	res.Output = out
	res.Elapsed = time.Since(start)

	log.Info().Str("output", out.OutputPath).Int64("bytes", out.Bytes).Dur("elapsed", res.Elapsed).Msg("attach finished")
	s.reporter.Update(progress.Update{
		JobID:   s.jobID,
		Stage:   progress.StageCompleted,
		Percent: 100,
		Message: fmt.Sprintf("Saved: %s (%s)", filepath.Base(out.OutputPath), humanize.IBytes(uint64(out.Bytes))),
	})
	s.reporter.Result(progress.Result{
		JobID:      s.jobID,
		OutputPath: out.OutputPath,
		Bytes:      out.Bytes,
		Warnings:   res.Warnings,
	})
	return res, nil
}

func (s *Service) stage(st progress.Stage, msg string) {
	s.reporter.Update(progress.Update{JobID: s.jobID, Stage: st, Percent: -1, Message: msg})
}

// fail reports err as the job's final result and returns it unchanged.
func (s *Service) fail(err error) error {
	s.reporter.Update(progress.Update{JobID: s.jobID, Stage: progress.StageError, Percent: -1, Message: err.Error()})
	s.reporter.Result(progress.Result{JobID: s.jobID, Err: err})
	return err
}

// finalPath is where the result ends up once the run completes.
func finalPath(req model.AttachmentRequest) string {
	if req.Output != "" {
		return req.Output
	}
	return req.Input
}

func ffmpegLogLevel(verbose bool) string {
	if verbose {
		return "info"
	}
	return "error"
}
