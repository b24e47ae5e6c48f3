package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"subattach/internal/dirs"
	"subattach/internal/model"
	"subattach/internal/pipeline"
	"subattach/internal/progress"
	"subattach/internal/ui"
	"subattach/internal/util/deps"
)

type runMode struct {
	ForceTUI   bool
	DryRunOnly bool
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "attach",
		Aliases: []string{"run"},
		Short:   "Attach a subtitle and/or stamp metadata (default command)",
		Example: "  subattach attach -i movie.mkv -s movie.es.srt -l spa\n" +
			"  subattach attach -i movie.mp4 -s new.srt --clear-subs -o out.mp4\n" +
			"  subattach attach -i movie.mkv -m \"My Release\"",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExecute(cmd, runMode{})
		},
	}
	bindAttachFlags(cmd.Flags())
	return cmd
}

type runInputs struct {
	Request model.AttachmentRequest
	Options model.CLIOptions
}

// assembleRunInputs merges flags with config. Flags win; config supplies
// the language, metadata title and binaries when flags are absent.
func assembleRunInputs(cmd *cobra.Command, a app) (runInputs, error) {
	fs := cmd.Flags()
	input, _ := fs.GetString("input")
	subtitle, _ := fs.GetString("subtitle")
	output, _ := fs.GetString("output")
	lang, _ := fs.GetString("lang")
	title, _ := fs.GetString("metadata")
	clearSubs, _ := fs.GetBool("clear-subs")
	noUI, _ := fs.GetBool("no-ui")

	if strings.TrimSpace(input) == "" {
		return runInputs{}, fmt.Errorf("missing required flag: -i/--input")
	}
	if strings.TrimSpace(lang) == "" {
		lang = a.settings.Lang
	}
	addMetadata := fs.Changed("metadata")
	// A bare -m picks up the configured title.
	if addMetadata && (title == metadataFromConfig || strings.TrimSpace(title) == "") {
		title = a.settings.MetadataTitle
	}

	return runInputs{
		Request: model.AttachmentRequest{
			Input:                  input,
			Subtitle:               subtitle,
			Output:                 output,
			ClearExistingSubtitles: clearSubs,
			Language:               lang,
			AddMetadata:            addMetadata,
			MetadataTitle:          title,
		},
		Options: model.CLIOptions{
			FFmpegBinary:  getPersistentString(cmd, "ffmpeg-binary", a.settings.FFmpegBinary),
			FFprobeBinary: getPersistentString(cmd, "ffprobe-binary", a.settings.FFprobeBinary),
			Verbose:       a.settings.Verbose,
			NoUI:          noUI,
		},
	}, nil
}

func runExecute(cmd *cobra.Command, mode runMode) error {
	a := appFrom(cmd)
	in, err := assembleRunInputs(cmd, a)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	if mode.DryRunOnly {
		in.Options.DryRun = true
		in.Options.NoUI = true
	}

	// Validate before looking for tools so usage errors exit 1.
	if err := in.Request.Normalize().Validate(); err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}

	ffmpegPath, ferr := deps.FindFFmpeg(in.Options.FFmpegBinary)
	if ferr != nil && !in.Options.DryRun {
		return &ExitError{Code: ExitMissingDep, Err: ferr}
	}
	ffprobePath, perr := deps.FindFFprobe(in.Options.FFprobeBinary)
	if perr != nil {
		// The probe degrades to zero existing subtitles without ffprobe.
		a.logger.Warn().Err(perr).Msg("ffprobe not found")
		ffprobePath = "ffprobe"
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}

	opts := []pipeline.Option{
		pipeline.WithFFmpegPath(ffmpegPath),
		pipeline.WithFFprobePath(ffprobePath),
		pipeline.WithCLIOptions(in.Options),
		pipeline.WithLogger(a.logger),
		pipeline.WithJobID("job-0"),
	}
	if lockDir, err := dirs.LockDir(); err == nil {
		opts = append(opts, pipeline.WithLockDir(lockDir))
	}

	useTUI := mode.ForceTUI || (!in.Options.NoUI && !in.Options.Verbose && isTerminal())
	if useTUI && !in.Options.DryRun {
		res, err := ui.Run(cmd.Context(), in.Request.Input, false, func(ctx context.Context, rep progress.Reporter) (pipeline.Result, error) {
			return pipeline.NewService(append(opts, pipeline.WithReporter(rep))...).Attach(ctx, in.Request)
		})
		if err != nil {
			return asExitError(err)
		}
		printSaved(cmd.OutOrStdout(), res)
		return nil
	}

	if in.Options.Verbose {
		opts = append(opts, pipeline.WithEcho(cmd.ErrOrStderr()))
	}
	res, err := pipeline.NewService(opts...).Attach(cmd.Context(), in.Request)
	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	if err != nil {
		return asExitError(err)
	}
	if res.Planned {
		return printPlan(cmd.OutOrStdout(), ffmpegPath, res)
	}
	printSaved(cmd.OutOrStdout(), res)
	return nil
}

func printSaved(w io.Writer, res pipeline.Result) {
	if res.Output == nil {
		return
	}
	fmt.Fprintf(w, "Saved: %s (%s)\n", res.Output.OutputPath, humanize.IBytes(uint64(res.Output.Bytes)))
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
