package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"subattach/internal/config"
	"subattach/internal/logging"
	"subattach/internal/model"
	"subattach/internal/muxer"
	"subattach/internal/pipeline"
	"subattach/internal/util"
)

const (
	ExitOK             = 0
	ExitCLIError       = 1
	ExitMissingDep     = 2
	ExitMuxError       = 3
	ExitOverwriteError = 4
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// exitCodeFor classifies pipeline errors.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, muxer.ErrMuxFailed):
		return ExitMuxError
	case errors.Is(err, pipeline.ErrOverwrite):
		return ExitOverwriteError
	case errors.Is(err, model.ErrValidation), errors.Is(err, util.ErrBusy):
		return ExitCLIError
	default:
		return ExitCLIError
	}
}

func asExitError(err error) error {
	if err == nil {
		return nil
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee
	}
	return &ExitError{Code: exitCodeFor(err), Err: err}
}

type ctxKey string

const appKey ctxKey = "app"

// app is the per-invocation state assembled before any command runs.
type app struct {
	settings config.Settings
	logger   zerolog.Logger
}

func appFrom(cmd *cobra.Command) app {
	if v, ok := cmd.Context().Value(appKey).(app); ok {
		return v
	}
	return app{settings: config.Current(), logger: zerolog.Nop()}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "subattach",
		Short: "Attach a subtitle track to a video container without re-encoding",
		Long: "subattach muxes an external subtitle file into a video container (MKV, MP4, ...), " +
			"tags it with a language, optionally clears existing subtitle tracks and stamps title " +
			"metadata. Video and audio are stream-copied; the original is replaced in place unless " +
			"an output path is given.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Without a subcommand the root attaches.
			return runExecute(cmd, runMode{})
		},
	}
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return setupApp(cmd, root, cmd.ErrOrStderr())
	}

	// Persistent flags available to all subcommands
	pf := root.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Show full subprocess commands/output")
	pf.String("ffmpeg-binary", "", "Path to ffmpeg")
	pf.String("ffprobe-binary", "", "Path to ffprobe")
	pf.String("log-level", "", "Log level: trace, debug, info, warn, error")
	pf.String("log-format", "", "Log format: console, json")

	// Attach flags on root, so `subattach -i ... -s ...` works.
	bindAttachFlags(root.Flags())

	root.AddCommand(newRunCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newTuiCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

func setupApp(cmd, root *cobra.Command, logOut io.Writer) error {
	if err := config.Init(root); err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	s := config.Current()
	logger, err := logging.New(logging.Options{
		Level:   s.LogLevel,
		Format:  s.LogFormat,
		Verbose: s.Verbose,
		Out:     logOut,
	})
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	if f := config.ConfigFileUsed(); f != "" {
		logger.Debug().Str("file", f).Msg("loaded config")
	}
	cmd.SetContext(context.WithValue(cmd.Context(), appKey, app{settings: s, logger: logger}))
	return nil
}

// metadataFromConfig is what a bare -m stores; it resolves to the configured title.
const metadataFromConfig = "(config)"

func bindAttachFlags(fs *pflag.FlagSet) {
	fs.StringP("input", "i", "", "Input video file (required)")
	fs.StringP("subtitle", "s", "", "Subtitle file to attach")
	fs.StringP("output", "o", "", "Output file (default: rewrite the input in place)")
	fs.StringP("lang", "l", "", "Language of the attached subtitle (default \""+model.DefaultLanguage+"\")")
	fs.StringP("metadata", "m", "", "Stamp a title on the file and all streams")
	fs.Lookup("metadata").NoOptDefVal = metadataFromConfig
	fs.Bool("clear-subs", false, "Drop existing subtitle streams before attaching")
	fs.Bool("no-ui", false, "Disable TUI; use plain textual output")
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	root.SetArgs(normalizeArgs(os.Args[1:]))
	return root.ExecuteContext(ctx)
}

// normalizeArgs attaches a space-separated metadata value ("-m Title") to its
// flag. pflag never consumes the next word for a flag with an optional value,
// and the commands take no positional arguments, so a non-flag word after -m
// can only be its value.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			return append(out, args[i:]...)
		}
		if (a == "-m" || a == "--metadata") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, a+"="+args[i+1])
			i++
			continue
		}
		out = append(out, a)
	}
	return out
}

// Helpers
func getPersistentString(cmd *cobra.Command, name, def string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil || v == "" {
		return def
	}
	return v
}
