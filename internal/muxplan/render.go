package muxplan

// RenderOptions control the ffmpeg preamble; they never change the plan.
type RenderOptions struct {
	LogLevel string // ffmpeg -loglevel; empty = "error"
	Progress bool   // emit machine-readable progress on stdout
}

// Render serializes the plan into ffmpeg's argument vector (without the
// binary name). The output path is always the last element.
func Render(p Plan, opts RenderOptions) []string {
	level := opts.LogLevel
	if level == "" {
		level = "error"
	}
	args := make([]string, 0, 48)
	args = append(args, "-hide_banner", "-nostdin", "-y", "-loglevel", level)
	if opts.Progress {
		args = append(args, "-progress", "pipe:1", "-nostats")
	}
	for _, d := range p.directives {
		args = append(args, d.Args()...)
	}
	return args
}
