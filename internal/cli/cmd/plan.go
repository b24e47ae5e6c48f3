package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"subattach/internal/language"
	"subattach/internal/pipeline"
	"subattach/internal/util"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "plan",
		Short:         "Probe the input and show the mux plan without writing anything",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExecute(cmd, runMode{DryRunOnly: true})
		},
	}
	// Reuse same flags; plan never runs ffmpeg
	bindAttachFlags(cmd.Flags())
	if f := cmd.Flags().Lookup("no-ui"); f != nil {
		f.Hidden = true
	}
	return cmd
}

// printPlan outputs the planned directives and the exact ffmpeg command.
func printPlan(w io.Writer, ffmpegPath string, res pipeline.Result) error {
	req := res.Request
	fmt.Fprintln(w, "Mux plan:")
	fmt.Fprintf(w, "- Input:              %s\n", req.Input)
	if req.HasSubtitle() {
		fmt.Fprintf(w, "- Subtitle:           %s\n", req.Subtitle)
		fmt.Fprintf(w, "- Language:           %s (%s)\n", req.Language, language.DisplayName(req.Language))
	}
	fmt.Fprintf(w, "- Existing subtitles: %d\n", res.Inspection.Count())
	for _, s := range res.Inspection.Streams {
		lang := s.Language
		if lang == "" {
			lang = "und"
		}
		fmt.Fprintf(w, "    #%d %s [%s]\n", s.Index, s.Codec, lang)
	}
	if idx, ok := res.Plan.SubtitleIndex(); ok {
		fmt.Fprintf(w, "- New subtitle index: %d\n", idx)
	}
	fmt.Fprintf(w, "- Clear existing:     %v\n", res.Plan.ClearsSubtitles())
	if req.AddMetadata {
		fmt.Fprintf(w, "- Title metadata:     %s\n", req.MetadataTitle)
	}
	if req.Output == "" {
		fmt.Fprintf(w, "- Output:             %s (via %s)\n", req.Input, res.Plan.OutputPath())
	} else {
		fmt.Fprintf(w, "- Output:             %s\n", req.Output)
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "- Warning:            %s\n", warn)
	}
	fmt.Fprintln(w)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"#", "Kind", "Arguments", "Meaning"})
	for i, d := range res.Plan.Directives() {
		tw.AppendRow(table.Row{strconv.Itoa(i + 1), d.Kind.String(), strings.Join(d.Args(), " "), d.Describe()})
	}
	tw.Render()

	fmt.Fprintln(w)
	fmt.Fprintln(w, util.CommandLine(ffmpegPath, res.Args))
	return nil
}
