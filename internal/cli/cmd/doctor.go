package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"subattach/internal/util/deps"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose external dependencies (ffmpeg, ffprobe)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := appFrom(cmd).settings
			ffmpeg := getPersistentString(cmd, "ffmpeg-binary", s.FFmpegBinary)
			ffprobe := getPersistentString(cmd, "ffprobe-binary", s.FFprobeBinary)

			var missing error
			for _, st := range deps.Check(ffmpeg, ffprobe) {
				if st.Available {
					fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", st.Name+":", st.Path)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s missing (%s)\n", st.Name+":", st.Detail)
				if missing == nil {
					missing = fmt.Errorf("%s not available", st.Name)
				}
			}
			if missing != nil {
				return &ExitError{Code: ExitMissingDep, Err: missing}
			}
			return nil
		},
	}
}
