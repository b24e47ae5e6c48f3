package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"subattach/internal/config"
	"subattach/internal/dirs"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: "Print the configuration after merging defaults, the config file, SUBATTACH_* " +
			"environment variables and flags. The output is a valid config file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("format")
			out, err := config.Render(appFrom(cmd).settings, format)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			src := config.ConfigFileUsed()
			if src == "" {
				if d, derr := dirs.ConfigDir(); derr == nil {
					src = "none (searched " + d + ")"
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# config file: %s\n", src)
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().String("format", "toml", "Output format: toml, yaml")
	return cmd
}
