package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// shellCompletion describes how one shell's script is produced and loaded.
type shellCompletion struct {
	name    string
	install string
	gen     func(root *cobra.Command, w io.Writer, desc bool) error
}

var completionShells = []shellCompletion{
	{
		name:    "bash",
		install: "source <(subattach completion bash)",
		gen: func(root *cobra.Command, w io.Writer, desc bool) error {
			return root.GenBashCompletionV2(w, desc)
		},
	},
	{
		name:    "zsh",
		install: `subattach completion zsh > "${fpath[1]}/_subattach"`,
		gen: func(root *cobra.Command, w io.Writer, desc bool) error {
			if desc {
				return root.GenZshCompletion(w)
			}
			return root.GenZshCompletionNoDesc(w)
		},
	},
	{
		name:    "fish",
		install: "subattach completion fish | source",
		gen: func(root *cobra.Command, w io.Writer, desc bool) error {
			return root.GenFishCompletion(w, desc)
		},
	},
	{
		name:    "powershell",
		install: "subattach completion powershell | Out-String | Invoke-Expression",
		gen: func(root *cobra.Command, w io.Writer, desc bool) error {
			if desc {
				return root.GenPowerShellCompletionWithDesc(w)
			}
			return root.GenPowerShellCompletion(w)
		},
	},
}

func newCompletionCmd() *cobra.Command {
	var noDesc bool
	names := make([]string, 0, len(completionShells))
	var long strings.Builder
	long.WriteString("Print a completion script for subattach. To load it:\n")
	for _, sh := range completionShells {
		names = append(names, sh.name)
		fmt.Fprintf(&long, "\n  %s:\n    %s\n", sh.name, sh.install)
	}

	cmd := &cobra.Command{
		Use:                   "completion [" + strings.Join(names, "|") + "]",
		Short:                 "Generate shell completion scripts",
		Long:                  long.String(),
		DisableFlagsInUseLine: true,
		ValidArgs:             names,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, sh := range completionShells {
				if sh.name == args[0] {
					return sh.gen(cmd.Root(), cmd.OutOrStdout(), !noDesc)
				}
			}
			return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("unsupported shell %q", args[0])}
		},
	}
	cmd.Flags().BoolVar(&noDesc, "no-descriptions", false, "Leave completion descriptions out of the script")
	return cmd
}
