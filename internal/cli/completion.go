package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command. Besides subcommands and
// flags, the generated scripts complete --start/--end sides, --directions
// pairs and render formats.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for orthoroute to stdout.

Side names (top, right, bottom, left), direction pairs (h:h, h:v, v:h, v:v)
and render formats complete as well as commands and flags.`,
		Example: `  # current shell only
  source <(orthoroute completion bash)
  orthoroute completion fish | source

  # persistent
  orthoroute completion zsh > "${fpath[1]}/_orthoroute"
  orthoroute completion bash > ~/.local/share/bash-completion/completions/orthoroute
  orthoroute completion powershell > orthoroute.ps1`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return cmd.Root().GenBashCompletionV2(out, true)
			}
		},
	}
}
