package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boardtex/pkg/manifest"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for boardtex.

To load completions:

Bash:
  $ source <(boardtex completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ boardtex completion bash > /etc/bash_completion.d/boardtex
  # macOS:
  $ boardtex completion bash > $(brew --prefix)/etc/bash_completion.d/boardtex

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ boardtex completion zsh > "${fpath[1]}/_boardtex"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ boardtex completion fish | source

  # To load completions for each session, execute once:
  $ boardtex completion fish > ~/.config/fish/completions/boardtex.fish

PowerShell:
  PS> boardtex completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> boardtex completion powershell > boardtex.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}

// completeManifest offers TOML files for the manifest argument.
func completeManifest(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"toml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeJobs offers the sheet or split names of the manifest given as the
// first argument.
func completeJobs(kind string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		m, err := manifest.Load(args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var names []string
		for _, j := range manifestJobs(m) {
			if j.Kind == kind && strings.HasPrefix(j.Name, toComplete) {
				names = append(names, j.Name+"\t"+j.Detail)
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
