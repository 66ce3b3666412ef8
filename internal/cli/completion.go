package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// Shells with completion support.
var completionShells = []string{"bash", "zsh", "fish"}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate or install shell completion scripts",
		Long: `Generate or install shell completion scripts for nuktatestify.

Subcommands:
  bash      Print bash completion script to stdout
  zsh       Print zsh completion script to stdout
  fish      Print fish completion script to stdout
  install   Detect the shell from $SHELL and install its completion script`,
	}

	for _, shell := range completionShells {
		cmd.AddCommand(newCompletionShellCmd(shell))
	}
	cmd.AddCommand(newCompletionInstallCmd())

	return cmd
}

func newCompletionShellCmd(shell string) *cobra.Command {
	return &cobra.Command{
		Use:   shell,
		Short: "Generate " + shell + " completion script",
		Long: fmt.Sprintf(`Generate %[1]s completion script for nuktatestify.

To load completions in your current shell session:
  source <(nuktatestify completion %[1]s)`, shell),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return genCompletion(cmd.Root(), shell, cmd.OutOrStdout())
		},
	}
}

func newCompletionInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Detect the shell and install its completion script",
		Long: `Detect the shell from $SHELL and write its completion script below the
home directory:
  - Bash: ~/.bash_completion.d/nuktatestify
  - Zsh:  ~/.zsh/completions/_nuktatestify
  - Fish: ~/.config/fish/completions/nuktatestify.fish`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := detectShell(os.Getenv("SHELL"))
			if shell == "" {
				return fmt.Errorf("could not detect a supported shell from $SHELL (supported: %s)", strings.Join(completionShells, ", "))
			}
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("get home directory: %w", err)
			}

			var script bytes.Buffer
			if err := genCompletion(cmd.Root(), shell, &script); err != nil {
				return err
			}

			path := completionPath(home, shell)
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", filepath.Dir(path), err)
			}
			if err := os.WriteFile(path, script.Bytes(), 0644); err != nil {
				return fmt.Errorf("write completion file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Installed %s completion to: %s\n", shell, path)
			if hint := completionHint(shell); hint != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", hint)
			}
			return nil
		},
	}
}

func genCompletion(root *cobra.Command, shell string, w io.Writer) error {
	var err error
	switch shell {
	case "bash":
		err = root.GenBashCompletionV2(w, true)
	case "zsh":
		err = root.GenZshCompletion(w)
	case "fish":
		err = root.GenFishCompletion(w, true)
	default:
		return fmt.Errorf("unsupported shell: %s", shell)
	}
	if err != nil {
		return fmt.Errorf("generate %s completion: %w", shell, err)
	}
	return nil
}

// detectShell maps a $SHELL value to a supported shell name, or "".
func detectShell(shellEnv string) string {
	base := filepath.Base(shellEnv)
	for _, shell := range completionShells {
		if strings.Contains(base, shell) {
			return shell
		}
	}
	return ""
}

func completionPath(home, shell string) string {
	switch shell {
	case "zsh":
		return filepath.Join(home, ".zsh", "completions", "_nuktatestify")
	case "fish":
		return filepath.Join(home, ".config", "fish", "completions", "nuktatestify.fish")
	default:
		return filepath.Join(home, ".bash_completion.d", "nuktatestify")
	}
}

func completionHint(shell string) string {
	switch shell {
	case "bash":
		return `Add to your ~/.bashrc if not already present:
  for f in ~/.bash_completion.d/*; do source "$f"; done`
	case "zsh":
		return `Add to your ~/.zshrc if not already present:
  fpath=(~/.zsh/completions $fpath)
  autoload -U compinit && compinit`
	}
	return ""
}
