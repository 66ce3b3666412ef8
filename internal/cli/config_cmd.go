package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/imyousuf/nuktatestify/internal/config"
)

// Style definitions for config view.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})
	labelStyle = lipgloss.NewStyle().
			Faint(true).
			Width(22)
	valueStyle = lipgloss.NewStyle()
)

func newConfigCmd(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit the configuration",
		Long: `Display the configuration resolved from defaults, the config file,
NUKTATESTIFY_* environment variables and flags.

Use 'config edit' to change the config file interactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.LoadOptions{ConfigFile: *cfgFile, Flags: cmd.Flags()})
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			printConfig(cmd.OutOrStdout(), cfg)
			return cfg.Validate()
		},
	}

	cmd.AddCommand(newConfigEditCmd(cfgFile))

	return cmd
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("nuktatestify Configuration"))
	fmt.Fprintln(out, headerStyle.Render(strings.Repeat("=", 26)))
	fmt.Fprintln(out)

	printSection(out, "Layout")
	printKV(out, "Source", cfg.Src)
	printKV(out, "Output", cfg.Out)
	printKV(out, "Extension", cfg.Ext)
	printKV(out, "Modular", boolYesNo(cfg.Modular))
	printKV(out, "Dry run", boolYesNo(cfg.DryRun))
	fmt.Fprintln(out)

	printSection(out, "Scenarios")
	printKV(out, "Authentication", boolYesNo(cfg.Tests.Auth))
	printKV(out, "Validation", boolYesNo(cfg.Tests.Validation))
	printKV(out, "Error handling", boolYesNo(cfg.Tests.Error))
	printKV(out, "Integration", boolYesNo(cfg.Tests.Integration))
	printKV(out, "Performance", boolYesNo(cfg.Tests.Performance))
	printKV(out, "Mock req/res", boolYesNo(cfg.Mock))
	fmt.Fprintln(out)

	printSection(out, "Environment")
	printKV(out, "Test framework", cfg.TestFramework)
	printKV(out, "Database", cfg.Database.Type)
	printKV(out, "In-memory database", boolYesNo(cfg.Database.Mock))
	printKV(out, "Coverage threshold", strconv.Itoa(cfg.CoverageThreshold)+"%")
	printKV(out, "Helpers", boolYesNo(cfg.Generate.Helpers))
	printKV(out, "Fixtures", boolYesNo(cfg.Generate.Fixtures))
	fmt.Fprintln(out)

	printSection(out, "Exclusions")
	if len(cfg.Exclude) == 0 {
		fmt.Fprintln(out, "    (none)")
	}
	for _, pattern := range cfg.Exclude {
		fmt.Fprintf(out, "    %s\n", pattern)
	}
	fmt.Fprintln(out)
}

func printSection(out io.Writer, title string) {
	fmt.Fprintf(out, "  %s\n", headerStyle.Render(title))
}

func printKV(out io.Writer, label, value string) {
	fmt.Fprintf(out, "    %s%s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

func boolYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newConfigEditCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the config file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *cfgFile
			if path == "" {
				path = config.DefaultConfigFile + "." + config.DefaultConfigType
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("no config file at %s; run 'nuktatestify init' first", path)
			}

			cfg, err := config.Load(config.LoadOptions{ConfigFile: path})
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ok, err := runInteractiveInit(cmd, cfg)
			if err != nil || !ok {
				return err
			}

			if err := config.WriteConfig(cfg, path); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", path)
			return nil
		},
	}
}
