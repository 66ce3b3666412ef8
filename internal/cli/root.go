// Package cli implements the command-line interface for nuktatestify.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/imyousuf/nuktatestify/internal/config"
	"github.com/imyousuf/nuktatestify/internal/logging"
	"github.com/imyousuf/nuktatestify/internal/runner"
)

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. The root command generates tests; the
// generation flags are persistent so every subcommand resolves the same
// configuration.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "nuktatestify",
		Short: "Generate Jest test scaffolding for Express.js routes",
		Long: `nuktatestify scans a JavaScript or TypeScript source tree for Express
route registrations and writes supertest-based test files for each of them.

Commands:
  routes     List the routes detected in the source tree
  init       Write a .nuktatestify.yaml config file
  config     Show the resolved configuration
  watch      Regenerate tests whenever a source file changes`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, cfgFile)
			if err != nil {
				return err
			}
			gen, err := cfg.Generation()
			if err != nil {
				return err
			}
			_, err = runner.Run(cmd.Context(), gen, runner.Options{
				Logger: logging.New(cmd.OutOrStdout(), gen.Verbose),
			})
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .nuktatestify.yaml)")
	addGenerationFlags(cmd.PersistentFlags())

	cmd.AddCommand(newRoutesCmd(&cfgFile))
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newConfigCmd(&cfgFile))
	cmd.AddCommand(newWatchCmd(&cfgFile))
	cmd.AddCommand(newCompletionCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// addGenerationFlags registers one flag per entry in config.FlagKeys, with
// the built-in configuration as defaults.
func addGenerationFlags(fs *pflag.FlagSet) {
	def := config.Default()

	fs.StringP("src", "s", def.Src, "source directory to scan for routes")
	fs.StringP("out", "o", def.Out, "output directory for generated tests")
	fs.StringP("ext", "e", def.Ext, "test file extension ("+joinList(config.TestFileExts)+")")
	fs.Bool("mock", def.Mock, "include mocked request/response objects")
	fs.Bool("dry-run", def.DryRun, "report the files that would be generated without writing them")
	fs.BoolP("verbose", "v", def.Verbose, "verbose output")
	fs.BoolP("modular", "m", def.Modular, "generate one test file per source file")
	fs.StringSlice("exclude", def.Exclude, "gitignore-style pattern to skip, relative to the source directory (repeatable)")

	fs.Bool("auth-tests", def.Tests.Auth, "generate authentication tests")
	fs.Bool("validation-tests", def.Tests.Validation, "generate input validation tests")
	fs.Bool("error-tests", def.Tests.Error, "generate error handling tests")
	fs.Bool("integration-tests", def.Tests.Integration, "generate CRUD integration tests")
	fs.Bool("performance-tests", def.Tests.Performance, "generate performance tests")

	fs.String("test-framework", def.TestFramework, "test framework ("+joinList(config.TestFrameworks)+")")
	fs.String("database-type", def.Database.Type, "database type ("+joinList(config.DatabaseTypes)+")")
	fs.Bool("mock-database", def.Database.Mock, "use an in-memory database instead of a real connection")
	fs.Bool("generate-fixtures", def.Generate.Fixtures, "generate test fixtures and sample data")
	fs.Bool("generate-helpers", def.Generate.Helpers, "generate test helper utilities")
	fs.Int("coverage-threshold", def.CoverageThreshold, "minimum test coverage threshold (0-100)")
}

// loadConfig resolves and validates the configuration for cmd.
func loadConfig(cmd *cobra.Command, cfgFile string) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: cfgFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func joinList(list []string) string {
	return strings.Join(list, "|")
}
