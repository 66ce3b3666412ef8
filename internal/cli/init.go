package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/imyousuf/nuktatestify/internal/config"
)

func newInitCmd() *cobra.Command {
	var (
		file        string
		force       bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a .nuktatestify.yaml config file",
		Long: `Write a configuration file with the default settings to the current
directory. Use --file with a .toml name to write TOML instead of YAML, and
--interactive to choose the settings in a form.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}

			path := file
			if !filepath.IsAbs(path) {
				path = filepath.Join(cwd, path)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}

			cfg := detectDefaults(cwd)
			if interactive {
				ok, err := runInteractiveInit(cmd, cfg)
				if err != nil || !ok {
					return err
				}
			}

			if err := config.WriteConfig(cfg, path); err != nil {
				return fmt.Errorf("write config file: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %s\n", path)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  1. Review the source and output directories in the config file")
			fmt.Fprintln(out, "  2. Run 'nuktatestify routes' to check the detected routes")
			fmt.Fprintln(out, "  3. Run 'nuktatestify' to generate the tests")
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", config.DefaultConfigFile+"."+config.DefaultConfigType, "config file to write (.yaml or .toml)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "choose settings interactively")

	return cmd
}

// srcCandidates are probed in order for the source directory.
var srcCandidates = []string{"src", "app", "server", "routes", "lib"}

// detectDefaults returns the default configuration adjusted to the project
// in dir: the first existing source directory candidate, and JavaScript
// tests when the project has no tsconfig.json.
func detectDefaults(dir string) *config.Config {
	cfg := config.Default()

	for _, name := range srcCandidates {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && info.IsDir() {
			cfg.Src = name
			break
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "tsconfig.json")); err != nil {
		cfg.Ext = "test.js"
	}
	return cfg
}
