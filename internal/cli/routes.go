package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/imyousuf/nuktatestify/internal/logging"
	"github.com/imyousuf/nuktatestify/internal/route"
	"github.com/imyousuf/nuktatestify/internal/runner"
	"github.com/imyousuf/nuktatestify/internal/scanner"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}).
				Padding(0, 1)
	tableCellStyle = lipgloss.NewStyle().Padding(0, 1)
	authCellStyle  = tableCellStyle.
			Foreground(lipgloss.AdaptiveColor{Light: "#B7950B", Dark: "#F4D03F"})
)

func newRoutesCmd(cfgFile *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the Express routes detected in the source tree",
		Long: `Scan the source directory and print every detected route registration
without generating any tests.

Output formats:
  table   Styled table (default)
  json    JSON array of route descriptors
  yaml    YAML list of route descriptors`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "table", "json", "yaml":
			default:
				return fmt.Errorf("unsupported format %q (use table, json or yaml)", format)
			}

			cfg, err := loadConfig(cmd, *cfgFile)
			if err != nil {
				return err
			}
			gen, err := cfg.Generation()
			if err != nil {
				return err
			}

			// Progress lines would corrupt machine-readable output.
			log := logging.New(cmd.ErrOrStderr(), gen.Verbose)
			sc := scanner.New(scanner.Config{Exclude: gen.Exclude, Logger: log})
			routes, stats, err := sc.ScanDirectory(cmd.Context(), gen.SrcRoot)
			if err != nil {
				return fmt.Errorf("scan routes: %w", err)
			}
			if len(routes) == 0 {
				log.Errorf("❌ No routes found. Please check your source directory.")
				return runner.ErrNoRoutes
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return writeRoutesJSON(out, routes)
			case "yaml":
				return writeRoutesYAML(out, routes)
			}
			writeRoutesTable(out, gen.SrcRoot, routes)
			fmt.Fprintf(out, "\n%d routes in %d files (%d skipped)\n", len(routes), stats.FilesScanned, stats.FilesSkipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json, yaml")

	return cmd
}

func writeRoutesJSON(out io.Writer, routes []route.Descriptor) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(routes)
}

func writeRoutesYAML(out io.Writer, routes []route.Descriptor) error {
	data, err := yaml.Marshal(routes)
	if err != nil {
		return fmt.Errorf("marshal routes: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func writeRoutesTable(out io.Writer, srcRoot string, routes []route.Descriptor) {
	rows := make([][]string, 0, len(routes))
	for _, r := range routes {
		location := r.SourceFile
		if rel, err := filepath.Rel(srcRoot, r.SourceFile); err == nil && !strings.HasPrefix(rel, "..") {
			location = filepath.ToSlash(rel)
		}
		mw := strings.Join(r.Middleware, ", ")
		if mw == "" {
			mw = "-"
		}
		rows = append(rows, []string{
			strings.ToUpper(r.Method),
			r.Path,
			r.Handler,
			mw,
			location + ":" + strconv.Itoa(r.Line),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Faint(true)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == 3 && routes[row].Authenticated:
				return authCellStyle
			default:
				return tableCellStyle
			}
		}).
		Headers("METHOD", "PATH", "HANDLER", "MIDDLEWARE", "LOCATION").
		Rows(rows...)

	fmt.Fprintln(out, t.Render())
}
