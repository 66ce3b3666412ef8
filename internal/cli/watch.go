package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/imyousuf/nuktatestify/internal/config"
	"github.com/imyousuf/nuktatestify/internal/logging"
	"github.com/imyousuf/nuktatestify/internal/parser"
	"github.com/imyousuf/nuktatestify/internal/runner"
	"github.com/imyousuf/nuktatestify/internal/watcher"
)

func newWatchCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Regenerate tests whenever a source file changes",
		Long: `Generate tests once, then watch the source directory and generate them
again after every burst of changes to a .js or .ts file. Stops on SIGINT or
SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *cfgFile)
			if err != nil {
				return err
			}
			gen, err := cfg.Generation()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case <-sigCh:
					fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
					cancel()
				case <-ctx.Done():
				}
			}()

			return watchAndGenerate(ctx, gen, logging.New(cmd.OutOrStdout(), gen.Verbose))
		},
	}
}

// watchAndGenerate runs generation once and again for every batch of source
// changes until ctx is done. Runs never overlap.
func watchAndGenerate(ctx context.Context, gen config.GenerationConfig, log *logging.Logger) error {
	gen.Exclude = watchExcludes(gen)
	registry := parser.NewDefaultRegistry()
	opts := runner.Options{Registry: registry, Logger: log}

	generate := func() {
		_, err := runner.Run(ctx, gen, opts)
		if err == nil || errors.Is(err, runner.ErrNoRoutes) || ctx.Err() != nil {
			return
		}
		// Keep watching; the next edit may fix the tree.
		log.Errorf("Generation failed: %v", err)
	}

	generate()

	w := watcher.NewWatcher(watcher.Config{
		Root:    gen.SrcRoot,
		Exclude: gen.Exclude,
		Accept: func(path string) bool {
			return registry.Supports(path) && !within(gen.OutputDir, path)
		},
		Logger: log.Verbosef,
	})
	defer w.Close()

	batches, err := w.Start(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", gen.SrcRoot, err)
	}
	log.Printf("👀 Watching %s for changes...", gen.SrcRoot)

	for batch := range batches {
		log.Printf("🔄 %d file(s) changed, regenerating tests...", len(batch.Events))
		for _, ev := range batch.Events {
			log.Verbosef("   %s %s", ev.Op, ev.Path)
		}
		generate()
	}
	return nil
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// watchExcludes adds the output directory to the exclusions when it lies
// inside the source tree, so generated files are neither scanned nor
// trigger new runs.
func watchExcludes(gen config.GenerationConfig) []string {
	patterns := append([]string(nil), gen.Exclude...)
	if !within(gen.SrcRoot, gen.OutputDir) {
		return patterns
	}
	rel, _ := filepath.Rel(gen.SrcRoot, gen.OutputDir)
	if rel == "." {
		return patterns
	}
	return append(patterns, "/"+filepath.ToSlash(rel)+"/")
}
