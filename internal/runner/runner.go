// Package runner drives one generation run: scan the source tree, render the
// tests and hand them to the output planner.
package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/imyousuf/nuktatestify/internal/config"
	"github.com/imyousuf/nuktatestify/internal/generator"
	"github.com/imyousuf/nuktatestify/internal/logging"
	"github.com/imyousuf/nuktatestify/internal/output"
	"github.com/imyousuf/nuktatestify/internal/parser"
	"github.com/imyousuf/nuktatestify/internal/route"
	"github.com/imyousuf/nuktatestify/internal/scanner"
)

// ErrNoRoutes is returned when the source tree holds no Express routes.
var ErrNoRoutes = errors.New("no routes found")

// InstallCommand lists the dev dependencies the generated tests need.
const InstallCommand = "npm install --save-dev jest supertest mongodb-memory-server @types/jest @types/supertest ts-jest"

// Options carries the collaborators of a run. Zero values select the
// defaults: the built-in grammars, the local file system and a discarding
// logger.
type Options struct {
	Registry *parser.Registry
	Writer   output.Writer
	Logger   *logging.Logger
}

// Result describes a completed run.
type Result struct {
	Routes  []route.Descriptor
	Stats   scanner.Stats
	Summary route.Summary
	// Files holds the resolved output paths, written or (in a dry run)
	// planned.
	Files []string
}

// Run performs one generation run for gen.
func Run(ctx context.Context, gen config.GenerationConfig, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	log.Verbosef("🚀 Starting test generation...")

	sc := scanner.New(scanner.Config{
		Registry: opts.Registry,
		Exclude:  gen.Exclude,
		Logger:   log,
	})
	routes, stats, err := sc.ScanDirectory(ctx, gen.SrcRoot)
	if err != nil {
		return nil, fmt.Errorf("scan routes: %w", err)
	}
	if len(routes) == 0 {
		log.Errorf("❌ No routes found. Please check your source directory.")
		return nil, ErrNoRoutes
	}

	res := &Result{
		Routes:  routes,
		Stats:   stats,
		Summary: route.Summarize(routes),
	}
	logSummary(log, res.Summary)

	log.Verbosef("🧪 Generating tests...")
	tests, err := generator.New(gen).Render(routes)
	if err != nil {
		return nil, fmt.Errorf("render tests: %w", err)
	}

	planner := &output.Planner{
		OutputDir: gen.OutputDir,
		DryRun:    gen.DryRun,
		Writer:    opts.Writer,
		Logger:    log,
	}
	res.Files, err = planner.Apply(tests)
	if err != nil {
		return res, fmt.Errorf("write tests: %w", err)
	}

	if gen.DryRun {
		log.Printf("🔍 Dry run completed. No files were created.")
	} else {
		logNextSteps(log, gen)
	}
	return res, nil
}

func logSummary(log *logging.Logger, s route.Summary) {
	if !log.Verbose() {
		return
	}
	log.Verbosef("📊 Route Summary:")
	for _, mc := range s.ByMethod {
		log.Verbosef("   %s: %d routes", strings.ToUpper(mc.Method), mc.Count)
	}
	log.Verbosef("🔐 Authentication required: %d routes", s.Authenticated)
	log.Verbosef("🛡️  Permission protected: %d routes", s.Protected)
}

func logNextSteps(log *logging.Logger, gen config.GenerationConfig) {
	outName := filepath.Base(gen.OutputDir)

	log.Printf("✅ Test generation completed!")
	log.Printf("📝 Next steps:")
	log.Printf("   1. Install required dependencies:")
	log.Printf("      %s", InstallCommand)
	log.Printf("   2. Add test script to package.json:")
	log.Printf(`      "test": "jest --detectOpenHandles"`)
	log.Printf("   3. Run tests:")
	log.Printf("      npm test")
	if gen.GenerateHelpers {
		log.Printf("   4. Customize test helpers in %s/helpers/", outName)
	}
	if gen.GenerateFixtures {
		log.Printf("   5. Update test fixtures in %s/fixtures/", outName)
	}
}
