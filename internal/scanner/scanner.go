// Package scanner walks a source tree and collects the Express routes
// registered in its JavaScript and TypeScript files.
package scanner

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/imyousuf/nuktatestify/internal/logging"
	"github.com/imyousuf/nuktatestify/internal/parser"
	"github.com/imyousuf/nuktatestify/internal/parser/express"
	"github.com/imyousuf/nuktatestify/internal/route"
	"github.com/imyousuf/nuktatestify/internal/watcher"
)

// Config holds configuration for the Scanner.
type Config struct {
	// Registry maps extensions to grammars; nil uses the default registry.
	Registry *parser.Registry
	// Exclude holds gitignore-style patterns relative to the scan root.
	Exclude []string
	// Logger receives progress messages; nil discards them.
	Logger *logging.Logger
}

// Stats summarises one scan.
type Stats struct {
	FilesScanned int           `json:"files_scanned"`
	FilesSkipped int           `json:"files_skipped"`
	Routes       int           `json:"routes"`
	Duration     time.Duration `json:"duration"`
}

// Scanner turns a source tree into route descriptors.
type Scanner struct {
	registry  *parser.Registry
	exclude   []string
	log       *logging.Logger
	extractor *express.Extractor
}

// New creates a Scanner with the given configuration.
func New(cfg Config) *Scanner {
	registry := cfg.Registry
	if registry == nil {
		registry = parser.NewDefaultRegistry()
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Scanner{
		registry:  registry,
		exclude:   cfg.Exclude,
		log:       log,
		extractor: express.NewExtractor(registry, log.Func()),
	}
}

// Registry returns the grammar registry used to select source files.
func (s *Scanner) Registry() *parser.Registry {
	return s.registry
}

// ScanDirectory walks root and extracts routes from every source file, in
// walk order. Files that fail to parse are logged and skipped; file system
// failures abort the scan with a *ScanError. ctx is checked between files.
func (s *Scanner) ScanDirectory(ctx context.Context, root string) ([]route.Descriptor, Stats, error) {
	var stats Stats
	start := time.Now()

	s.log.Verbosef("Scanning routes in %s...", root)

	files, err := Walk(root, WalkOptions{
		Registry: s.registry,
		Exclude:  watcher.NewGitIgnoreMatcher(root, s.exclude),
		Logger:   s.log.Verbosef,
	})
	if err != nil {
		return nil, stats, err
	}
	s.log.Verbosef("Found %d source files", len(files))

	var routes []route.Descriptor
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		found, err := s.ScanFile(path)
		if err != nil {
			var pe *express.ParseError
			if errors.As(err, &pe) {
				s.log.Verbosef("Parse error in %s: %v", path, pe)
				stats.FilesSkipped++
				continue
			}
			return nil, stats, err
		}
		stats.FilesScanned++
		routes = append(routes, found...)
	}

	stats.Routes = len(routes)
	stats.Duration = time.Since(start)
	s.log.Verbosef("Found %d routes", len(routes))
	return routes, stats, nil
}

// ScanFile reads one source file and extracts its routes. A syntax error is
// returned as *express.ParseError; a read failure as *ScanError.
func (s *Scanner) ScanFile(path string) ([]route.Descriptor, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &ScanError{Path: path, Op: "read", Err: err}
	}
	return s.extractor.ExtractRoutes(path, content)
}
