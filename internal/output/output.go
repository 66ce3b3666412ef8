// Package output writes rendered tests below the output directory, or only
// reports them during a dry run.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/imyousuf/nuktatestify/internal/generator"
	"github.com/imyousuf/nuktatestify/internal/logging"
)

// WriteError reports a file that could not be written. It aborts the
// remaining writes; files written earlier are kept.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Writer persists file contents.
type Writer interface {
	WriteFile(path string, data []byte) error
}

// FSWriter writes to the local file system, creating parent directories and
// truncating existing files.
type FSWriter struct{}

// WriteFile implements Writer.
func (FSWriter) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Planner resolves rendered tests against the output directory and writes
// them in order.
type Planner struct {
	OutputDir string
	DryRun    bool
	Writer    Writer
	Logger    *logging.Logger
}

// Apply writes every test, or logs the would-be paths when DryRun is set.
// It returns the resolved paths of the tests handled, in order.
func (p *Planner) Apply(tests []generator.RenderedTest) ([]string, error) {
	w := p.Writer
	if w == nil {
		w = FSWriter{}
	}

	paths := make([]string, 0, len(tests))
	for _, t := range tests {
		path := filepath.Join(p.OutputDir, filepath.FromSlash(t.Path))

		if p.DryRun {
			p.Logger.Verbosef("Would generate: %s%s", path, routeSuffix(t))
			paths = append(paths, path)
			continue
		}

		if err := w.WriteFile(path, []byte(t.Content)); err != nil {
			return paths, &WriteError{Path: path, Err: err}
		}
		p.Logger.Verbosef("%s", writtenMessage(t, path))
		paths = append(paths, path)
	}
	return paths, nil
}

func routeSuffix(t generator.RenderedTest) string {
	if t.Modular {
		return fmt.Sprintf(" (%d routes)", t.Routes)
	}
	return ""
}

func writtenMessage(t generator.RenderedTest, path string) string {
	switch {
	case t.Kind == generator.KindHelpers:
		return "Generated helpers: " + path
	case t.Kind == generator.KindFixtures:
		return "Generated fixtures: " + path
	case t.Modular:
		return fmt.Sprintf("Generated modular test: %s (%d routes)", path, t.Routes)
	default:
		return "Generated test: " + path
	}
}
