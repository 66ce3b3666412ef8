package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/imyousuf/nuktatestify/internal/parser"
	"github.com/imyousuf/nuktatestify/internal/watcher"
)

// ErrNotDirectory is wrapped by the ScanError returned when the scan root is
// a regular file.
var ErrNotDirectory = errors.New("not a directory")

// ScanError reports a file system failure while enumerating or reading
// sources. It aborts the scan.
type ScanError struct {
	Path string
	Op   string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// WalkOptions controls source enumeration.
type WalkOptions struct {
	// Registry decides which extensions are sources. Required.
	Registry *parser.Registry
	// Exclude drops matching files and prunes matching directories.
	Exclude *watcher.GitIgnoreMatcher
	// Logger receives skipped-entry notices; may be nil.
	Logger func(format string, args ...any)
}

// Walk returns every source file under root. Entries are visited in name
// order, so the result is deterministic. Symbolic links are followed; a
// directory reached a second time, through a link cycle or an alias of an
// already walked directory, is not descended again.
func Walk(root string, opts WalkOptions) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &ScanError{Path: root, Op: "stat", Err: err}
	}
	if !info.IsDir() {
		return nil, &ScanError{Path: root, Op: "readdir", Err: ErrNotDirectory}
	}

	log := opts.Logger
	if log == nil {
		log = func(string, ...any) {}
	}
	w := &walker{opts: opts, log: log, visited: make(map[string]bool)}
	if err := w.walkDir(root); err != nil {
		return nil, err
	}
	return w.files, nil
}

type walker struct {
	opts  WalkOptions
	log   func(format string, args ...any)
	files []string
	// visited holds the resolved paths of the directories already walked.
	visited map[string]bool
}

func (w *walker) walkDir(dir string) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return &ScanError{Path: dir, Op: "stat", Err: err}
	}
	if w.visited[resolved] {
		w.log("  Skipping %s (already scanned as %s)", dir, resolved)
		return nil
	}
	w.visited[resolved] = true

	// os.ReadDir sorts entries by file name.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &ScanError{Path: dir, Op: "readdir", Err: err}
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		isDir := entry.IsDir()

		if entry.Type()&os.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				return &ScanError{Path: path, Op: "stat", Err: err}
			}
			isDir = target.IsDir()
		}

		if w.opts.Exclude.Match(path, isDir) {
			w.log("  Skipping %s (excluded)", path)
			continue
		}

		if isDir {
			if err := w.walkDir(path); err != nil {
				return err
			}
			continue
		}

		if w.opts.Registry.Supports(path) {
			w.files = append(w.files, path)
		}
	}
	return nil
}
