package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventOp represents the type of file system operation.
type EventOp int

const (
	Create EventOp = iota
	Write
	Remove
	Rename
)

// String returns the string representation of EventOp.
func (op EventOp) String() string {
	switch op {
	case Create:
		return "Create"
	case Write:
		return "Write"
	case Remove:
		return "Remove"
	case Rename:
		return "Rename"
	default:
		return "Unknown"
	}
}

// Event is a change to one source file, or to a watched directory that was
// removed or renamed.
type Event struct {
	Path string
	Op   EventOp
}

// Batch collects the events seen during one quiet period, one per path,
// sorted by path.
type Batch struct {
	Events []Event
	Time   time.Time
}

// Paths returns the changed paths in the batch.
func (b Batch) Paths() []string {
	out := make([]string, len(b.Events))
	for i, e := range b.Events {
		out[i] = e.Path
	}
	return out
}

// DefaultDebounce is the quiet period used when Config.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// Config holds configuration for a source watcher.
type Config struct {
	// Root is the directory watched recursively.
	Root string
	// Exclude holds gitignore-style patterns relative to Root.
	Exclude []string
	// Accept filters file events; nil accepts every file.
	Accept func(path string) bool
	// Debounce is the quiet period after the last event before a batch is
	// emitted.
	Debounce time.Duration
	// Logger receives watch errors; nil discards them.
	Logger func(format string, args ...any)
}

// Watcher watches a source tree and emits debounced batches of changes.
type Watcher struct {
	cfg     Config
	matcher *GitIgnoreMatcher
	fsw     *fsnotify.Watcher
	mu      sync.Mutex
	closed  bool
	// dirs holds the directories registered with fsw.
	dirs map[string]bool
}

// NewWatcher creates a watcher for cfg.Root.
func NewWatcher(cfg Config) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Accept == nil {
		cfg.Accept = func(string) bool { return true }
	}
	if cfg.Logger == nil {
		cfg.Logger = func(string, ...any) {}
	}
	return &Watcher{
		cfg:     cfg,
		matcher: NewGitIgnoreMatcher(cfg.Root, cfg.Exclude),
		dirs:    make(map[string]bool),
	}
}

// Start registers the source tree with the OS watcher and returns the
// channel of batches. The channel is closed when ctx is done or the watcher
// is closed.
func (w *Watcher) Start(ctx context.Context) (<-chan Batch, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	if err := w.addRecursive(w.cfg.Root, nil); err != nil {
		fsw.Close()
		return nil, err
	}

	out := make(chan Batch)
	go w.eventLoop(ctx, fsw, out)
	return out, nil
}

// Close shuts down the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

// addRecursive registers root and its non-excluded subdirectories. When
// files is non-nil, the accepted files found below root are appended to it.
func (w *Watcher) addRecursive(root string, files *[]string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !info.IsDir() {
			if files != nil && !w.matcher.Match(path, false) && w.cfg.Accept(path) {
				*files = append(*files, path)
			}
			return nil
		}
		if path != root && w.matcher.Match(path, true) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return err
		}
		w.mu.Lock()
		w.dirs[path] = true
		w.mu.Unlock()
		return nil
	})
}

// forgetDir drops path and its subdirectories from the registered set and
// reports whether path was a registered directory.
func (w *Watcher) forgetDir(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.dirs[path] {
		return false
	}
	prefix := path + string(filepath.Separator)
	for dir := range w.dirs {
		if dir == path || strings.HasPrefix(dir, prefix) {
			delete(w.dirs, dir)
		}
	}
	return true
}

func (w *Watcher) eventLoop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- Batch) {
	defer close(out)

	pending := make(map[string]Event)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case fsEvent, ok := <-fsw.Events:
			if !ok {
				return
			}
			events := w.filter(fsEvent)
			if len(events) == 0 {
				continue
			}
			for _, evt := range events {
				pending[evt.Path] = evt
			}
			if timer == nil {
				timer = time.NewTimer(w.cfg.Debounce)
			} else {
				timer.Reset(w.cfg.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			batch := flush(pending)
			pending = make(map[string]Event)
			select {
			case out <- batch:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.cfg.Logger("Watch error: %v", err)
		}
	}
}

// filter converts an fsnotify event into source events. A created
// directory is registered and yields a Create event for every accepted file
// already inside it. A removed or renamed watched directory yields one event
// for the directory itself. Excluded and unaccepted paths are dropped.
func (w *Watcher) filter(fsEvent fsnotify.Event) []Event {
	op, valid := convertOp(fsEvent.Op)
	if !valid {
		return nil
	}
	path := fsEvent.Name

	switch op {
	case Create:
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if w.matcher.Match(path, true) {
				return nil
			}
			var files []string
			if err := w.addRecursive(path, &files); err != nil {
				w.cfg.Logger("Watch error: %v", err)
			}
			events := make([]Event, len(files))
			for i, f := range files {
				events[i] = Event{Path: f, Op: Create}
			}
			return events
		}
	case Remove, Rename:
		if w.forgetDir(path) {
			return []Event{{Path: path, Op: op}}
		}
	}

	if w.matcher.Match(path, false) || !w.cfg.Accept(path) {
		return nil
	}
	return []Event{{Path: path, Op: op}}
}

func flush(pending map[string]Event) Batch {
	events := make([]Event, 0, len(pending))
	for _, e := range pending {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
	return Batch{Events: events, Time: time.Now()}
}

func convertOp(op fsnotify.Op) (EventOp, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return Create, true
	case op.Has(fsnotify.Write):
		return Write, true
	case op.Has(fsnotify.Remove):
		return Remove, true
	case op.Has(fsnotify.Rename):
		return Rename, true
	default:
		return 0, false
	}
}
